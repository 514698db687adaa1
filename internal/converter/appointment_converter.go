package converter

import (
	"time"

	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:                 appointment.ID,
		PatientID:          appointment.PatientID,
		PatientName:        appointment.Patient.FullName,
		ScheduleID:         appointment.ScheduleID,
		AppointmentDate:    appointment.AppointmentDate.Format(time.DateOnly),
		Status:             string(appointment.Status),
		PaymentStatus:      string(appointment.PaymentStatus),
		AppointmentFee:     appointment.AppointmentFee,
		PaidAmount:         appointment.PaidAmount,
		RefundAmount:       appointment.RefundAmount,
		Notes:              appointment.Notes,
		CancellationReason: appointment.CancellationReason,
		RescheduledFromID:  appointment.RescheduledFromID,
		CreatedAt:          appointment.CreatedAt,
		UpdatedAt:          appointment.UpdatedAt,
		CancelledAt:        appointment.CancelledAt,
		PaidAt:             appointment.PaidAt,
		RefundedAt:         appointment.RefundedAt,
	}

	if appointment.Schedule.ID != 0 {
		response.Schedule = ScheduleToResponse(&appointment.Schedule)
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
