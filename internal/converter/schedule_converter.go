package converter

import (
	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:             doctor.ID,
		FullName:       doctor.FullName,
		Specialization: doctor.Specialization,
		ChannellingFee: doctor.ChannellingFee,
	}
}

// ScheduleToResponse converts a DoctorSchedule entity to ScheduleResponse DTO
func ScheduleToResponse(schedule *entity.DoctorSchedule) *dto.ScheduleResponse {
	if schedule == nil {
		return nil
	}

	response := &dto.ScheduleResponse{
		ID:        schedule.ID,
		DoctorID:  schedule.DoctorID,
		Day:       schedule.Day,
		StartTime: schedule.StartTime,
		EndTime:   schedule.EndTime,
	}

	// Include doctor info if preloaded
	if schedule.Doctor.FullName != "" {
		response.Doctor = DoctorToResponse(&schedule.Doctor)
	}

	return response
}
