package converter

import (
	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/domain/entity"
)

// PatientToResponse converts a Patient entity to PatientResponse DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:          patient.ID,
		FullName:    patient.FullName,
		PhoneNumber: patient.PhoneNumber,
		Email:       patient.Email,
	}
}
