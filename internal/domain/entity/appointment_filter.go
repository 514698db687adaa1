package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentFilter is a domain-level filter for listing appointments.
// Used by repository layer to avoid coupling with delivery DTOs.
type AppointmentFilter struct {
	Status    AppointmentStatus // exact match, legacy values allowed
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Date      *time.Time
}

// BillFilter narrows bill listings.
type BillFilter struct {
	PatientID   *uuid.UUID
	PatientName string // case-insensitive substring
	Paid        *bool
}
