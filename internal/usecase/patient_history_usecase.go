package usecase

import (
	"context"

	"clinic-billing-core/internal/converter"
	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/internal/domain/repository"
	"clinic-billing-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PatientHistoryUsecase interface {
	GetPatientHistory(ctx context.Context, patientID uuid.UUID) (*dto.PatientHistoryResponse, error)
}

type patientHistoryUsecase struct {
	transactor      repository.Transactor
	log             *logrus.Logger
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	billRepo        repository.BillRepository
	paymentRepo     repository.PaymentRepository
}

func NewPatientHistoryUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	billRepo repository.BillRepository,
	paymentRepo repository.PaymentRepository,
) PatientHistoryUsecase {
	return &patientHistoryUsecase{
		transactor:      transactor,
		log:             log,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		billRepo:        billRepo,
		paymentRepo:     paymentRepo,
	}
}

func (u *patientHistoryUsecase) GetPatientHistory(ctx context.Context, patientID uuid.UUID) (*dto.PatientHistoryResponse, error) {
	db := u.transactor.DB(ctx)

	patient, err := u.patientRepo.FindByID(ctx, db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, apperror.NotFound(ErrPatientNotFound, "patient", patientID)
	}

	appointments, err := u.appointmentRepo.FindAll(ctx, db, &entity.AppointmentFilter{PatientID: &patientID})
	if err != nil {
		u.log.Warnf("Failed to list appointments for patient %s: %+v", patientID, err)
		return nil, err
	}

	bills, err := u.billRepo.FindAll(ctx, db, &entity.BillFilter{PatientID: &patientID})
	if err != nil {
		u.log.Warnf("Failed to list bills for patient %s: %+v", patientID, err)
		return nil, err
	}

	payments, err := u.paymentRepo.FindByPatientID(ctx, db, patientID)
	if err != nil {
		u.log.Warnf("Failed to list payments for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.PatientHistoryResponse{
		Patient:      *converter.PatientToResponse(patient),
		Appointments: converter.AppointmentsToResponses(appointments),
		Bills:        converter.BillsToResponses(bills),
		Payments:     converter.PaymentsToResponses(payments),
	}, nil
}
