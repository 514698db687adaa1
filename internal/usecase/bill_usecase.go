package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic-billing-core/internal/converter"
	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/internal/domain/repository"
	"clinic-billing-core/internal/service"
	"clinic-billing-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrBillNotFound           = errors.New("bill not found")
	ErrBillItemNotFound       = errors.New("bill item not found")
	ErrMedicalTestNotFound    = errors.New("medical test not found")
	ErrBillAlreadyPaid        = errors.New("bill is already paid")
	ErrDuplicateBill          = errors.New("a bill already exists for this appointment")
	ErrAppointmentNotBillable = errors.New("appointment cannot be billed")
	ErrEmptyTestList          = errors.New("at least one medical test is required")
	ErrNoValidTests           = errors.New("no valid tests were added to the bill")
	ErrTestInactive           = errors.New("medical test is not active")
	ErrDuplicateTest          = errors.New("this test has already been added to the bill")
	ErrItemNotOnBill          = errors.New("bill item does not belong to this bill")
	ErrStructuralItem         = errors.New("cannot remove doctor fee or hospital charge from bill")
)

const hospitalChargeItemName = "Hospital Charge"

type BillUsecase interface {
	CreateAppointmentBill(ctx context.Context, req *dto.CreateAppointmentBillRequest) (*dto.BillResponse, error)
	CreateTestOnlyBill(ctx context.Context, req *dto.CreateTestOnlyBillRequest) (*dto.BillResponse, error)
	AddTest(ctx context.Context, billID uuid.UUID, req *dto.AddTestRequest) (*dto.BillResponse, error)
	RemoveItem(ctx context.Context, billID, itemID uuid.UUID) (*dto.BillResponse, error)
	DeleteBill(ctx context.Context, billID uuid.UUID) error
	GetBill(ctx context.Context, billID uuid.UUID) (*dto.BillResponse, error)
	GetAllBills(ctx context.Context, req *dto.BillListRequest) (*dto.BillListResponse, error)
	GetTotalRevenue(ctx context.Context) (*dto.RevenueResponse, error)
}

type billUsecase struct {
	transactor      repository.Transactor
	log             *logrus.Logger
	billRepo        repository.BillRepository
	billItemRepo    repository.BillItemRepository
	appointmentRepo repository.AppointmentRepository
	patientRepo     repository.PatientRepository
	testRepo        repository.MedicalTestRepository
	settingService  service.SettingService
	auditService    service.AuditService
}

func NewBillUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	billRepo repository.BillRepository,
	billItemRepo repository.BillItemRepository,
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	testRepo repository.MedicalTestRepository,
	settingService service.SettingService,
	auditService service.AuditService,
) BillUsecase {
	return &billUsecase{
		transactor:      transactor,
		log:             log,
		billRepo:        billRepo,
		billItemRepo:    billItemRepo,
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		testRepo:        testRepo,
		settingService:  settingService,
		auditService:    auditService,
	}
}

// CreateAppointmentBill splits the frozen appointment fee into a doctor fee
// and the current hospital charge. The appointment row stays locked until
// commit so two callers cannot both pass the existing-bill check.
func (u *billUsecase) CreateAppointmentBill(ctx context.Context, req *dto.CreateAppointmentBillRequest) (*dto.BillResponse, error) {
	var bill *entity.Bill

	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		appointment, err := u.appointmentRepo.FindByIDForUpdate(ctx, tx, req.AppointmentID)
		if err != nil {
			u.log.Warnf("Failed to find appointment %s: %+v", req.AppointmentID, err)
			return err
		}
		if appointment == nil {
			return apperror.NotFound(ErrAppointmentNotFound, "appointment", req.AppointmentID)
		}

		switch {
		case appointment.IsCancelled():
			return apperror.InvalidTransition(ErrAppointmentNotBillable, "cannot create a bill for a cancelled appointment",
				map[string]interface{}{"appointment_id": appointment.ID, "status": appointment.Status})
		case appointment.IsRescheduled():
			return apperror.InvalidTransition(ErrAppointmentNotBillable, "cannot create a bill for a rescheduled appointment, bill the new appointment instead",
				map[string]interface{}{"appointment_id": appointment.ID, "status": appointment.Status})
		}

		existing, err := u.billRepo.FindByAppointmentID(ctx, tx, appointment.ID)
		if err != nil {
			u.log.Warnf("Failed to look up bill for appointment %s: %+v", appointment.ID, err)
			return err
		}
		if existing != nil {
			return duplicateBillError(appointment.ID, &existing.ID)
		}

		surcharge, err := u.settingService.GetHospitalCharge(ctx, tx)
		if err != nil {
			return err
		}

		appointmentID := appointment.ID
		bill = &entity.Bill{
			ID:            uuid.New(),
			PatientID:     appointment.PatientID,
			PatientName:   appointment.Patient.FullName,
			BillType:      entity.BillTypeAppointment,
			AppointmentID: &appointmentID,
			TotalAmount:   appointment.AppointmentFee,
		}
		if err := u.billRepo.Create(ctx, tx, bill); err != nil {
			if isDuplicateKeyError(err, "idx_bills_appointment_id") {
				return duplicateBillError(appointment.ID, nil)
			}
			u.log.Warnf("Failed to create bill for appointment %s: %+v", appointment.ID, err)
			return err
		}

		items := []entity.BillItem{
			{
				ID:       uuid.New(),
				BillID:   bill.ID,
				ItemName: "Doctor Channeling Fee - " + appointment.Schedule.Doctor.FullName,
				ItemType: entity.ItemTypeDoctorFee,
				Price:    appointment.AppointmentFee.Sub(surcharge),
			},
			{
				ID:       uuid.New(),
				BillID:   bill.ID,
				ItemName: hospitalChargeItemName,
				ItemType: entity.ItemTypeHospitalFee,
				Price:    surcharge,
			},
		}
		for i := range items {
			if err := u.billItemRepo.Create(ctx, tx, &items[i]); err != nil {
				u.log.Warnf("Failed to create bill item %s: %+v", items[i].ItemName, err)
				return err
			}
		}
		bill.Items = items

		return u.auditService.LogCreate(ctx, tx, actorFromContext(ctx), entity.AuditActionBillCreate,
			"bill", bill.ID.String(), converter.BillToResponse(bill))
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Bill %s created for appointment %s, total %s", bill.ID, req.AppointmentID, bill.TotalAmount.StringFixed(2))

	return converter.BillToResponse(bill), nil
}

func duplicateBillError(appointmentID uuid.UUID, existingBillID *uuid.UUID) error {
	details := map[string]interface{}{"appointment_id": appointmentID}
	message := ErrDuplicateBill.Error()
	if existingBillID != nil {
		details["existing_bill_id"] = *existingBillID
		message = fmt.Sprintf("%s (bill id: %s)", message, existingBillID)
	}
	return apperror.Conflict(ErrDuplicateBill, message, details)
}

// CreateTestOnlyBill bills a list of tests without an appointment. Inactive
// tests and repeated names are skipped; if nothing remains the whole
// transaction rolls back and no bill is left behind.
func (u *billUsecase) CreateTestOnlyBill(ctx context.Context, req *dto.CreateTestOnlyBillRequest) (*dto.BillResponse, error) {
	if len(req.TestIDs) == 0 {
		return nil, apperror.Validation(ErrEmptyTestList, "", map[string]interface{}{"patient_id": req.PatientID})
	}

	patient, err := u.patientRepo.FindByID(ctx, u.transactor.DB(ctx), req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, apperror.NotFound(ErrPatientNotFound, "patient", req.PatientID)
	}

	var bill *entity.Bill
	err = u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		bill = &entity.Bill{
			ID:          uuid.New(),
			PatientID:   patient.ID,
			PatientName: patient.FullName,
			BillType:    entity.BillTypeTestOnly,
			TotalAmount: decimal.Zero,
		}
		if err := u.billRepo.Create(ctx, tx, bill); err != nil {
			u.log.Warnf("Failed to create test bill for patient %s: %+v", patient.ID, err)
			return err
		}

		skipped := make([]int, 0)
		for _, testID := range req.TestIDs {
			test, err := u.testRepo.FindByID(ctx, tx, testID)
			if err != nil {
				u.log.Warnf("Failed to find medical test %d: %+v", testID, err)
				return err
			}
			if test == nil {
				return apperror.NotFound(ErrMedicalTestNotFound, "medical test", testID)
			}
			if !test.Active || bill.HasItemNamed(test.Name) {
				skipped = append(skipped, testID)
				continue
			}

			item := entity.BillItem{
				ID:       uuid.New(),
				BillID:   bill.ID,
				ItemName: test.Name,
				ItemType: test.Type,
				Price:    test.Price,
			}
			if err := u.billItemRepo.Create(ctx, tx, &item); err != nil {
				u.log.Warnf("Failed to add test %d to bill %s: %+v", testID, bill.ID, err)
				return err
			}
			bill.Items = append(bill.Items, item)
		}

		if len(bill.Items) == 0 {
			return apperror.Validation(ErrNoValidTests, "", map[string]interface{}{
				"patient_id":       patient.ID,
				"skipped_test_ids": skipped,
			})
		}

		bill.TotalAmount = bill.ItemsTotal()
		if err := u.billRepo.Update(ctx, tx, bill); err != nil {
			u.log.Warnf("Failed to update total of bill %s: %+v", bill.ID, err)
			return err
		}

		return u.auditService.LogCreate(ctx, tx, actorFromContext(ctx), entity.AuditActionBillCreate,
			"bill", bill.ID.String(), converter.BillToResponse(bill))
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Test bill %s created for patient %s with %d items", bill.ID, patient.ID, len(bill.Items))

	return converter.BillToResponse(bill), nil
}

func (u *billUsecase) AddTest(ctx context.Context, billID uuid.UUID, req *dto.AddTestRequest) (*dto.BillResponse, error) {
	var bill *entity.Bill

	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		bill, err = u.lockUnpaidBill(ctx, tx, billID)
		if err != nil {
			return err
		}

		test, err := u.testRepo.FindByID(ctx, tx, req.TestID)
		if err != nil {
			u.log.Warnf("Failed to find medical test %d: %+v", req.TestID, err)
			return err
		}
		if test == nil {
			return apperror.NotFound(ErrMedicalTestNotFound, "medical test", req.TestID)
		}
		if !test.Active {
			return apperror.Validation(ErrTestInactive, "", map[string]interface{}{"test_id": test.ID})
		}
		if bill.HasItemNamed(test.Name) {
			return apperror.Conflict(ErrDuplicateTest, "", map[string]interface{}{
				"bill_id":   bill.ID,
				"test_name": test.Name,
			})
		}

		oldTotal := bill.TotalAmount
		item := entity.BillItem{
			ID:       uuid.New(),
			BillID:   bill.ID,
			ItemName: test.Name,
			ItemType: test.Type,
			Price:    test.Price,
		}
		if err := u.billItemRepo.Create(ctx, tx, &item); err != nil {
			u.log.Warnf("Failed to add test %d to bill %s: %+v", test.ID, bill.ID, err)
			return err
		}
		bill.Items = append(bill.Items, item)
		bill.TotalAmount = bill.TotalAmount.Add(item.Price)

		if err := u.billRepo.Update(ctx, tx, bill); err != nil {
			u.log.Warnf("Failed to update total of bill %s: %+v", bill.ID, err)
			return err
		}

		return u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionBillAddItem,
			"bill", bill.ID.String(),
			map[string]interface{}{"total_amount": oldTotal},
			map[string]interface{}{"total_amount": bill.TotalAmount, "item": converter.BillItemToResponse(&item)})
	})
	if err != nil {
		return nil, err
	}

	return converter.BillToResponse(bill), nil
}

func (u *billUsecase) RemoveItem(ctx context.Context, billID, itemID uuid.UUID) (*dto.BillResponse, error) {
	var bill *entity.Bill

	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		bill, err = u.lockUnpaidBill(ctx, tx, billID)
		if err != nil {
			return err
		}

		item, err := u.billItemRepo.FindByID(ctx, tx, itemID)
		if err != nil {
			u.log.Warnf("Failed to find bill item %s: %+v", itemID, err)
			return err
		}
		if item == nil {
			return apperror.NotFound(ErrBillItemNotFound, "bill item", itemID)
		}
		if item.BillID != bill.ID {
			return apperror.Validation(ErrItemNotOnBill, "", map[string]interface{}{
				"bill_id":      bill.ID,
				"item_id":      item.ID,
				"item_bill_id": item.BillID,
			})
		}
		if item.IsStructural() {
			return apperror.InvalidTransition(ErrStructuralItem, "", map[string]interface{}{
				"item_id":   item.ID,
				"item_type": item.ItemType,
			})
		}

		if err := u.billItemRepo.Delete(ctx, tx, item.ID); err != nil {
			u.log.Warnf("Failed to delete bill item %s: %+v", item.ID, err)
			return err
		}

		oldTotal := bill.TotalAmount
		remaining := bill.Items[:0]
		for _, existing := range bill.Items {
			if existing.ID != item.ID {
				remaining = append(remaining, existing)
			}
		}
		bill.Items = remaining
		bill.TotalAmount = bill.TotalAmount.Sub(item.Price)

		if err := u.billRepo.Update(ctx, tx, bill); err != nil {
			u.log.Warnf("Failed to update total of bill %s: %+v", bill.ID, err)
			return err
		}

		return u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionBillRemoveItem,
			"bill", bill.ID.String(),
			map[string]interface{}{"total_amount": oldTotal, "item": converter.BillItemToResponse(item)},
			map[string]interface{}{"total_amount": bill.TotalAmount})
	})
	if err != nil {
		return nil, err
	}

	return converter.BillToResponse(bill), nil
}

func (u *billUsecase) DeleteBill(ctx context.Context, billID uuid.UUID) error {
	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		bill, err := u.lockUnpaidBill(ctx, tx, billID)
		if err != nil {
			return err
		}

		if err := u.billItemRepo.DeleteByBillID(ctx, tx, bill.ID); err != nil {
			u.log.Warnf("Failed to delete items of bill %s: %+v", bill.ID, err)
			return err
		}
		if err := u.billRepo.Delete(ctx, tx, bill.ID); err != nil {
			u.log.Warnf("Failed to delete bill %s: %+v", bill.ID, err)
			return err
		}

		return u.auditService.LogDelete(ctx, tx, actorFromContext(ctx), entity.AuditActionBillDelete,
			"bill", bill.ID.String(), converter.BillToResponse(bill))
	})
	if err != nil {
		return err
	}

	u.log.Infof("Bill %s deleted", billID)
	return nil
}

// lockUnpaidBill takes the bill row lock and refuses paid bills, the only
// mutability gate once a bill exists.
func (u *billUsecase) lockUnpaidBill(ctx context.Context, tx *gorm.DB, billID uuid.UUID) (*entity.Bill, error) {
	bill, err := u.billRepo.FindByIDForUpdate(ctx, tx, billID)
	if err != nil {
		u.log.Warnf("Failed to lock bill %s: %+v", billID, err)
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NotFound(ErrBillNotFound, "bill", billID)
	}
	if bill.Paid {
		return nil, apperror.Conflict(ErrBillAlreadyPaid, "cannot modify a paid bill", map[string]interface{}{
			"bill_id": bill.ID,
			"paid_at": bill.PaidAt,
		})
	}
	return bill, nil
}

func (u *billUsecase) GetBill(ctx context.Context, billID uuid.UUID) (*dto.BillResponse, error) {
	bill, err := u.billRepo.FindByID(ctx, u.transactor.DB(ctx), billID)
	if err != nil {
		u.log.Warnf("Failed to find bill %s: %+v", billID, err)
		return nil, err
	}
	if bill == nil {
		return nil, apperror.NotFound(ErrBillNotFound, "bill", billID)
	}

	return converter.BillToResponse(bill), nil
}

func (u *billUsecase) GetAllBills(ctx context.Context, req *dto.BillListRequest) (*dto.BillListResponse, error) {
	filter := &entity.BillFilter{}
	if req != nil {
		filter.PatientID = req.PatientID
		filter.PatientName = strings.TrimSpace(req.PatientName)
		filter.Paid = req.Paid
	}

	bills, err := u.billRepo.FindAll(ctx, u.transactor.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list bills: %+v", err)
		return nil, err
	}

	return &dto.BillListResponse{
		Bills: converter.BillsToResponses(bills),
		Total: len(bills),
	}, nil
}

func (u *billUsecase) GetTotalRevenue(ctx context.Context) (*dto.RevenueResponse, error) {
	total, err := u.billRepo.SumPaidTotals(ctx, u.transactor.DB(ctx))
	if err != nil {
		u.log.Warnf("Failed to sum revenue: %+v", err)
		return nil, err
	}

	return &dto.RevenueResponse{TotalRevenue: total}, nil
}
