package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinic-billing-core/internal/converter"
	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/domain/entity"
	"clinic-billing-core/internal/domain/repository"
	"clinic-billing-core/internal/service"
	"clinic-billing-core/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
)

type PaymentUsecase interface {
	MarkPaid(ctx context.Context, billID uuid.UUID, req *dto.MarkPaidRequest) (*dto.BillResponse, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*dto.PaymentResponse, error)
	GetPaymentByBill(ctx context.Context, billID uuid.UUID) (*dto.PaymentResponse, error)
	GetAllPayments(ctx context.Context) (*dto.PaymentListResponse, error)
	GetPaymentsByPatient(ctx context.Context, patientID uuid.UUID) (*dto.PaymentListResponse, error)
	DeletePayment(ctx context.Context, id uuid.UUID) error
}

type paymentUsecase struct {
	transactor          repository.Transactor
	log                 *logrus.Logger
	billRepo            repository.BillRepository
	paymentRepo         repository.PaymentRepository
	appointmentRepo     repository.AppointmentRepository
	auditService        service.AuditService
	notificationService service.NotificationService
	now                 func() time.Time
}

func NewPaymentUsecase(
	transactor repository.Transactor,
	log *logrus.Logger,
	billRepo repository.BillRepository,
	paymentRepo repository.PaymentRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
	notificationService service.NotificationService,
) PaymentUsecase {
	return &paymentUsecase{
		transactor:          transactor,
		log:                 log,
		billRepo:            billRepo,
		paymentRepo:         paymentRepo,
		appointmentRepo:     appointmentRepo,
		auditService:        auditService,
		notificationService: notificationService,
		now:                 func() time.Time { return time.Now().UTC() },
	}
}

// MarkPaid is the only path that settles a bill. Marking the bill, writing
// the payment and syncing the appointment's payment fields commit together.
// The appointment's lifecycle status is left alone.
func (u *paymentUsecase) MarkPaid(ctx context.Context, billID uuid.UUID, req *dto.MarkPaidRequest) (*dto.BillResponse, error) {
	method := entity.DefaultPaymentMethod
	if req != nil && strings.TrimSpace(req.PaymentMethod) != "" {
		method = strings.TrimSpace(req.PaymentMethod)
	}

	var (
		bill    *entity.Bill
		payment *entity.Payment
	)

	err := u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		bill, err = u.billRepo.FindByIDForUpdate(ctx, tx, billID)
		if err != nil {
			u.log.Warnf("Failed to lock bill %s: %+v", billID, err)
			return err
		}
		if bill == nil {
			return apperror.NotFound(ErrBillNotFound, "bill", billID)
		}
		if bill.Paid {
			return alreadyPaidError(bill.ID)
		}

		now := u.now()
		bill.Paid = true
		bill.PaidAt = &now
		bill.PaymentMethod = method
		if err := u.billRepo.Update(ctx, tx, bill); err != nil {
			u.log.Warnf("Failed to mark bill %s paid: %+v", bill.ID, err)
			return err
		}

		payment = &entity.Payment{
			ID:            uuid.New(),
			BillID:        bill.ID,
			AmountPaid:    bill.TotalAmount,
			PaymentMethod: method,
			PaidAt:        now,
		}
		if err := u.paymentRepo.Create(ctx, tx, payment); err != nil {
			if isDuplicateKeyError(err, "idx_payments_bill_id") {
				return alreadyPaidError(bill.ID)
			}
			u.log.Warnf("Failed to create payment for bill %s: %+v", bill.ID, err)
			return err
		}

		if bill.AppointmentID != nil {
			appointment, err := u.appointmentRepo.FindByIDForUpdate(ctx, tx, *bill.AppointmentID)
			if err != nil {
				u.log.Warnf("Failed to lock appointment %s: %+v", *bill.AppointmentID, err)
				return err
			}
			if appointment == nil {
				return apperror.NotFound(ErrAppointmentNotFound, "appointment", *bill.AppointmentID)
			}

			appointment.MarkPaid(bill.TotalAmount, now)
			if err := u.appointmentRepo.Update(ctx, tx, appointment); err != nil {
				u.log.Warnf("Failed to sync payment to appointment %s: %+v", appointment.ID, err)
				return err
			}
		}

		return u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionBillPaid,
			"bill", bill.ID.String(),
			map[string]interface{}{"paid": false},
			map[string]interface{}{
				"paid":           true,
				"payment_id":     payment.ID,
				"amount_paid":    payment.AmountPaid,
				"payment_method": method,
			})
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Bill %s paid by %s, amount %s", bill.ID, method, payment.AmountPaid.StringFixed(2))

	u.notificationService.NotifyPaymentConfirmed(service.PaymentConfirmation{
		BillID:        bill.ID,
		PaymentID:     payment.ID,
		PatientID:     bill.PatientID,
		PatientName:   bill.PatientName,
		Amount:        payment.AmountPaid,
		PaymentMethod: method,
		PaidAt:        payment.PaidAt,
	})

	return converter.BillToResponse(bill), nil
}

func alreadyPaidError(billID uuid.UUID) error {
	return apperror.Conflict(ErrBillAlreadyPaid, "", map[string]interface{}{"bill_id": billID})
}

func (u *paymentUsecase) GetPayment(ctx context.Context, id uuid.UUID) (*dto.PaymentResponse, error) {
	payment, err := u.paymentRepo.FindByID(ctx, u.transactor.DB(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find payment %s: %+v", id, err)
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NotFound(ErrPaymentNotFound, "payment", id)
	}

	return converter.PaymentToResponse(payment), nil
}

func (u *paymentUsecase) GetPaymentByBill(ctx context.Context, billID uuid.UUID) (*dto.PaymentResponse, error) {
	payment, err := u.paymentRepo.FindByBillID(ctx, u.transactor.DB(ctx), billID)
	if err != nil {
		u.log.Warnf("Failed to find payment for bill %s: %+v", billID, err)
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NotFound(ErrPaymentNotFound, "payment for bill", billID)
	}

	return converter.PaymentToResponse(payment), nil
}

func (u *paymentUsecase) GetAllPayments(ctx context.Context) (*dto.PaymentListResponse, error) {
	payments, err := u.paymentRepo.FindAll(ctx, u.transactor.DB(ctx))
	if err != nil {
		u.log.Warnf("Failed to list payments: %+v", err)
		return nil, err
	}

	return &dto.PaymentListResponse{
		Payments: converter.PaymentsToResponses(payments),
		Total:    len(payments),
	}, nil
}

func (u *paymentUsecase) GetPaymentsByPatient(ctx context.Context, patientID uuid.UUID) (*dto.PaymentListResponse, error) {
	payments, err := u.paymentRepo.FindByPatientID(ctx, u.transactor.DB(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to list payments for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.PaymentListResponse{
		Payments: converter.PaymentsToResponses(payments),
		Total:    len(payments),
	}, nil
}

// DeletePayment is an administrative correction. It removes the record only;
// the bill and appointment keep their paid state.
func (u *paymentUsecase) DeletePayment(ctx context.Context, id uuid.UUID) error {
	return u.transactor.WithinTransaction(ctx, func(tx *gorm.DB) error {
		payment, err := u.paymentRepo.FindByID(ctx, tx, id)
		if err != nil {
			u.log.Warnf("Failed to find payment %s: %+v", id, err)
			return err
		}
		if payment == nil {
			return apperror.NotFound(ErrPaymentNotFound, "payment", id)
		}

		affected, err := u.paymentRepo.Delete(ctx, tx, id)
		if err != nil {
			u.log.Warnf("Failed to delete payment %s: %+v", id, err)
			return err
		}
		if affected == 0 {
			return apperror.NotFound(ErrPaymentNotFound, "payment", id)
		}

		u.log.Infof("Payment %s for bill %s deleted", id, payment.BillID)

		return u.auditService.LogDelete(ctx, tx, actorFromContext(ctx), entity.AuditActionPaymentDelete,
			"payment", id.String(), converter.PaymentToResponse(payment))
	})
}
