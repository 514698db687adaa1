package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const notificationTimeout = 10 * time.Second

// PaymentConfirmation is the payload sent after a bill is settled.
type PaymentConfirmation struct {
	BillID        uuid.UUID
	PaymentID     uuid.UUID
	PatientID     uuid.UUID
	PatientName   string
	Amount        decimal.Decimal
	PaymentMethod string
	PaidAt        time.Time
}

// Notifier delivers messages to patients. Delivery lives outside the core.
type Notifier interface {
	SendPaymentConfirmation(ctx context.Context, msg PaymentConfirmation) error
}

// NotificationService dispatches notifications without blocking the caller.
// Failures are logged and never reach the operation that triggered them.
type NotificationService interface {
	NotifyPaymentConfirmed(msg PaymentConfirmation)
}

type notificationService struct {
	log      *logrus.Logger
	notifier Notifier
}

func NewNotificationService(log *logrus.Logger, notifier Notifier) NotificationService {
	return &notificationService{
		log:      log,
		notifier: notifier,
	}
}

func (s *notificationService) NotifyPaymentConfirmed(msg PaymentConfirmation) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Errorf("Payment confirmation for bill %s panicked: %v", msg.BillID, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
		defer cancel()

		if err := s.notifier.SendPaymentConfirmation(ctx, msg); err != nil {
			s.log.Warnf("Failed to send payment confirmation for bill %s: %+v", msg.BillID, err)
			return
		}
		s.log.Infof("Payment confirmation sent for bill %s", msg.BillID)
	}()
}

type logNotifier struct {
	log *logrus.Logger
}

// NewLogNotifier returns a Notifier that records messages in the application
// log. It stands in until an outbound mail or SMS gateway is configured.
func NewLogNotifier(log *logrus.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) SendPaymentConfirmation(ctx context.Context, msg PaymentConfirmation) error {
	n.log.WithFields(logrus.Fields{
		"bill_id":        msg.BillID,
		"payment_id":     msg.PaymentID,
		"patient_id":     msg.PatientID,
		"amount":         msg.Amount.StringFixed(2),
		"payment_method": msg.PaymentMethod,
	}).Infof("Payment of %s received from %s", msg.Amount.StringFixed(2), msg.PatientName)
	return nil
}
