package converter

import (
	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/domain/entity"
)

func PaymentToResponse(payment *entity.Payment) *dto.PaymentResponse {
	if payment == nil {
		return nil
	}

	return &dto.PaymentResponse{
		ID:            payment.ID,
		BillID:        payment.BillID,
		AmountPaid:    payment.AmountPaid,
		PaymentMethod: payment.PaymentMethod,
		PaidAt:        payment.PaidAt,
	}
}

func PaymentsToResponses(payments []entity.Payment) []dto.PaymentResponse {
	responses := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = *PaymentToResponse(&payments[i])
	}
	return responses
}
