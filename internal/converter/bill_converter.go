package converter

import (
	"clinic-billing-core/internal/delivery/dto"
	"clinic-billing-core/internal/domain/entity"
)

func BillItemToResponse(item *entity.BillItem) dto.BillItemResponse {
	return dto.BillItemResponse{
		ID:       item.ID,
		ItemName: item.ItemName,
		ItemType: item.ItemType,
		Price:    item.Price,
	}
}

// BillToResponse converts a Bill entity with its items to BillResponse DTO
func BillToResponse(bill *entity.Bill) *dto.BillResponse {
	if bill == nil {
		return nil
	}

	items := make([]dto.BillItemResponse, len(bill.Items))
	for i := range bill.Items {
		items[i] = BillItemToResponse(&bill.Items[i])
	}

	return &dto.BillResponse{
		ID:            bill.ID,
		PatientID:     bill.PatientID,
		PatientName:   bill.PatientName,
		BillType:      string(bill.BillType),
		AppointmentID: bill.AppointmentID,
		TotalAmount:   bill.TotalAmount,
		Paid:          bill.Paid,
		PaymentMethod: bill.PaymentMethod,
		Items:         items,
		CreatedAt:     bill.CreatedAt,
		PaidAt:        bill.PaidAt,
	}
}

func BillsToResponses(bills []entity.Bill) []dto.BillResponse {
	responses := make([]dto.BillResponse, len(bills))
	for i := range bills {
		responses[i] = *BillToResponse(&bills[i])
	}
	return responses
}
