package sales

import (
	"context"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// CreateSaleFromRequest adapta el request HTTP al motor de ventas. El cajero es el usuario del token.
func (uc *CreateSaleUseCase) CreateSaleFromRequest(ctx context.Context, cashierID string, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	in := CreateSaleInput{
		CashierID:      cashierID,
		PaymentMethod:  req.PaymentMethod,
		AmountReceived: req.AmountReceived,
		Lines:          make([]SaleLineInput, len(req.Items)),
	}
	for i, it := range req.Items {
		in.Lines[i] = SaleLineInput{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	sale, err := uc.CreateSale(ctx, in)
	if err != nil {
		return nil, err
	}
	out := ToSaleResponse(sale)
	return &out, nil
}

// ToSaleResponse convierte la venta (con líneas) al DTO de salida.
func ToSaleResponse(s *entity.Sale) dto.SaleResponse {
	out := dto.SaleResponse{
		ID:             s.ID,
		TransactionID:  s.TransactionID,
		CashierID:      s.CashierID,
		TotalAmount:    s.TotalAmount,
		PaymentMethod:  s.PaymentMethod,
		AmountReceived: s.AmountReceived,
		ChangeGiven:    s.ChangeGiven,
		CreatedAt:      s.CreatedAt,
		Items:          make([]dto.SaleItemResponse, 0, len(s.Items)),
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ID:         it.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}
	return out
}
