package inventory

import (
	"context"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement.
// actorID sale del token; nunca del body.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, actorID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	mov, err := uc.RegisterMovement(ctx, RegisterMovementInput{
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		ActorID:   actorID,
		Note:      in.Note,
		UnitCost:  in.UnitCost,
	})
	if err != nil {
		return nil, err
	}
	out := ToMovementResponse(mov)
	return &out, nil
}

// ToMovementResponse convierte la entidad al DTO de salida.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Type:        m.Type,
		Quantity:    m.Quantity,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		ReferenceID: m.ReferenceID,
		Note:        m.Note,
		ActorID:     m.ActorID,
		CreatedAt:   m.CreatedAt,
	}
}
