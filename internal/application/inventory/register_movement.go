package inventory

import (
	"context"

	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
)

// RecordMovementFromRequest adapta el request HTTP al caso de uso RecordMovement(ctx, p, MovementInput).
func (uc *RegisterMovementUseCase) RecordMovementFromRequest(ctx context.Context, p authz.Principal, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	input := MovementInput{
		ProductID:  in.ProductID,
		Type:       in.Type,
		Quantity:   in.Quantity,
		NewStock:   in.NewStock,
		UnitPrice:  in.UnitPrice,
		TotalPrice: in.TotalPrice,
		Notes:      in.Notes,
	}
	mov, err := uc.RecordMovement(ctx, p, input)
	if err != nil {
		return nil, err
	}
	out := ToMovementResponse(mov)
	return &out, nil
}
