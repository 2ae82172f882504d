package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/application/ports"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/inventory"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos de stock de forma transaccional
// (entrada, saida, ajuste) con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner  ports.TxRunner
	movements repository.StockMovementRepository
	observer  MovementObserver
}

// NewRegisterMovementUseCase construye el caso de uso. observer puede ser nil.
func NewRegisterMovementUseCase(
	txRunner ports.TxRunner,
	movements repository.StockMovementRepository,
	observer MovementObserver,
) *RegisterMovementUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	return &RegisterMovementUseCase{
		txRunner:  txRunner,
		movements: movements,
		observer:  observer,
	}
}

// MovementInput entrada para registrar un movimiento.
// entrada/saida: Quantity > 0. ajuste: NewStock >= 0 (Quantity se ignora).
type MovementInput struct {
	ProductID  string
	Type       string
	Quantity   int
	NewStock   *int
	UnitPrice  *decimal.Decimal
	TotalPrice *decimal.Decimal
	Notes      string
}

// RecordMovement inicia una transacción, bloquea la fila del producto (SELECT FOR UPDATE),
// aplica el movimiento, guarda el registro del ledger y actualiza current_stock.
// Cualquier error deshace ambos cambios.
func (uc *RegisterMovementUseCase) RecordMovement(ctx context.Context, p authz.Principal, input MovementInput) (*entity.StockMovement, error) {
	if input.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	step := inventory.Step{Type: input.Type, Quantity: input.Quantity}
	if input.Type == entity.MovementAjuste {
		if input.NewStock == nil {
			return nil, fmt.Errorf("%w: new_stock es requerido en ajuste", domain.ErrInvalidInput)
		}
		step.Target = *input.NewStock
	}
	if input.UnitPrice != nil && input.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if input.TotalPrice != nil && input.TotalPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, p.Scope(), func(repos ports.Repos) error {
		// Bloquea la fila del producto para serializar movimientos concurrentes
		product, err := repos.Products.GetForUpdate(ctx, p.Scope(), input.ProductID)
		if err != nil {
			return err
		}
		if product == nil || !product.IsActive {
			return domain.ErrNotFound
		}
		res, err := inventory.Apply(product.CurrentStock, step)
		if err != nil {
			return err
		}
		total := input.TotalPrice
		if total == nil && input.UnitPrice != nil {
			t := input.UnitPrice.Mul(decimal.NewFromInt(int64(res.Quantity)))
			total = &t
		}
		mov = &entity.StockMovement{
			ID:            uuid.New().String(),
			CompanyID:     product.CompanyID,
			ProductID:     product.ID,
			ProductName:   product.Name,
			UserID:        p.UserID,
			Type:          input.Type,
			Quantity:      res.Quantity,
			UnitPrice:     input.UnitPrice,
			TotalPrice:    total,
			Notes:         input.Notes,
			PreviousStock: res.Previous,
			NewStock:      res.New,
			CreatedAt:     time.Now(),
		}
		if err := repos.Movements.Create(ctx, mov); err != nil {
			return fmt.Errorf("guardar movimiento: %w", err)
		}
		if err := repos.Products.UpdateStock(ctx, product.ID, res.New); err != nil {
			return fmt.Errorf("actualizar stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.observer.MovementRecorded(mov.Type)
	return mov, nil
}

// ListMovements historial visible para el principal, el más reciente primero.
func (uc *RegisterMovementUseCase) ListMovements(ctx context.Context, p authz.Principal, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Type != "" && !entity.ValidMovementType(filter.Type) {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, filter.Type)
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: rango de fechas inválido", domain.ErrInvalidInput)
	}
	filter.Page = filter.Page.Normalize()
	list, total, err := uc.movements.List(ctx, p.Scope(), filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Page.Limit, Offset: filter.Page.Offset, Total: total},
	}, nil
}

// ToMovementResponse mapea un movimiento del ledger a su DTO.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		CompanyID:     m.CompanyID,
		ProductID:     m.ProductID,
		ProductName:   m.ProductName,
		UserID:        m.UserID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		TotalPrice:    m.TotalPrice,
		Notes:         m.Notes,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		CreatedAt:     m.CreatedAt,
	}
}
