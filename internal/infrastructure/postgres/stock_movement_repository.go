package postgres

import (
	"context"
	"fmt"

	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger append-only de movimientos sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Dentro del movimiento se pasa la tx.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta el movimiento; no hay Update ni Delete.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, company_id, product_id, user_id, type, quantity, unit_price,
			total_price, notes, previous_stock, new_stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.ProductID, nullable(m.UserID), m.Type, m.Quantity, m.UnitPrice,
		m.TotalPrice, m.Notes, m.PreviousStock, m.NewStock, m.CreatedAt,
	)
	if err != nil {
		return writeErr("insert stock movement", err)
	}
	return nil
}

// List historial más reciente primero. El nombre del producto solo se expone si sigue activo.
func (r *StockMovementRepo) List(ctx context.Context, scope authz.Scope, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	limit, offset := limitOffset(f.Page)
	where := `($1::uuid IS NULL OR m.company_id = $1::uuid)`
	args := []any{scope.FilterArg()}
	add := func(cond string, v any) {
		args = append(args, v)
		where += fmt.Sprintf(cond, len(args))
	}
	if f.ProductID != "" {
		add(` AND m.product_id = $%d`, f.ProductID)
	}
	if f.Type != "" {
		add(` AND m.type = $%d`, f.Type)
	}
	if f.From != nil {
		add(` AND m.created_at >= $%d`, *f.From)
	}
	if f.To != nil {
		add(` AND m.created_at <= $%d`, *f.To)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_movements m WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, readErr("count stock movements", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT m.id, m.company_id, m.product_id, CASE WHEN p.is_active THEN p.name ELSE '' END,
			m.user_id, m.type, m.quantity, m.unit_price, m.total_price, m.notes,
			m.previous_stock, m.new_stock, m.created_at
		FROM stock_movements m
		LEFT JOIN products p ON p.id = m.product_id AND p.company_id = m.company_id
		WHERE %s
		ORDER BY m.created_at DESC, m.id
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, readErr("list stock movements", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var (
			m      entity.StockMovement
			userID *string
		)
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.ProductID, &m.ProductName, &userID, &m.Type, &m.Quantity,
			&m.UnitPrice, &m.TotalPrice, &m.Notes, &m.PreviousStock, &m.NewStock, &m.CreatedAt); err != nil {
			return nil, 0, readErr("scan stock movement", err)
		}
		m.UserID = deref(userID)
		list = append(list, &m)
	}
	return list, total, rows.Err()
}

// ExistsForProduct true si hay al menos un movimiento del producto, de cualquier empresa.
func (r *StockMovementRepo) ExistsForProduct(ctx context.Context, productID string) (bool, error) {
	return exists(ctx, r.q, "stock movements of product",
		`SELECT EXISTS (SELECT 1 FROM stock_movements WHERE product_id = $1)`, productID)
}
