package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockeasy/stockeasy-api/internal/application/ports"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, publica el scope para las políticas RLS, ejecuta fn con
// repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, scope authz.Scope, fn func(repos ports.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return readErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := setScope(ctx, tx, scope); err != nil {
		return err
	}
	if err := fn(reposFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// setScope set_config(..., true) limita los valores a la transacción actual.
func setScope(ctx context.Context, tx pgx.Tx, scope authz.Scope) error {
	isMaster := "off"
	if scope.All {
		isMaster = "on"
	}
	company := ""
	if arg := scope.FilterArg(); arg != nil {
		company = *arg
	}
	_, err := tx.Exec(ctx,
		`SELECT set_config('app.is_master', $1, true), set_config('app.company_id', $2, true)`,
		isMaster, company,
	)
	if err != nil {
		return readErr("set tenant scope", err)
	}
	return nil
}

func reposFor(q Querier) ports.Repos {
	return ports.Repos{
		Companies:  NewCompanyRepository(q),
		Users:      NewUserRepository(q),
		Products:   NewProductRepository(q),
		Movements:  NewStockMovementRepository(q),
		Templates:  NewChecklistTemplateRepository(q),
		Executions: NewChecklistExecutionRepository(q),
	}
}
