package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// Códigos SQLSTATE usados por los repositorios.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isForeignKeyViolation 23503: la fila referencia a otra inexistente, o un DELETE/UPDATE
// choca con un ON DELETE RESTRICT.
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// writeErr traduce errores de escritura a errores de dominio.
func writeErr(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return domain.ErrReferential
	case pgCode(err) == codeCheckViolation:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, op)
	}
	return readErr(op, err)
}

// deleteErr en un borrado, una FK RESTRICT significa que la fila sigue en uso.
func deleteErr(op string, err error) error {
	if isForeignKeyViolation(err) {
		return domain.ErrConflict
	}
	return readErr(op, err)
}

// readErr envuelve el error; los fallos de conexión se marcan como domain.ErrUpstream.
func readErr(op string, err error) error {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUpstream, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// nullable "" -> NULL para columnas UUID/TEXT opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func limitOffset(p repository.Page) (int, int) {
	p = p.Normalize()
	return p.Limit, p.Offset
}

// exists ejecuta un SELECT EXISTS (...) de un único argumento.
func exists(ctx context.Context, q Querier, op, query string, arg any) (bool, error) {
	var ok bool
	if err := q.QueryRow(ctx, query, arg).Scan(&ok); err != nil {
		return false, readErr(op, err)
	}
	return ok, nil
}
