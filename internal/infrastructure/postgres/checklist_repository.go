package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

var (
	_ repository.ChecklistTemplateRepository  = (*ChecklistTemplateRepo)(nil)
	_ repository.ChecklistExecutionRepository = (*ChecklistExecutionRepo)(nil)
)

// ChecklistTemplateRepo plantillas e ítems. Los ítems no tienen company_id: se filtran
// con un JOIN a su plantilla.
type ChecklistTemplateRepo struct {
	q Querier
}

func NewChecklistTemplateRepository(q Querier) *ChecklistTemplateRepo {
	return &ChecklistTemplateRepo{q: q}
}

const templateColumns = `id, company_id, name, description, type, is_active, created_at, updated_at`

func scanTemplate(row pgx.Row) (*entity.ChecklistTemplate, error) {
	var t entity.ChecklistTemplate
	if err := row.Scan(&t.ID, &t.CompanyID, &t.Name, &t.Description, &t.Type, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ChecklistTemplateRepo) Create(ctx context.Context, t *entity.ChecklistTemplate) error {
	_, err := r.q.Exec(ctx, `INSERT INTO checklist_templates (`+templateColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.CompanyID, t.Name, t.Description, t.Type, t.IsActive, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return writeErr("insert checklist template", err)
	}
	return nil
}

func (r *ChecklistTemplateRepo) GetByID(ctx context.Context, scope authz.Scope, id string) (*entity.ChecklistTemplate, error) {
	t, err := scanTemplate(r.q.QueryRow(ctx, `SELECT `+templateColumns+` FROM checklist_templates
		WHERE id = $1 AND ($2::uuid IS NULL OR company_id = $2::uuid)`, id, scope.FilterArg()))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, readErr("get checklist template", err)
	}
	return t, nil
}

func (r *ChecklistTemplateRepo) List(ctx context.Context, scope authz.Scope, f repository.TemplateFilter) ([]*entity.ChecklistTemplate, int, error) {
	limit, offset := limitOffset(f.Page)
	where := `($1::uuid IS NULL OR company_id = $1::uuid)`
	args := []any{scope.FilterArg()}
	if f.Type != "" {
		args = append(args, f.Type)
		where += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if f.OnlyActive {
		where += ` AND is_active`
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM checklist_templates WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, readErr("count checklist templates", err)
	}
	args = append(args, limit, offset)
	rows, err := r.q.Query(ctx, fmt.Sprintf(`SELECT %s FROM checklist_templates WHERE %s
		ORDER BY type, name, id LIMIT $%d OFFSET $%d`, templateColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, readErr("list checklist templates", err)
	}
	defer rows.Close()
	var list []*entity.ChecklistTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, 0, readErr("scan checklist template", err)
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

func (r *ChecklistTemplateRepo) Update(ctx context.Context, scope authz.Scope, t *entity.ChecklistTemplate) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE checklist_templates SET company_id = $2, name = $3, description = $4, type = $5,
			is_active = $6, updated_at = $7
		WHERE id = $1 AND ($8::uuid IS NULL OR company_id = $8::uuid)`,
		t.ID, t.CompanyID, t.Name, t.Description, t.Type, t.IsActive, t.UpdatedAt, scope.FilterArg())
	if err != nil {
		return writeErr("update checklist template", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete con ejecuciones registradas la FK RESTRICT devuelve domain.ErrConflict.
func (r *ChecklistTemplateRepo) Delete(ctx context.Context, scope authz.Scope, id string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM checklist_templates WHERE id = $1 AND ($2::uuid IS NULL OR company_id = $2::uuid)`,
		id, scope.FilterArg())
	if err != nil {
		return false, deleteErr("delete checklist template", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ChecklistTemplateRepo) HasExecutions(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.q, "executions of checklist template",
		`SELECT EXISTS (SELECT 1 FROM checklist_executions WHERE template_id = $1)`, id)
}

const itemColumns = `i.id, i.template_id, t.company_id, i.title, i.description, i.category,
	i.estimated_minutes, i.sort_order, i.is_required, i.created_at`

func scanItem(row pgx.Row) (*entity.ChecklistItem, error) {
	var it entity.ChecklistItem
	err := row.Scan(&it.ID, &it.TemplateID, &it.CompanyID, &it.Title, &it.Description, &it.Category,
		&it.EstimatedMinutes, &it.Order, &it.IsRequired, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ChecklistTemplateRepo) CreateItem(ctx context.Context, it *entity.ChecklistItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO checklist_items (id, template_id, title, description, category, estimated_minutes,
			sort_order, is_required, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		it.ID, it.TemplateID, it.Title, it.Description, it.Category, it.EstimatedMinutes,
		it.Order, it.IsRequired, it.CreatedAt)
	if err != nil {
		return writeErr("insert checklist item", err)
	}
	return nil
}

func (r *ChecklistTemplateRepo) GetItem(ctx context.Context, scope authz.Scope, templateID, itemID string) (*entity.ChecklistItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+`
		FROM checklist_items i JOIN checklist_templates t ON t.id = i.template_id
		WHERE i.id = $1 AND i.template_id = $2 AND ($3::uuid IS NULL OR t.company_id = $3::uuid)`,
		itemID, templateID, scope.FilterArg()))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, readErr("get checklist item", err)
	}
	return it, nil
}

func (r *ChecklistTemplateRepo) ListItems(ctx context.Context, scope authz.Scope, templateID string) ([]*entity.ChecklistItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+itemColumns+`
		FROM checklist_items i JOIN checklist_templates t ON t.id = i.template_id
		WHERE i.template_id = $1 AND ($2::uuid IS NULL OR t.company_id = $2::uuid)
		ORDER BY i.sort_order, i.title`, templateID, scope.FilterArg())
	if err != nil {
		return nil, readErr("list checklist items", err)
	}
	defer rows.Close()
	var list []*entity.ChecklistItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, readErr("scan checklist item", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func (r *ChecklistTemplateRepo) UpdateItem(ctx context.Context, scope authz.Scope, it *entity.ChecklistItem) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE checklist_items i SET title = $3, description = $4, category = $5,
			estimated_minutes = $6, sort_order = $7, is_required = $8
		FROM checklist_templates t
		WHERE i.id = $1 AND i.template_id = $2 AND t.id = i.template_id
			AND ($9::uuid IS NULL OR t.company_id = $9::uuid)`,
		it.ID, it.TemplateID, it.Title, it.Description, it.Category, it.EstimatedMinutes,
		it.Order, it.IsRequired, scope.FilterArg())
	if err != nil {
		return writeErr("update checklist item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteItem un ítem usado por alguna ejecución no se borra (domain.ErrConflict).
func (r *ChecklistTemplateRepo) DeleteItem(ctx context.Context, scope authz.Scope, templateID, itemID string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		DELETE FROM checklist_items i USING checklist_templates t
		WHERE i.id = $1 AND i.template_id = $2 AND t.id = i.template_id
			AND ($3::uuid IS NULL OR t.company_id = $3::uuid)`,
		itemID, templateID, scope.FilterArg())
	if err != nil {
		return false, deleteErr("delete checklist item", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// ChecklistExecutionRepo ejecuciones y su estado por ítem.
type ChecklistExecutionRepo struct {
	q Querier
}

func NewChecklistExecutionRepository(q Querier) *ChecklistExecutionRepo {
	return &ChecklistExecutionRepo{q: q}
}

const executionColumns = `e.id, e.template_id, t.name, t.type, e.user_id, e.company_id, e.execution_date,
	e.started_at, e.completed_at, e.is_completed, e.notes`

func scanExecution(row pgx.Row) (*entity.ChecklistExecution, error) {
	var (
		e      entity.ChecklistExecution
		userID *string
	)
	err := row.Scan(&e.ID, &e.TemplateID, &e.TemplateName, &e.TemplateType, &userID, &e.CompanyID,
		&e.ExecutionDate, &e.StartedAt, &e.CompletedAt, &e.IsCompleted, &e.Notes)
	if err != nil {
		return nil, err
	}
	e.UserID = deref(userID)
	return &e, nil
}

// Create el índice único parcial (plantilla, fecha) WHERE NOT is_completed resuelve la carrera
// entre dos Start simultáneos: el perdedor recibe domain.ErrConflict.
func (r *ChecklistExecutionRepo) Create(ctx context.Context, e *entity.ChecklistExecution) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO checklist_executions (id, template_id, user_id, company_id, execution_date,
			started_at, completed_at, is_completed, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.TemplateID, nullable(e.UserID), e.CompanyID, e.ExecutionDate,
		e.StartedAt, e.CompletedAt, e.IsCompleted, e.Notes)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return writeErr("insert checklist execution", err)
	}
	return nil
}

// CreateItems una fila por ítem de la plantilla, dentro de la tx de Start.
func (r *ChecklistExecutionRepo) CreateItems(ctx context.Context, items []*entity.ChecklistExecutionItem) error {
	for _, it := range items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO checklist_execution_items (id, execution_id, item_id, is_completed, completed_at, notes)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, it.ExecutionID, it.ItemID, it.IsCompleted, it.CompletedAt, it.Notes)
		if err != nil {
			return writeErr("insert checklist execution item", err)
		}
	}
	return nil
}

func (r *ChecklistExecutionRepo) getOne(ctx context.Context, op, suffix string, scope authz.Scope, id string) (*entity.ChecklistExecution, error) {
	e, err := scanExecution(r.q.QueryRow(ctx, `SELECT `+executionColumns+`
		FROM checklist_executions e JOIN checklist_templates t ON t.id = e.template_id
		WHERE e.id = $1 AND ($2::uuid IS NULL OR e.company_id = $2::uuid)`+suffix, id, scope.FilterArg()))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, readErr(op, err)
	}
	return e, nil
}

func (r *ChecklistExecutionRepo) GetByID(ctx context.Context, scope authz.Scope, id string) (*entity.ChecklistExecution, error) {
	return r.getOne(ctx, "get checklist execution", "", scope, id)
}

// GetForUpdate serializa toggles y Complete concurrentes sobre la misma ejecución.
func (r *ChecklistExecutionRepo) GetForUpdate(ctx context.Context, scope authz.Scope, id string) (*entity.ChecklistExecution, error) {
	return r.getOne(ctx, "lock checklist execution", " FOR UPDATE OF e", scope, id)
}

func (r *ChecklistExecutionRepo) FindOpen(ctx context.Context, templateID string, date time.Time) (*entity.ChecklistExecution, error) {
	e, err := scanExecution(r.q.QueryRow(ctx, `SELECT `+executionColumns+`
		FROM checklist_executions e JOIN checklist_templates t ON t.id = e.template_id
		WHERE e.template_id = $1 AND e.execution_date = $2 AND NOT e.is_completed`, templateID, date))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, readErr("find open checklist execution", err)
	}
	return e, nil
}

func (r *ChecklistExecutionRepo) List(ctx context.Context, scope authz.Scope, f repository.ExecutionFilter) ([]*entity.ChecklistExecution, int, error) {
	limit, offset := limitOffset(f.Page)
	where := `($1::uuid IS NULL OR e.company_id = $1::uuid)`
	args := []any{scope.FilterArg()}
	if f.TemplateID != "" {
		args = append(args, f.TemplateID)
		where += fmt.Sprintf(` AND e.template_id = $%d`, len(args))
	}
	if f.Date != nil {
		args = append(args, *f.Date)
		where += fmt.Sprintf(` AND e.execution_date = $%d`, len(args))
	}
	if f.OnlyOpen {
		where += ` AND NOT e.is_completed`
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM checklist_executions e WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, readErr("count checklist executions", err)
	}
	args = append(args, limit, offset)
	rows, err := r.q.Query(ctx, fmt.Sprintf(`SELECT %s
		FROM checklist_executions e JOIN checklist_templates t ON t.id = e.template_id
		WHERE %s ORDER BY e.started_at DESC, e.id LIMIT $%d OFFSET $%d`,
		executionColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, readErr("list checklist executions", err)
	}
	defer rows.Close()
	var list []*entity.ChecklistExecution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, 0, readErr("scan checklist execution", err)
		}
		list = append(list, e)
	}
	return list, total, rows.Err()
}

const executionItemColumns = `x.id, x.execution_id, x.item_id, e.company_id, i.title, i.is_required, i.sort_order,
	x.is_completed, x.completed_at, x.notes`

const executionItemFrom = `
	FROM checklist_execution_items x
	JOIN checklist_executions e ON e.id = x.execution_id
	JOIN checklist_items i ON i.id = x.item_id`

func scanExecutionItem(row pgx.Row) (*entity.ChecklistExecutionItem, error) {
	var it entity.ChecklistExecutionItem
	err := row.Scan(&it.ID, &it.ExecutionID, &it.ItemID, &it.CompanyID, &it.Title, &it.IsRequired, &it.Order,
		&it.IsCompleted, &it.CompletedAt, &it.Notes)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ChecklistExecutionRepo) ListItems(ctx context.Context, scope authz.Scope, executionID string) ([]*entity.ChecklistExecutionItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+executionItemColumns+executionItemFrom+`
		WHERE x.execution_id = $1 AND ($2::uuid IS NULL OR e.company_id = $2::uuid)
		ORDER BY i.sort_order, i.title`, executionID, scope.FilterArg())
	if err != nil {
		return nil, readErr("list checklist execution items", err)
	}
	defer rows.Close()
	var list []*entity.ChecklistExecutionItem
	for rows.Next() {
		it, err := scanExecutionItem(rows)
		if err != nil {
			return nil, readErr("scan checklist execution item", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// GetItem itemID es el ítem de la plantilla.
func (r *ChecklistExecutionRepo) GetItem(ctx context.Context, scope authz.Scope, executionID, itemID string) (*entity.ChecklistExecutionItem, error) {
	it, err := scanExecutionItem(r.q.QueryRow(ctx, `SELECT `+executionItemColumns+executionItemFrom+`
		WHERE x.execution_id = $1 AND x.item_id = $2 AND ($3::uuid IS NULL OR e.company_id = $3::uuid)`,
		executionID, itemID, scope.FilterArg()))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, readErr("get checklist execution item", err)
	}
	return it, nil
}

func (r *ChecklistExecutionRepo) UpdateItem(ctx context.Context, it *entity.ChecklistExecutionItem) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE checklist_execution_items SET is_completed = $2, completed_at = $3, notes = $4
		WHERE id = $1`, it.ID, it.IsCompleted, it.CompletedAt, it.Notes)
	if err != nil {
		return writeErr("update checklist execution item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ChecklistExecutionRepo) MarkCompleted(ctx context.Context, e *entity.ChecklistExecution) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE checklist_executions SET is_completed = $2, completed_at = $3, notes = $4
		WHERE id = $1`, e.ID, e.IsCompleted, e.CompletedAt, e.Notes)
	if err != nil {
		return writeErr("complete checklist execution", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
