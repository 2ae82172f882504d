package entity

import "time"

// Tipos de checklist operativo.
const (
	ChecklistAbertura   = "abertura"
	ChecklistFechamento = "fechamento"
	ChecklistLimpeza    = "limpeza"
)

// ValidChecklistType indica si el tipo de checklist existe.
func ValidChecklistType(t string) bool {
	switch t {
	case ChecklistAbertura, ChecklistFechamento, ChecklistLimpeza:
		return true
	}
	return false
}

// ChecklistTemplate plantilla de checklist de una empresa.
type ChecklistTemplate struct {
	ID          string
	CompanyID   string
	Name        string
	Description string
	Type        string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *ChecklistTemplate) OwnerCompanyID() string { return t.CompanyID }

// ChecklistItem tarea de una plantilla. No tiene company_id propio:
// CompanyID se completa desde la plantilla al leer.
type ChecklistItem struct {
	ID               string
	TemplateID       string
	CompanyID        string
	Title            string
	Description      string
	Category         string
	EstimatedMinutes int
	Order            int
	IsRequired       bool
	CreatedAt        time.Time
}

func (i *ChecklistItem) OwnerCompanyID() string { return i.CompanyID }

// ChecklistExecution una pasada por una plantilla en un día dado.
type ChecklistExecution struct {
	ID            string
	TemplateID    string
	TemplateName  string // solo lectura
	TemplateType  string // solo lectura
	UserID        string
	CompanyID     string
	ExecutionDate time.Time // fecha (sin hora) de la ejecución
	StartedAt     time.Time
	CompletedAt   *time.Time
	IsCompleted   bool
	Notes         string
}

func (e *ChecklistExecution) OwnerCompanyID() string { return e.CompanyID }

// ChecklistExecutionItem estado de un ítem dentro de una ejecución.
// CompanyID, Title e IsRequired se completan desde la ejecución y el ítem al leer.
type ChecklistExecutionItem struct {
	ID          string
	ExecutionID string
	ItemID      string
	CompanyID   string
	Title       string
	IsRequired  bool
	Order       int
	IsCompleted bool
	CompletedAt *time.Time
	Notes       string
}

func (i *ChecklistExecutionItem) OwnerCompanyID() string { return i.CompanyID }
