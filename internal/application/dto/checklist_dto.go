package dto

import "time"

// CreateTemplateRequest entrada para crear una plantilla, opcionalmente con sus ítems.
type CreateTemplateRequest struct {
	CompanyID   string              `json:"company_id" validate:"omitempty,uuid"`
	Name        string              `json:"name" validate:"required,min=1,max=200"`
	Description string              `json:"description" validate:"omitempty,max=500"`
	Type        string              `json:"type" validate:"required,oneof=abertura fechamento limpeza"`
	Items       []CreateItemRequest `json:"items" validate:"omitempty,dive"`
}

// UpdateTemplateRequest actualización parcial de una plantilla.
type UpdateTemplateRequest struct {
	CompanyID   *string `json:"company_id" validate:"omitempty,uuid"`
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Type        *string `json:"type" validate:"omitempty,oneof=abertura fechamento limpeza"`
	IsActive    *bool   `json:"is_active"`
}

// CreateItemRequest ítem de una plantilla.
type CreateItemRequest struct {
	Title            string `json:"title" validate:"required,min=1,max=200"`
	Description      string `json:"description" validate:"omitempty,max=500"`
	Category         string `json:"category" validate:"omitempty,max=60"`
	EstimatedMinutes int    `json:"estimated_minutes" validate:"min=0,max=1440"`
	Order            *int   `json:"order" validate:"omitempty,min=0"`
	IsRequired       *bool  `json:"is_required"`
}

// UpdateItemRequest actualización parcial de un ítem.
type UpdateItemRequest struct {
	Title            *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description      *string `json:"description" validate:"omitempty,max=500"`
	Category         *string `json:"category" validate:"omitempty,max=60"`
	EstimatedMinutes *int    `json:"estimated_minutes" validate:"omitempty,min=0,max=1440"`
	Order            *int    `json:"order" validate:"omitempty,min=0"`
	IsRequired       *bool   `json:"is_required"`
}

// ItemResponse salida de un ítem de plantilla.
type ItemResponse struct {
	ID               string `json:"id"`
	TemplateID       string `json:"template_id"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	Category         string `json:"category"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	Order            int    `json:"order"`
	IsRequired       bool   `json:"is_required"`
}

// TemplateResponse salida de una plantilla (Items solo en el detalle).
type TemplateResponse struct {
	ID          string         `json:"id"`
	CompanyID   string         `json:"company_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Type        string         `json:"type"`
	IsActive    bool           `json:"is_active"`
	Items       []ItemResponse `json:"items,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TemplateListResponse lista paginada de plantillas.
type TemplateListResponse struct {
	Items []TemplateResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StartExecutionRequest body para POST /api/checklists/executions.
type StartExecutionRequest struct {
	TemplateID string `json:"template_id" validate:"required,uuid"`
	Notes      string `json:"notes" validate:"omitempty,max=500"`
}

// ToggleItemRequest marca o desmarca un ítem de una ejecución.
// Notes nil deja la nota como está; "" la borra.
type ToggleItemRequest struct {
	IsCompleted bool    `json:"is_completed"`
	Notes       *string `json:"notes" validate:"omitempty,max=500"`
}

// CompleteExecutionRequest cierra una ejecución.
type CompleteExecutionRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=500"`
}

// ExecutionItemResponse estado de un ítem en una ejecución.
type ExecutionItemResponse struct {
	ID          string     `json:"id"`
	ItemID      string     `json:"item_id"`
	Title       string     `json:"title"`
	IsRequired  bool       `json:"is_required"`
	Order       int        `json:"order"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// ProgressDTO avance de una ejecución.
type ProgressDTO struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

// ExecutionResponse salida de una ejecución (Items y Progress solo en el detalle).
type ExecutionResponse struct {
	ID            string                  `json:"id"`
	TemplateID    string                  `json:"template_id"`
	TemplateName  string                  `json:"template_name,omitempty"`
	TemplateType  string                  `json:"template_type,omitempty"`
	CompanyID     string                  `json:"company_id"`
	UserID        string                  `json:"user_id"`
	ExecutionDate string                  `json:"execution_date"` // YYYY-MM-DD
	StartedAt     time.Time               `json:"started_at"`
	CompletedAt   *time.Time              `json:"completed_at,omitempty"`
	IsCompleted   bool                    `json:"is_completed"`
	Notes         string                  `json:"notes,omitempty"`
	Items         []ExecutionItemResponse `json:"items,omitempty"`
	Progress      *ProgressDTO            `json:"progress,omitempty"`
}

// ExecutionListResponse lista paginada de ejecuciones.
type ExecutionListResponse struct {
	Items []ExecutionResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
