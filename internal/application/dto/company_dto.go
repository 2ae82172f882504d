package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa (MASTER).
type CreateCompanyRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"required,email"`
	CNPJ     string `json:"cnpj" validate:"omitempty,max=20"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Address  string `json:"address" validate:"omitempty,max=300"`
	Plan     string `json:"plan" validate:"omitempty,oneof=basic pro enterprise"`
	MaxUsers int    `json:"max_users" validate:"omitempty,min=1,max=1000"`
}

// UpdateCompanyRequest actualización parcial. Plan, MaxUsers e IsActive solo para MASTER.
type UpdateCompanyRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
	CNPJ     *string `json:"cnpj" validate:"omitempty,max=20"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Address  *string `json:"address" validate:"omitempty,max=300"`
	Plan     *string `json:"plan" validate:"omitempty,oneof=basic pro enterprise"`
	MaxUsers *int    `json:"max_users" validate:"omitempty,min=1,max=1000"`
	IsActive *bool   `json:"is_active"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CNPJ      string    `json:"cnpj,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Plan      string    `json:"plan"`
	MaxUsers  int       `json:"max_users"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// PlatformOverviewResponse contadores globales para /api/super-admin/overview.
type PlatformOverviewResponse struct {
	Companies       int `json:"companies"`
	ActiveCompanies int `json:"active_companies"`
	Users           int `json:"users"`
	Products        int `json:"products"`
}
