package dto

import "time"

// CreateUserRequest perfil de usuario creado por un admin o MASTER. La identidad externa
// se enlaza por email en el primer login.
type CreateUserRequest struct {
	CompanyID string `json:"company_id" validate:"omitempty,uuid"`
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Role      string `json:"role" validate:"required,oneof=MASTER admin gerente operador"`
}

// UpdateUserRequest actualización parcial de un usuario.
type UpdateUserRequest struct {
	CompanyID *string `json:"company_id" validate:"omitempty,uuid"`
	Name      *string `json:"name" validate:"omitempty,min=1,max=200"`
	Role      *string `json:"role" validate:"omitempty,oneof=MASTER admin gerente operador"`
	IsActive  *bool   `json:"is_active"`
}

// AssignCompanyRequest cuerpo de PUT /api/master/users/:id/company.
// CompanyID vacío junto con role=MASTER convierte al usuario en operador de plataforma.
type AssignCompanyRequest struct {
	CompanyID string `json:"company_id" validate:"omitempty,uuid"`
	Role      string `json:"role" validate:"omitempty,oneof=MASTER admin gerente operador"`
}

// UserResponse salida de un usuario (sin hash de password).
type UserResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id,omitempty"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	Linked    bool      `json:"linked"` // tiene identidad externa enlazada
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// SignupRequest alta de una empresa nueva con su primer admin.
type SignupRequest struct {
	CompanyName  string `json:"company_name" validate:"required,min=1,max=200"`
	CompanyEmail string `json:"company_email" validate:"omitempty,email"`
	CNPJ         string `json:"cnpj" validate:"omitempty,max=20"`
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
}

// SignupResponse empresa y usuario creados más el token de sesión.
type SignupResponse struct {
	Token   string          `json:"token"`
	User    UserResponse    `json:"user"`
	Company CompanyResponse `json:"company"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
