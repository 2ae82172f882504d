package apptest

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

// SeedCompany inserta una empresa activa.
func (s *Store) SeedCompany(name string) entity.Company {
	now := time.Now()
	c := entity.Company{
		ID: uuid.New().String(), Name: name, Email: uuid.New().String()[:8] + "@empresa.com",
		Plan: entity.PlanBasic, MaxUsers: entity.DefaultMaxUsers, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	s.mu.Lock()
	s.companies[c.ID] = c
	s.mu.Unlock()
	return c
}

// SeedUser inserta un usuario activo enlazado a authID y devuelve su principal.
// companyID vacío para MASTER.
func (s *Store) SeedUser(role, companyID, authID string) authz.Principal {
	now := time.Now()
	u := entity.User{
		ID: uuid.New().String(), AuthID: authID, CompanyID: companyID,
		Name: role + " " + authID, Email: authID + "@stockeasy.test", Role: role, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	return authz.Principal{UserID: u.ID, Email: u.Email, Role: u.Role, CompanyID: u.CompanyID}
}

// SeedInvitedUser inserta un usuario activo aún sin identidad externa (alta por invitación).
func (s *Store) SeedInvitedUser(role, companyID, email string) entity.User {
	now := time.Now()
	u := entity.User{
		ID: uuid.New().String(), CompanyID: companyID, Name: email,
		Email: email, Role: role, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	return u
}

// SeedProduct inserta un producto activo con el stock indicado.
func (s *Store) SeedProduct(companyID, name string, currentStock, minStock int) entity.Product {
	now := time.Now()
	p := entity.Product{
		ID: uuid.New().String(), CompanyID: companyID, Name: name, Unit: "kg",
		CurrentStock: currentStock, MinStock: minStock, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	s.mu.Lock()
	s.products[p.ID] = p
	s.mu.Unlock()
	return p
}

// SeedSupplier inserta un proveedor.
func (s *Store) SeedSupplier(companyID, name, phone string) entity.Supplier {
	now := time.Now()
	sup := entity.Supplier{ID: uuid.New().String(), CompanyID: companyID, Name: name, Phone: phone, CreatedAt: now, UpdatedAt: now}
	s.mu.Lock()
	s.suppliers[sup.ID] = sup
	s.mu.Unlock()
	return sup
}

// SeedTemplate inserta una plantilla activa con n ítems obligatorios.
func (s *Store) SeedTemplate(companyID, checklistType string, n int) entity.ChecklistTemplate {
	now := time.Now()
	t := entity.ChecklistTemplate{
		ID: uuid.New().String(), CompanyID: companyID, Name: "Checklist " + checklistType,
		Type: checklistType, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.ID] = t
	for i := 0; i < n; i++ {
		it := entity.ChecklistItem{
			ID: uuid.New().String(), TemplateID: t.ID, Title: "Tarefa " + string(rune('A'+i)),
			Category: "geral", EstimatedMinutes: 5, Order: i, IsRequired: true, CreatedAt: now,
		}
		s.items[it.ID] = it
	}
	return t
}

// PutProduct reemplaza (o inserta) un producto tal cual.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	s.products[p.ID] = p
	s.mu.Unlock()
}
