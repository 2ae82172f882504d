// Package analytics contiene los casos de uso del dashboard operativo y los
// contadores globales de la plataforma.
package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// SummaryCache caché del resumen por scope y día. GetSummary devuelve (nil, nil) si no hay entrada.
type SummaryCache interface {
	GetSummary(ctx context.Context, key string) (*dto.DashboardSummaryDTO, error)
	SetSummary(ctx context.Context, key string, summary *dto.DashboardSummaryDTO, ttl time.Duration) error
}

// DashboardUseCase genera el resumen del día para el scope del principal.
//
// Fuente de datos: DashboardRepository (consultas read-only).
type DashboardUseCase struct {
	repo  repository.DashboardRepository
	cache SummaryCache
	ttl   time.Duration
	now   func() time.Time
}

// NewDashboardUseCase construye el caso de uso. cache puede ser nil (sin caché).
func NewDashboardUseCase(repo repository.DashboardRepository, cache SummaryCache, ttl time.Duration) *DashboardUseCase {
	return &DashboardUseCase{repo: repo, cache: cache, ttl: ttl, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cinco consultas en paralelo:
//  1. ProductCounters       → TotalProducts, LowStock, StockValue
//  2. CountSuppliers
//  3. CountCategories
//  4. MovementCounters(hoy) → TodayEntradas, TodaySaidas, TodayAjustes
//  5. ChecklistProgress(hoy)
func (uc *DashboardUseCase) GetSummary(ctx context.Context, p authz.Principal) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()
	scope := p.Scope()

	// Hoy: 00:00:00.000 – 23:59:59.999
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)

	key := cacheKey(scope, todayStart)
	if uc.cache != nil && uc.ttl > 0 {
		cached, err := uc.cache.GetSummary(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("dashboard: caché no disponible")
		} else if cached != nil {
			return cached, nil
		}
	}

	var (
		products   repository.ProductCounters
		suppliers  int
		categories int
		movements  repository.MovementCounters
		checklists []repository.ChecklistProgress
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if products, err = uc.repo.ProductCounters(gctx, scope); err != nil {
			return fmt.Errorf("dashboard: productos: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if suppliers, err = uc.repo.CountSuppliers(gctx, scope); err != nil {
			return fmt.Errorf("dashboard: proveedores: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if categories, err = uc.repo.CountCategories(gctx, scope); err != nil {
			return fmt.Errorf("dashboard: categorías: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if movements, err = uc.repo.MovementCounters(gctx, scope, todayStart, todayEnd); err != nil {
			return fmt.Errorf("dashboard: movimientos de hoy: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if checklists, err = uc.repo.ChecklistProgress(gctx, scope, todayStart); err != nil {
			return fmt.Errorf("dashboard: checklists de hoy: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &dto.DashboardSummaryDTO{
		TotalProducts: products.Active,
		LowStock:      products.LowStock,
		Suppliers:     suppliers,
		Categories:    categories,
		StockValue:    products.StockValue.Round(2),
		TodayEntradas: movements.Entradas,
		TodaySaidas:   movements.Saidas,
		TodayAjustes:  movements.Ajustes,
		Checklists:    checklistProgress(checklists),
		DateLabel:     dayLabel(now),
	}

	if uc.cache != nil && uc.ttl > 0 {
		if err := uc.cache.SetSummary(ctx, key, summary, uc.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("dashboard: no se pudo guardar en caché")
		}
	}
	return summary, nil
}

// Overview contadores globales de la plataforma (solo MASTER).
func (uc *DashboardUseCase) Overview(ctx context.Context, p authz.Principal) (*dto.PlatformOverviewResponse, error) {
	if !p.IsMaster() {
		return nil, fmt.Errorf("%w: requiere MASTER", domain.ErrForbidden)
	}
	c, err := uc.repo.PlatformCounters(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: contadores de plataforma: %w", err)
	}
	return &dto.PlatformOverviewResponse{
		Companies:       c.Companies,
		ActiveCompanies: c.ActiveCompanies,
		Users:           c.Users,
		Products:        c.Products,
	}, nil
}

// checklistProgress un registro por tipo de checklist, aunque no haya ejecuciones hoy.
func checklistProgress(rows []repository.ChecklistProgress) []dto.ChecklistProgressDTO {
	byType := make(map[string]repository.ChecklistProgress, len(rows))
	for _, r := range rows {
		byType[r.Type] = r
	}
	out := make([]dto.ChecklistProgressDTO, 0, 3)
	for _, t := range []string{entity.ChecklistAbertura, entity.ChecklistFechamento, entity.ChecklistLimpeza} {
		r := byType[t]
		item := dto.ChecklistProgressDTO{Type: t, Executions: r.Executions, Completed: r.Completed}
		if r.ItemsTotal > 0 {
			item.Percent = math.Round(float64(r.ItemsCompleted)*1000/float64(r.ItemsTotal)) / 10
		}
		out = append(out, item)
	}
	return out
}

func cacheKey(scope authz.Scope, day time.Time) string {
	owner := "all"
	if !scope.All {
		owner = scope.CompanyID
	}
	return fmt.Sprintf("dashboard:summary:%s:%s", owner, day.Format(time.DateOnly))
}

// dayLabel devuelve una etiqueta legible del día, ej: "16 de outubro de 2026".
func dayLabel(t time.Time) string {
	months := [...]string{
		"janeiro", "fevereiro", "março", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), months[t.Month()-1], t.Year())
}
