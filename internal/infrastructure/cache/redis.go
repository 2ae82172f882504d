// Package cache adaptadores de caché sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stockeasy/stockeasy-api/internal/application/analytics"
	"github.com/stockeasy/stockeasy-api/internal/application/dto"
)

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return client, nil
}

var _ analytics.SummaryCache = (*SummaryCache)(nil)

// SummaryCache guarda el resumen del dashboard como JSON con TTL.
type SummaryCache struct {
	client *redis.Client
}

// NewSummaryCache construye la caché del dashboard.
func NewSummaryCache(client *redis.Client) *SummaryCache {
	return &SummaryCache{client: client}
}

// GetSummary (nil, nil) si la clave no existe o expiró.
func (c *SummaryCache) GetSummary(ctx context.Context, key string) (*dto.DashboardSummaryDTO, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get %s: %w", key, err)
	}
	var out dto.DashboardSummaryDTO
	if err := json.Unmarshal(raw, &out); err != nil {
		// Entrada corrupta: se trata como ausente y se sobrescribe en el siguiente Set.
		return nil, nil
	}
	return &out, nil
}

func (c *SummaryCache) SetSummary(ctx context.Context, key string, summary *dto.DashboardSummaryDTO, ttl time.Duration) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}
