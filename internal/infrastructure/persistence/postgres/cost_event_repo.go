// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"sparkgen-api/internal/domain/entity"
)

// CostEventRepository 成本事件仓储实现
type CostEventRepository struct {
	client *Client
}

// NewCostEventRepository 创建成本事件仓储
func NewCostEventRepository(client *Client) *CostEventRepository {
	return &CostEventRepository{client: client}
}

// Create 追加写入成本事件
func (r *CostEventRepository) Create(ctx context.Context, event *entity.CostEvent) error {
	ctx, span := tracer.Start(ctx, "postgres.CostEventRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(event).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create cost event: %w", err)
	}
	return nil
}
