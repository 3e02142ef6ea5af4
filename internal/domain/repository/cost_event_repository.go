// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"sparkgen-api/internal/domain/entity"
)

// CostEventRepository 成本事件仓储接口（仅追加）
type CostEventRepository interface {
	// Create 写入一条成本事件
	Create(ctx context.Context, event *entity.CostEvent) error
}
