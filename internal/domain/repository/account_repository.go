// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"sparkgen-api/internal/domain/entity"
)

// AccountRepository 账户仓储接口
type AccountRepository interface {
	// GetByID 根据 uid 获取账户；不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.Account, error)

	// GetByIDForUpdate 在事务内加行锁读取账户；不存在时返回 (nil, nil)。
	// 必须在 Transactor.WithTransaction 中调用。
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Account, error)

	// Create 创建账户
	Create(ctx context.Context, account *entity.Account) error

	// Update 更新账户
	Update(ctx context.Context, account *entity.Account) error
}
