// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sparkgen-api/internal/domain/entity"
)

// AccountRepository 账户仓储实现
type AccountRepository struct {
	client *Client
}

// NewAccountRepository 创建账户仓储
func NewAccountRepository(client *Client) *AccountRepository {
	return &AccountRepository{client: client}
}

// GetByID 根据 uid 获取账户
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	ctx, span := tracer.Start(ctx, "postgres.AccountRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var account entity.Account
	if err := db.First(&account, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetByIDForUpdate 加行锁读取账户，同一行上的并发扣减在此串行化
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Account, error) {
	ctx, span := tracer.Start(ctx, "postgres.AccountRepository.GetByIDForUpdate")
	defer span.End()

	tx, err := requireTx(ctx)
	if err != nil {
		return nil, err
	}

	var account entity.Account
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return &account, nil
}

// Create 创建账户
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	ctx, span := tracer.Start(ctx, "postgres.AccountRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(account).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// Update 更新账户
func (r *AccountRepository) Update(ctx context.Context, account *entity.Account) error {
	ctx, span := tracer.Start(ctx, "postgres.AccountRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(account).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}
