// Package ledger 提供账户信用点的事务化计费
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sparkgen-api/internal/domain/entity"
	"sparkgen-api/internal/domain/repository"
	apperrors "sparkgen-api/pkg/errors"
	"sparkgen-api/pkg/metrics"
)

// DefaultStartingBalance 惰性建号的默认初始余额
const DefaultStartingBalance = 5

// InsufficientCreditsError 余额不足
type InsufficientCreditsError struct {
	Needed int
	Have   int
}

func (e InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: needed=%d have=%d", e.Needed, e.Have)
}

// Ledger 信用点台账。
// 读取-校验-扣减 在单个数据库事务内完成，
// 同一账户上的并发扣减由行锁串行化，不同账户互不影响。
type Ledger struct {
	tx       repository.Transactor
	accounts repository.AccountRepository
	starting int
}

// New 创建台账
func New(tx repository.Transactor, accounts repository.AccountRepository, startingBalance int) *Ledger {
	if startingBalance <= 0 {
		startingBalance = DefaultStartingBalance
	}
	return &Ledger{
		tx:       tx,
		accounts: accounts,
		starting: startingBalance,
	}
}

// ChargeOrReject 原子化扣减信用点，返回扣减后的余额。
// 账户不存在时以初始余额惰性建号（带上调用方已知的邮箱/昵称）。
// 余额不足时回滚并返回 InsufficientCreditsError；封禁账户直接拒绝。
// 注意：扣减成功后没有任何补偿退款路径，后续生成失败不回冲。
func (l *Ledger) ChargeOrReject(ctx context.Context, ident entity.Identity, requiredCredits int) (remaining int, err error) {
	if requiredCredits < 0 {
		return 0, fmt.Errorf("negative charge amount: %d", requiredCredits)
	}
	if requiredCredits == 0 {
		return 0, nil
	}

	txErr := l.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		account, err := l.accounts.GetByIDForUpdate(txCtx, ident.UID)
		if err != nil {
			return err
		}

		if account == nil {
			account = entity.NewAccount(ident.UID, ident.Email, ident.Name, l.starting)
			if err := l.accounts.Create(txCtx, account); err != nil {
				return err
			}
		}

		if account.Banned {
			return apperrors.ErrAccountBanned
		}

		if !account.CanAfford(requiredCredits) {
			return InsufficientCreditsError{Needed: requiredCredits, Have: account.Credits}
		}

		account.Credits -= requiredCredits
		account.CreditsUsed += requiredCredits
		account.UpdatedAt = time.Now()
		if err := l.accounts.Update(txCtx, account); err != nil {
			return err
		}

		remaining = account.Credits
		return nil
	})

	if txErr != nil {
		var insufficient InsufficientCreditsError
		if errors.As(txErr, &insufficient) {
			metrics.CreditRejectionsTotal.Inc()
			return 0, insufficient
		}
		if apperrors.IsAppError(txErr) {
			return 0, txErr
		}
		return 0, apperrors.ErrChargeFailed.WithError(txErr)
	}

	return remaining, nil
}

// GetAccount 读取账户视图；未建号时返回带初始余额的虚拟账户（不落库）
func (l *Ledger) GetAccount(ctx context.Context, ident entity.Identity) (*entity.Account, error) {
	account, err := l.accounts.GetByID(ctx, ident.UID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return entity.NewAccount(ident.UID, ident.Email, ident.Name, l.starting), nil
	}
	return account, nil
}
