package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sparkgen-api/internal/domain/entity"
	apperrors "sparkgen-api/pkg/errors"
)

// fakeStore 以互斥锁串行化事务，模拟同一账户行锁下的可串行化语义
type fakeStore struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account

	createCalls int
	updateCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]*entity.Account)}
}

func (s *fakeStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx)
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*entity.Account, error) {
	if acc, ok := s.accounts[id]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeStore) GetByIDForUpdate(_ context.Context, id string) (*entity.Account, error) {
	if acc, ok := s.accounts[id]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeStore) Create(_ context.Context, account *entity.Account) error {
	s.createCalls++
	cp := *account
	s.accounts[account.ID] = &cp
	return nil
}

func (s *fakeStore) Update(_ context.Context, account *entity.Account) error {
	s.updateCalls++
	cp := *account
	s.accounts[account.ID] = &cp
	return nil
}

func (s *fakeStore) credits(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id].Credits
}

var testIdent = entity.Identity{UID: "uid-1", Email: "a@b.test", Name: "Ada"}

func TestChargeLazyCreatesAccount(t *testing.T) {
	store := newFakeStore()
	l := New(store, store, 5)

	remaining, err := l.ChargeOrReject(context.Background(), testIdent, 2)
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if remaining != 3 {
		t.Errorf("remaining = %d, want 3", remaining)
	}
	if store.createCalls != 1 {
		t.Errorf("account should be created lazily exactly once, got %d creates", store.createCalls)
	}

	acc := store.accounts["uid-1"]
	if acc.Email != "a@b.test" || acc.Name != "Ada" {
		t.Errorf("identity claims not seeded: %+v", acc)
	}
	if acc.CreditsUsed != 2 {
		t.Errorf("creditsUsed = %d, want 2", acc.CreditsUsed)
	}
}

func TestChargeInsufficientBalance(t *testing.T) {
	store := newFakeStore()
	l := New(store, store, 5)

	_, err := l.ChargeOrReject(context.Background(), testIdent, 10)
	var insufficient InsufficientCreditsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientCreditsError, got %v", err)
	}
	if insufficient.Needed != 10 || insufficient.Have != 5 {
		t.Errorf("error = %+v, want needed=10 have=5", insufficient)
	}
	// 拒绝时不得留下任何扣减
	if got := store.credits("uid-1"); got != 5 {
		t.Errorf("credits = %d after rejection, want 5", got)
	}
}

func TestChargeZeroSkipsLedger(t *testing.T) {
	store := newFakeStore()
	l := New(store, store, 5)

	remaining, err := l.ChargeOrReject(context.Background(), testIdent, 0)
	if err != nil {
		t.Fatalf("zero charge failed: %v", err)
	}
	if remaining != 0 {
		t.Errorf("remaining = %d, want 0", remaining)
	}
	if len(store.accounts) != 0 {
		t.Error("zero-cost charge must not touch the store")
	}
}

func TestChargeBannedAccount(t *testing.T) {
	store := newFakeStore()
	store.accounts["uid-1"] = &entity.Account{ID: "uid-1", Credits: 100, Banned: true}
	l := New(store, store, 5)

	_, err := l.ChargeOrReject(context.Background(), testIdent, 1)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeAccountBanned {
		t.Fatalf("expected banned error, got %v", err)
	}
	if got := store.credits("uid-1"); got != 100 {
		t.Errorf("banned account balance changed: %d", got)
	}
}

func TestCreditsNeverNegative(t *testing.T) {
	store := newFakeStore()
	l := New(store, store, 5)

	charges := []int{2, 2, 2, 2}
	for _, c := range charges {
		_, _ = l.ChargeOrReject(context.Background(), testIdent, c)
		if got := store.credits("uid-1"); got < 0 {
			t.Fatalf("credits went negative: %d", got)
		}
	}
	if got := store.credits("uid-1"); got != 1 {
		t.Errorf("credits = %d after charges, want 1", got)
	}
}

// 余额 B、两个并发请求各需 C 且 B < 2C ≤ 2B：恰好一个成功
func TestConcurrentChargesNoDoubleSpend(t *testing.T) {
	store := newFakeStore()
	store.accounts["uid-1"] = &entity.Account{ID: "uid-1", Credits: 5}
	l := New(store, store, 5)

	const cost = 3
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.ChargeOrReject(context.Background(), testIdent, cost)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, rejected int
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		var insufficient InsufficientCreditsError
		if errors.As(err, &insufficient) {
			rejected++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if ok != 1 || rejected != 1 {
		t.Fatalf("got %d successes and %d rejections, want exactly 1 and 1", ok, rejected)
	}
	if got := store.credits("uid-1"); got != 2 {
		t.Errorf("credits = %d, want 2", got)
	}
}

func TestGetAccountVirtualView(t *testing.T) {
	store := newFakeStore()
	l := New(store, store, 5)

	acc, err := l.GetAccount(context.Background(), testIdent)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acc.Credits != 5 {
		t.Errorf("virtual account credits = %d, want starting balance 5", acc.Credits)
	}
	if len(store.accounts) != 0 {
		t.Error("read must not create the account")
	}
}
