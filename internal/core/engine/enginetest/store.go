// Package enginetest provides an in-memory engine.Store for unit
// testing transfer logic without a running database. It mirrors the
// transactional semantics of the Postgres store: writes made inside
// InTx are rolled back wholesale when the callback fails.
//
// The store is not safe for concurrent use; tests drive it from a
// single goroutine.
package enginetest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MAAB-FW/quick-cash-server/internal/core/domain"
	"github.com/MAAB-FW/quick-cash-server/internal/core/engine"
)

type Store struct {
	Accounts     map[uuid.UUID]*domain.Account
	Transactions map[uuid.UUID]*domain.Transaction
	Webhooks     []*domain.WebhookJob

	// FailIncrements makes IncrementBalance fail after the given
	// number of successful calls, to exercise rollback.
	FailIncrements int

	increments int
}

func NewStore() *Store {
	return &Store{
		Accounts:     make(map[uuid.UUID]*domain.Account),
		Transactions: make(map[uuid.UUID]*domain.Transaction),
	}
}

// AddAccount seeds an account and returns it.
func (s *Store) AddAccount(acc domain.Account) *domain.Account {
	if acc.ID == uuid.Nil {
		acc.ID = uuid.New()
	}
	stored := acc
	s.Accounts[stored.ID] = &stored
	return &stored
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	for _, acc := range s.Accounts {
		if acc.Email == email {
			copy := *acc
			return &copy, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (s *Store) FindAccountByPhone(ctx context.Context, phone string, role domain.Role) (*domain.Account, error) {
	for _, acc := range s.Accounts {
		if acc.Phone == phone && (role == domain.RoleAny || acc.Role == role) {
			copy := *acc
			return &copy, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (s *Store) CreateAccount(ctx context.Context, acc *domain.Account) error {
	stored := *acc
	s.Accounts[stored.ID] = &stored
	return nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	for _, acc := range s.Accounts {
		accounts = append(accounts, *acc)
	}
	return accounts, nil
}

func (s *Store) ListTransactions(ctx context.Context, email, phone string) ([]domain.Transaction, error) {
	var entries []domain.Transaction
	for _, entry := range s.Transactions {
		if entry.SenderEmail == email || entry.RecipientPhone == phone || entry.AgentPhone == phone {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}

// InTx snapshots state before running fn and restores it on error,
// mirroring the database's commit-or-rollback guarantee.
func (s *Store) InTx(ctx context.Context, fn func(engine.TxStore) error) error {
	accounts := make(map[uuid.UUID]*domain.Account, len(s.Accounts))
	for id, acc := range s.Accounts {
		copy := *acc
		accounts[id] = &copy
	}
	transactions := make(map[uuid.UUID]*domain.Transaction, len(s.Transactions))
	for id, entry := range s.Transactions {
		copy := *entry
		transactions[id] = &copy
	}
	webhooks := append([]*domain.WebhookJob(nil), s.Webhooks...)

	if err := fn((*txStore)(s)); err != nil {
		s.Accounts = accounts
		s.Transactions = transactions
		s.Webhooks = webhooks
		return err
	}
	return nil
}

// Balance is a test convenience: the current balance of an account.
func (s *Store) Balance(id uuid.UUID) int64 {
	return s.Accounts[id].Balance
}

type txStore Store

func (t *txStore) AccountForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	acc, ok := t.Accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	copy := *acc
	return &copy, nil
}

func (t *txStore) IncrementBalance(ctx context.Context, id uuid.UUID, delta int64) error {
	if t.FailIncrements > 0 {
		if t.increments >= t.FailIncrements {
			return context.DeadlineExceeded
		}
		t.increments++
	}
	acc, ok := t.Accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Balance += delta
	return nil
}

func (t *txStore) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) error {
	acc, ok := t.Accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Status = status
	return nil
}

func (t *txStore) InsertTransaction(ctx context.Context, entry *domain.Transaction) error {
	stored := *entry
	t.Transactions[stored.ID] = &stored
	return nil
}

func (t *txStore) TransactionForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	entry, ok := t.Transactions[id]
	if !ok {
		return nil, domain.ErrTxNotFound
	}
	copy := *entry
	return &copy, nil
}

func (t *txStore) SettleTransaction(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	entry, ok := t.Transactions[id]
	if !ok {
		return domain.ErrTxNotFound
	}
	now := time.Now()
	entry.Status = status
	entry.SettledAt = &now
	return nil
}

func (t *txStore) EnqueueWebhook(ctx context.Context, job *domain.WebhookJob) error {
	t.Webhooks = append(t.Webhooks, job)
	return nil
}
