package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/MAAB-FW/quick-cash-server/internal/core/domain"
)

// Store is what the engine needs from the account store and ledger.
// Reads outside a transaction resolve parties; every multi-document
// write set runs inside one InTx unit of work, so a crash or error
// mid-transfer rolls the whole request back instead of leaving money
// moved without an audit entry.
type Store interface {
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	// FindAccountByPhone filters by role unless role is RoleAny.
	FindAccountByPhone(ctx context.Context, phone string, role domain.Role) (*domain.Account, error)
	CreateAccount(ctx context.Context, acc *domain.Account) error
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	// ListTransactions returns entries where the identity appears as
	// sender, recipient, or agent, newest first.
	ListTransactions(ctx context.Context, email, phone string) ([]domain.Transaction, error)

	InTx(ctx context.Context, fn func(TxStore) error) error
}

// TxStore is the write surface available inside a unit of work.
// Balance changes are relative increments only; the store guarantees
// each increment is atomic per row.
type TxStore interface {
	// AccountForUpdate loads and row-locks an account.
	AccountForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	IncrementBalance(ctx context.Context, id uuid.UUID, delta int64) error
	UpdateAccountStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) error

	InsertTransaction(ctx context.Context, tx *domain.Transaction) error
	// TransactionForUpdate loads and row-locks a ledger entry.
	TransactionForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	SettleTransaction(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error

	EnqueueWebhook(ctx context.Context, job *domain.WebhookJob) error
}
