// Package engine implements the balance-transfer protocol: how a
// transfer request is validated, how fees are computed, and how two
// account balances plus one ledger entry are updated together.
package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/MAAB-FW/quick-cash-server/internal/core/domain"
	"github.com/MAAB-FW/quick-cash-server/internal/core/security"
)

// Engine validates transfer requests and applies them through the
// store's transactional unit of work. It holds no mutable state of its
// own; all state lives in the store.
type Engine struct {
	store      Store
	webhookURL string
	now        func() time.Time
}

// New builds an Engine. webhookURL may be empty, which disables
// transfer event notifications.
func New(store Store, webhookURL string) *Engine {
	return &Engine{
		store:      store,
		webhookURL: webhookURL,
		now:        time.Now,
	}
}

// Account returns the account for an authenticated caller.
func (e *Engine) Account(ctx context.Context, email string) (*domain.Account, error) {
	return e.store.FindAccountByEmail(ctx, email)
}

// Role returns the stored role for an email.
func (e *Engine) Role(ctx context.Context, email string) (domain.Role, error) {
	acc, err := e.store.FindAccountByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return acc.Role, nil
}

// Login verifies a PIN against the stored hash and returns the account.
func (e *Engine) Login(ctx context.Context, email, pin string) (*domain.Account, error) {
	acc, err := e.store.FindAccountByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredential
	}
	if !security.CheckPIN(pin, acc.PinHash) {
		return nil, domain.ErrInvalidCredential
	}
	return acc, nil
}

// ListAccounts returns every account, for the admin overview.
func (e *Engine) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return e.store.ListAccounts(ctx)
}

// History returns the caller's transactions, newest first.
func (e *Engine) History(ctx context.Context, email string) ([]domain.Transaction, error) {
	acc, err := e.store.FindAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return e.store.ListTransactions(ctx, acc.Email, acc.Phone)
}

// enqueueEvent records a webhook job inside the current unit of work.
func (e *Engine) enqueueEvent(ctx context.Context, tx TxStore, event string, entry *domain.Transaction) error {
	if e.webhookURL == "" {
		return nil
	}
	payload, err := json.Marshal(map[string]any{
		"event":          event,
		"transaction_id": entry.ID,
		"type":           entry.Type,
		"amount":         entry.Amount,
		"fee":            entry.Fee,
		"status":         entry.Status,
	})
	if err != nil {
		return err
	}
	return tx.EnqueueWebhook(ctx, &domain.WebhookJob{
		ID:        uuid.New(),
		URL:       e.webhookURL,
		Payload:   payload,
		Status:    "PENDING",
		NextRunAt: e.now(),
		CreatedAt: e.now(),
	})
}
