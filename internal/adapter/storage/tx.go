package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MAAB-FW/quick-cash-server/internal/core/domain"
)

// txStore is the write surface handed to engine code inside InTx.
type txStore struct {
	db dbtx
}

func (t *txStore) AccountForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return scanAccount(t.db.QueryRow(ctx, query, id))
}

// IncrementBalance applies a relative delta in a single UPDATE, so two
// concurrent increments on the same row can never lose an update.
func (t *txStore) IncrementBalance(ctx context.Context, id uuid.UUID, delta int64) error {
	tag, err := t.db.Exec(ctx,
		`UPDATE accounts SET balance = balance + $1 WHERE id = $2`, delta, id)
	if err != nil {
		return fmt.Errorf("increment balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (t *txStore) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) error {
	tag, err := t.db.Exec(ctx,
		`UPDATE accounts SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update account status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (t *txStore) InsertTransaction(ctx context.Context, entry *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, type, sender_email, recipient_phone, agent_phone, amount, fee, status, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)
	`
	_, err := t.db.Exec(ctx, query, entry.ID, entry.Type, entry.SenderEmail,
		entry.RecipientPhone, entry.AgentPhone, entry.Amount, entry.Fee,
		entry.Status, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (t *txStore) TransactionForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	return scanTransaction(t.db.QueryRow(ctx, query, id))
}

func (t *txStore) SettleTransaction(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	tag, err := t.db.Exec(ctx,
		`UPDATE transactions SET status = $1, settled_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("settle transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTxNotFound
	}
	return nil
}

func (t *txStore) EnqueueWebhook(ctx context.Context, job *domain.WebhookJob) error {
	query := `
		INSERT INTO webhook_jobs (id, url, payload, status, attempts, next_run_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := t.db.Exec(ctx, query, job.ID, job.URL, job.Payload, job.Status,
		job.Attempts, job.NextRunAt, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("enqueue webhook: %w", err)
	}
	return nil
}
