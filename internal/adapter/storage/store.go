package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MAAB-FW/quick-cash-server/internal/core/domain"
	"github.com/MAAB-FW/quick-cash-server/internal/core/engine"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// queries serve reads on the pool and writes inside a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the Postgres account store and transaction ledger.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const accountColumns = `id, name, email, phone, role, status, balance, pin_hash, created_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	err := row.Scan(&acc.ID, &acc.Name, &acc.Email, &acc.Phone, &acc.Role,
		&acc.Status, &acc.Balance, &acc.PinHash, &acc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &acc, nil
}

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(s.pool.QueryRow(ctx, query, email))
}

func (s *Store) FindAccountByPhone(ctx context.Context, phone string, role domain.Role) (*domain.Account, error) {
	if role == domain.RoleAny {
		query := `SELECT ` + accountColumns + ` FROM accounts WHERE phone = $1`
		return scanAccount(s.pool.QueryRow(ctx, query, phone))
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE phone = $1 AND role = $2`
	return scanAccount(s.pool.QueryRow(ctx, query, phone, role))
}

func (s *Store) CreateAccount(ctx context.Context, acc *domain.Account) error {
	query := `
		INSERT INTO accounts (id, name, email, phone, role, status, balance, pin_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.pool.Exec(ctx, query, acc.ID, acc.Name, acc.Email, acc.Phone,
		acc.Role, acc.Status, acc.Balance, acc.PinHash, acc.CreatedAt)
	if isUniqueViolation(err) {
		// A concurrent registration won the race between the engine's
		// existence checks and this insert. Report the conflict with
		// the winner's status, same as the sequential path.
		if existing, lookupErr := s.FindAccountByEmail(ctx, acc.Email); lookupErr == nil {
			return &domain.DuplicateAccountError{Status: existing.Status}
		}
		if existing, lookupErr := s.FindAccountByPhone(ctx, acc.Phone, domain.RoleAny); lookupErr == nil {
			return &domain.DuplicateAccountError{Status: existing.Status}
		}
		return &domain.DuplicateAccountError{Status: domain.StatusPending}
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique
// constraint violation (the email/phone UNIQUE indexes).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Store) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	return accounts, rows.Err()
}

const transactionColumns = `id, type, sender_email, recipient_phone, agent_phone, amount, fee, status, created_at, settled_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		entry            domain.Transaction
		recipient, agent *string
	)
	err := row.Scan(&entry.ID, &entry.Type, &entry.SenderEmail, &recipient, &agent,
		&entry.Amount, &entry.Fee, &entry.Status, &entry.CreatedAt, &entry.SettledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTxNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	if recipient != nil {
		entry.RecipientPhone = *recipient
	}
	if agent != nil {
		entry.AgentPhone = *agent
	}
	return &entry, nil
}

func (s *Store) ListTransactions(ctx context.Context, email, phone string) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + ` FROM transactions
		WHERE sender_email = $1 OR recipient_phone = $2 OR agent_phone = $2
		ORDER BY created_at DESC
	`
	rows, err := s.pool.Query(ctx, query, email, phone)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var entries []domain.Transaction
	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// InTx runs fn inside one database transaction: every write it makes
// commits together or not at all.
func (s *Store) InTx(ctx context.Context, fn func(engine.TxStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&txStore{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
