package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/MAAB-FW/quick-cash-server/internal/core/domain"
	"github.com/MAAB-FW/quick-cash-server/internal/core/security"
)

// RegisterParams is the client-supplied part of a new account.
// Balance is deliberately absent: accounts start at zero and only gain
// a balance when an admin approves them.
type RegisterParams struct {
	Name  string
	Email string
	Phone string
	Role  domain.Role
	PIN   string
}

// Register creates a pending account. Email and phone must both be
// unused; on conflict the error carries the existing record's status.
func (e *Engine) Register(ctx context.Context, p RegisterParams) (*domain.Account, error) {
	if existing, err := e.store.FindAccountByEmail(ctx, p.Email); err == nil {
		return nil, &domain.DuplicateAccountError{Status: existing.Status}
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if existing, err := e.store.FindAccountByPhone(ctx, p.Phone, domain.RoleAny); err == nil {
		return nil, &domain.DuplicateAccountError{Status: existing.Status}
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	hash, err := security.HashPIN(p.PIN)
	if err != nil {
		return nil, err
	}

	role := p.Role
	if role == domain.RoleAny {
		role = domain.RoleUser
	}
	acc := &domain.Account{
		ID:        uuid.New(),
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Role:      role,
		Status:    domain.StatusPending,
		Balance:   0,
		PinHash:   hash,
		CreatedAt: e.now(),
	}
	if err := e.store.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// SetAccountStatus applies an admin decision to an account. The
// pending→approved transition grants the role's starting balance,
// exactly once: re-approving an already-approved account only stores
// the status and leaves the balance untouched. Any other submitted
// status is stored as-is.
func (e *Engine) SetAccountStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) (*domain.Account, error) {
	var updated *domain.Account
	err := e.store.InTx(ctx, func(tx TxStore) error {
		acc, err := tx.AccountForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if status == domain.StatusApproved && acc.Status == domain.StatusPending {
			// The grant is an increment from zero, so the "balance is
			// never overwritten" invariant holds here too.
			grant := domain.StartingBalance(acc.Role)
			if err := tx.IncrementBalance(ctx, acc.ID, grant); err != nil {
				return err
			}
			acc.Balance += grant
		}
		if err := tx.UpdateAccountStatus(ctx, acc.ID, status); err != nil {
			return err
		}
		acc.Status = status
		updated = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
