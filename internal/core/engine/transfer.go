package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MAAB-FW/quick-cash-server/internal/core/domain"
	"github.com/MAAB-FW/quick-cash-server/internal/core/security"
)

// SendMoney transfers amount from the authenticated sender to another
// user, synchronously. Amounts above the threshold carry a flat fee
// charged to the sender on top of the amount. Both balance updates and
// the ledger insert commit or roll back as one unit.
func (e *Engine) SendMoney(ctx context.Context, senderEmail, pin, recipientPhone string, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	sender, err := e.store.FindAccountByEmail(ctx, senderEmail)
	if err != nil {
		return nil, err
	}
	if !security.CheckPIN(pin, sender.PinHash) {
		return nil, domain.ErrInvalidCredential
	}

	recipient, err := e.store.FindAccountByPhone(ctx, recipientPhone, domain.RoleUser)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrRecipientNotFound
		}
		return nil, err
	}
	if recipient.Phone == sender.Phone {
		return nil, domain.ErrSelfTransfer
	}

	fee := domain.SendMoneyFee(amount)
	entry := &domain.Transaction{
		ID:             uuid.New(),
		Type:           domain.TypeSendMoney,
		SenderEmail:    sender.Email,
		RecipientPhone: recipient.Phone,
		Amount:         amount,
		Fee:            &fee,
		Status:         domain.TxCompleted,
		CreatedAt:      e.now(),
	}

	err = e.store.InTx(ctx, func(tx TxStore) error {
		locked, err := tx.AccountForUpdate(ctx, sender.ID)
		if err != nil {
			return err
		}
		if locked.Balance < amount+fee {
			return domain.ErrInsufficientFunds
		}
		if err := tx.IncrementBalance(ctx, sender.ID, -(amount + fee)); err != nil {
			return err
		}
		if err := tx.IncrementBalance(ctx, recipient.ID, amount); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, entry); err != nil {
			return err
		}
		return e.enqueueEvent(ctx, tx, "transfer.completed", entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RequestCashIn records a cash-in request against an agent. No money
// moves until the agent accepts.
func (e *Engine) RequestCashIn(ctx context.Context, userEmail, agentPhone string, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	user, err := e.store.FindAccountByEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	agent, err := e.store.FindAccountByPhone(ctx, agentPhone, domain.RoleAgent)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, err
	}

	entry := &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TypeCashIn,
		SenderEmail: user.Email,
		AgentPhone:  agent.Phone,
		Amount:      amount,
		Status:      domain.TxRequested,
		CreatedAt:   e.now(),
	}
	err = e.store.InTx(ctx, func(tx TxStore) error {
		return tx.InsertTransaction(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RequestCashOut records a cash-out request. The 1.5% fee is computed
// here, stored on the entry, and reused verbatim at accept time. No
// money moves until the agent accepts.
func (e *Engine) RequestCashOut(ctx context.Context, userEmail, pin, agentPhone string, amount int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	user, err := e.store.FindAccountByEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	if !security.CheckPIN(pin, user.PinHash) {
		return nil, domain.ErrInvalidCredential
	}
	agent, err := e.store.FindAccountByPhone(ctx, agentPhone, domain.RoleAgent)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, err
	}

	fee := domain.CashOutFee(amount)
	if user.Balance < amount+fee {
		return nil, domain.ErrInsufficientFunds
	}

	entry := &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TypeCashOut,
		SenderEmail: user.Email,
		AgentPhone:  agent.Phone,
		Amount:      amount,
		Fee:         &fee,
		Status:      domain.TxRequested,
		CreatedAt:   e.now(),
	}
	err = e.store.InTx(ctx, func(tx TxStore) error {
		return tx.InsertTransaction(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Action is an agent's decision on a pending cash-in/out request.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
)

// SettleRequest applies an agent's accept or decline to a pending
// transaction. Only the agent the request was addressed to may act on
// it, and a settled transaction can never be acted on again. Balance
// movements and the status flip commit or roll back as one unit.
func (e *Engine) SettleRequest(ctx context.Context, agentEmail string, txID uuid.UUID, action Action) (*domain.Transaction, error) {
	if action != ActionAccept && action != ActionDecline {
		return nil, fmt.Errorf("unknown action %q", action)
	}

	agent, err := e.store.FindAccountByEmail(ctx, agentEmail)
	if err != nil {
		return nil, err
	}

	var settled *domain.Transaction
	err = e.store.InTx(ctx, func(tx TxStore) error {
		entry, err := tx.TransactionForUpdate(ctx, txID)
		if err != nil {
			return err
		}
		if entry.Status.Settled() {
			return domain.ErrAlreadySettled
		}
		// Ownership, not just "is an agent": the caller must be the
		// agent this request was addressed to.
		if entry.AgentPhone != agent.Phone {
			return domain.ErrForbidden
		}

		if action == ActionDecline {
			entry.Status = domain.TxDeclined
			settled = entry
			return tx.SettleTransaction(ctx, entry.ID, domain.TxDeclined)
		}

		user, err := e.store.FindAccountByEmail(ctx, entry.SenderEmail)
		if err != nil {
			return err
		}
		if err := e.applyAccept(ctx, tx, entry, user.ID, agent.ID); err != nil {
			return err
		}
		entry.Status = domain.TxAccepted
		settled = entry
		if err := tx.SettleTransaction(ctx, entry.ID, domain.TxAccepted); err != nil {
			return err
		}
		return e.enqueueEvent(ctx, tx, "transfer.accepted", entry)
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// applyAccept moves money for an accepted cash-in or cash-out.
func (e *Engine) applyAccept(ctx context.Context, tx TxStore, entry *domain.Transaction, userID, agentID uuid.UUID) error {
	switch entry.Type {
	case domain.TypeCashIn:
		agent, err := tx.AccountForUpdate(ctx, agentID)
		if err != nil {
			return err
		}
		if agent.Balance < entry.Amount {
			return domain.ErrInsufficientFunds
		}
		if err := tx.IncrementBalance(ctx, agentID, -entry.Amount); err != nil {
			return err
		}
		return tx.IncrementBalance(ctx, userID, entry.Amount)

	case domain.TypeCashOut:
		combined := entry.Amount
		if entry.Fee != nil {
			combined += *entry.Fee
		}
		user, err := tx.AccountForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user.Balance < combined {
			return domain.ErrInsufficientFunds
		}
		if err := tx.IncrementBalance(ctx, userID, -combined); err != nil {
			return err
		}
		return tx.IncrementBalance(ctx, agentID, combined)

	default:
		return fmt.Errorf("transaction %s is not a pending request type", entry.Type)
	}
}
