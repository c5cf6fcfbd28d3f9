package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies an account. Agents fulfil cash-in/cash-out requests,
// admins approve new accounts.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"

	// RoleAny disables role filtering on phone lookups.
	RoleAny Role = ""
)

// AccountStatus is the onboarding state of an account.
type AccountStatus string

const (
	StatusPending  AccountStatus = "pending"
	StatusApproved AccountStatus = "approved"
	StatusDeclined AccountStatus = "declined"
)

// Account represents a user, agent, or admin wallet.
// Balance is stored in minor units (cents) and is only ever changed by
// relative increments, never overwritten with a client-supplied value.
type Account struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Role      Role          `json:"role"`
	Status    AccountStatus `json:"status"`
	Balance   int64         `json:"balance"`
	PinHash   string        `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}

// TransactionType identifies the transfer flow a record belongs to.
type TransactionType string

const (
	TypeSendMoney TransactionType = "Send Money"
	TypeCashIn    TransactionType = "Cash In"
	TypeCashOut   TransactionType = "Cash Out"
)

// TransactionStatus is the lifecycle state of a ledger record.
// Send Money completes synchronously; cash-in/out records start as
// requested and move exactly once to accepted or declined.
type TransactionStatus string

const (
	TxRequested TransactionStatus = "requested"
	TxAccepted  TransactionStatus = "accepted"
	TxDeclined  TransactionStatus = "declined"
	TxCompleted TransactionStatus = "completed"
)

// Settled reports whether a status is terminal.
func (s TransactionStatus) Settled() bool {
	return s != TxRequested
}

// Transaction is one ledger entry. The ledger is append-only: a pending
// cash-in/out entry is mutated exactly once when its agent acts on it
// and is immutable afterward.
type Transaction struct {
	ID             uuid.UUID         `json:"id"`
	Type           TransactionType   `json:"type"`
	SenderEmail    string            `json:"sender_email"`
	RecipientPhone string            `json:"recipient_phone,omitempty"`
	AgentPhone     string            `json:"agent_phone,omitempty"`
	Amount         int64             `json:"amount"`
	Fee            *int64            `json:"fee"`
	Status         TransactionStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	SettledAt      *time.Time        `json:"settled_at,omitempty"`
}

// WebhookJob is a queued notification about a committed transfer.
// Jobs are enqueued inside the transfer's own database transaction, so
// an event exists iff the money actually moved.
type WebhookJob struct {
	ID        uuid.UUID
	URL       string
	Payload   []byte
	Status    string
	Attempts  int
	NextRunAt time.Time
	CreatedAt time.Time
}
