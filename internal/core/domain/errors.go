package domain

import (
	"errors"
	"fmt"
)

// Validation failures surface to clients as response payloads carrying
// a message and status code, so they are sentinel values the handler
// layer can match on rather than ad-hoc strings.
var (
	ErrUnauthenticated   = errors.New("unauthorized access")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrAccountNotFound   = errors.New("account not found")
	ErrTxNotFound        = errors.New("transaction not found")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrAgentNotFound     = errors.New("agent not found")
	ErrInvalidAmount     = errors.New("amount must be a positive number")
	ErrSelfTransfer      = errors.New("cannot send money to your own number")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrAlreadySettled    = errors.New("transaction already settled")
)

// DuplicateAccountError reports a registration conflict. It carries
// the existing record's status so the client can distinguish "already
// pending" from "already approved".
type DuplicateAccountError struct {
	Status AccountStatus
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("account already exists (status %s)", e.Status)
}
