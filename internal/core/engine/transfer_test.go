package engine_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MAAB-FW/quick-cash-server/internal/core/domain"
	"github.com/MAAB-FW/quick-cash-server/internal/core/engine"
	"github.com/MAAB-FW/quick-cash-server/internal/core/engine/enginetest"
	"github.com/MAAB-FW/quick-cash-server/internal/core/security"
)

const testPIN = "1234"

// Hashing is slow by design; share one hash across all seeded accounts.
var testPINHash = func() string {
	hash, err := security.HashPIN(testPIN)
	if err != nil {
		panic(err)
	}
	return hash
}()

func seedAccount(s *enginetest.Store, email, phone string, role domain.Role, balance int64) *domain.Account {
	return s.AddAccount(domain.Account{
		Name:    "Test " + email,
		Email:   email,
		Phone:   phone,
		Role:    role,
		Status:  domain.StatusApproved,
		Balance: balance,
		PinHash: testPINHash,
	})
}

func TestSendMoneyNoFeeUnderThreshold(t *testing.T) {
	store := enginetest.NewStore()
	sender := seedAccount(store, "a@test.com", "01711", domain.RoleUser, 4000)
	recipient := seedAccount(store, "b@test.com", "01722", domain.RoleUser, 0)
	eng := engine.New(store, "")

	entry, err := eng.SendMoney(context.Background(), "a@test.com", testPIN, "01722", 3000)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), store.Balance(sender.ID))
	assert.Equal(t, int64(3000), store.Balance(recipient.ID))
	assert.Equal(t, domain.TypeSendMoney, entry.Type)
	assert.Equal(t, domain.TxCompleted, entry.Status)
	require.NotNil(t, entry.Fee)
	assert.Equal(t, int64(0), *entry.Fee)
	assert.Len(t, store.Transactions, 1)
}

func TestSendMoneyFlatFeeAboveThreshold(t *testing.T) {
	store := enginetest.NewStore()
	sender := seedAccount(store, "a@test.com", "01711", domain.RoleUser, 20000)
	recipient := seedAccount(store, "b@test.com", "01722", domain.RoleUser, 0)
	eng := engine.New(store, "")

	entry, err := eng.SendMoney(context.Background(), "a@test.com", testPIN, "01722", 10001)
	require.NoError(t, err)

	// Sender pays amount + flat 500 fee; recipient gets the amount only.
	assert.Equal(t, int64(20000-10001-500), store.Balance(sender.ID))
	assert.Equal(t, int64(10001), store.Balance(recipient.ID))
	require.NotNil(t, entry.Fee)
	assert.Equal(t, int64(500), *entry.Fee)
}

func TestSendMoneyExactlyAtThresholdHasNoFee(t *testing.T) {
	store := enginetest.NewStore()
	sender := seedAccount(store, "a@test.com", "01711", domain.RoleUser, 10000)
	seedAccount(store, "b@test.com", "01722", domain.RoleUser, 0)
	eng := engine.New(store, "")

	entry, err := eng.SendMoney(context.Background(), "a@test.com", testPIN, "01722", 10000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), store.Balance(sender.ID))
	assert.Equal(t, int64(0), *entry.Fee)
}

func TestSendMoneyWrongPIN(t *testing.T) {
	store := enginetest.NewStore()
	seedAccount(store, "a@test.com", "01711", domain.RoleUser, 4000)
	seedAccount(store, "b@test.com", "01722", domain.RoleUser, 0)
	eng := engine.New(store, "")

	_, err := eng.SendMoney(context.Background(), "a@test.com", "9999", "01722", 1000)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
	assert.Empty(t, store.Transactions)
}

func TestSendMoneyRecipientMustBeUser(t *testing.T) {
	store := enginetest.NewStore()
	seedAccount(store, "a@test.com", "01711", domain.RoleUser, 4000)
	seedAccount(store, "agent@test.com", "01733", domain.RoleAgent, 0)
	eng := engine.New(store, "")

	// Unknown phone.
	_, err := eng.SendMoney(context.Background(), "a@test.com", testPIN, "09999", 1000)
	assert.ErrorIs(t, err, domain.ErrRecipientNotFound)

	// Existing phone, but it belongs to an agent.
	_, err = eng.SendMoney(context.Background(), "a@test.com", testPIN, "01733", 1000)
	assert.ErrorIs(t, err, domain.ErrRecipientNotFound)
}

func TestSendMoneySelfTransferRejected(t *testing.T) {
	store := enginetest.NewStore()
	sender := seedAccount(store, "a@test.com", "01711", domain.RoleUser, 4000)
	eng := engine.New(store, "")

	_, err := eng.SendMoney(context.Background(), "a@test.com", testPIN, "01711", 1000)
	assert.ErrorIs(t, err, domain.ErrSelfTransfer)
	assert.Equal(t, int64(4000), store.Balance(sender.ID))
}

func TestSendMoneyInsufficientFunds(t *testing.T) {
	store := enginetest.NewStore()
	sender := seedAccount(store, "a@test.com", "01711", domain.RoleUser, 10400)
	recipient := seedAccount(store, "b@test.com", "01722", domain.RoleUser, 0)
	eng := engine.New(store, "")

	// Balance covers the amount but not amount + fee.
	_, err := eng.SendMoney(context.Background(), "a@test.com", testPIN, "01722", 10001)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, int64(10400), store.Balance(sender.ID))
	assert.Equal(t, int64(0), store.Balance(recipient.ID))
	assert.Empty(t, store.Transactions)
}

func TestSendMoneyRejectsNonPositiveAmount(t *testing.T) {
	store := enginetest.NewStore()
	seedAccount(store, "a@test.com", "01711", domain.RoleUser, 4000)
	eng := engine.New(store, "")

	for _, amount := range []int64{0, -500} {
		_, err := eng.SendMoney(context.Background(), "a@test.com", testPIN, "01722", amount)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	}
}

func TestSendMoneyRollsBackAsOneUnit(t *testing.T) {
	store := enginetest.NewStore()
	sender := seedAccount(store, "a@test.com", "01711", domain.RoleUser, 4000)
	recipient := seedAccount(store, "b@test.com", "01722", domain.RoleUser, 0)
	store.FailIncrements = 1 // debit succeeds, credit fails
	eng := engine.New(store, "https://hooks.test/quickcash")

	_, err := eng.SendMoney(context.Background(), "a@test.com", testPIN, "01722", 1000)
	require.Error(t, err)

	// Nothing moved, nothing recorded: the half-applied debit was
	// rolled back together with the ledger insert and webhook job.
	assert.Equal(t, int64(4000), store.Balance(sender.ID))
	assert.Equal(t, int64(0), store.Balance(recipient.ID))
	assert.Empty(t, store.Transactions)
	assert.Empty(t, store.Webhooks)
}

func TestSendMoneyEnqueuesWebhook(t *testing.T) {
	store := enginetest.NewStore()
	seedAccount(store, "a@test.com", "01711", domain.RoleUser, 4000)
	seedAccount(store, "b@test.com", "01722", domain.RoleUser, 0)
	eng := engine.New(store, "https://hooks.test/quickcash")

	_, err := eng.SendMoney(context.Background(), "a@test.com", testPIN, "01722", 1000)
	require.NoError(t, err)
	require.Len(t, store.Webhooks, 1)
	assert.Equal(t, "https://hooks.test/quickcash", store.Webhooks[0].URL)
	assert.Contains(t, string(store.Webhooks[0].Payload), "transfer.completed")
}

func TestRequestCashIn(t *testing.T) {
	store := enginetest.NewStore()
	user := seedAccount(store, "a@test.com", "01711", domain.RoleUser, 4000)
	agent := seedAccount(store, "agent@test.com", "01733", domain.RoleAgent, 1000000)
	eng := engine.New(store, "")

	entry, err := eng.RequestCashIn(context.Background(), "a@test.com", "01733", 5000)
	require.NoError(t, err)

	assert.Equal(t, domain.TypeCashIn, entry.Type)
	assert.Equal(t, domain.TxRequested, entry.Status)
	assert.Nil(t, entry.Fee)
	assert.Equal(t, "01733", entry.AgentPhone)

	// No money moves until the agent accepts.
	assert.Equal(t, int64(4000), store.Balance(user.ID))
	assert.Equal(t, int64(1000000), store.Balance(agent.ID))
}

func TestRequestCashInAgentNotFound(t *testing.T) {
	store := enginetest.NewStore()
	seedAccount(store, "a@test.com", "01711", domain.RoleUser, 4000)
	seedAccount(store, "b@test.com", "01722", domain.RoleUser, 0)
	eng := engine.New(store, "")

	// A plain user's phone does not resolve as an agent.
	_, err := eng.RequestCashIn(context.Background(), "a@test.com", "01722", 5000)
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestRequestCashOutStoresFeeSeparately(t *testing.T) {
	store := enginetest.NewStore()
	user := seedAccount(store, "a@test.com", "01711", domain.RoleUser, 50000)
	seedAccount(store, "agent@test.com", "01733", domain.RoleAgent, 1000000)
	eng := engine.New(store, "")

	entry, err := eng.RequestCashOut(context.Background(), "a@test.com", testPIN, "01733", 20000)
	require.NoError(t, err)

	assert.Equal(t, int64(20000), entry.Amount)
	require.NotNil(t, entry.Fee)
	assert.Equal(t, int64(300), *entry.Fee) // 1.5% of 200.00
	assert.Equal(t, domain.TxRequested, entry.Status)
	assert.Equal(t, int64(50000), store.Balance(user.ID))
}

func TestRequestCashOutWrongPIN(t *testing.T) {
	store := enginetest.NewStore()
	seedAccount(store, "a@test.com", "01711", domain.RoleUser, 50000)
	seedAccount(store, "agent@test.com", "01733", domain.RoleAgent, 1000000)
	eng := engine.New(store, "")

	_, err := eng.RequestCashOut(context.Background(), "a@test.com", "9999", "01733", 20000)
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestRequestCashOutInsufficientForAmountPlusFee(t *testing.T) {
	store := enginetest.NewStore()
	seedAccount(store, "a@test.com", "01711", domain.RoleUser, 20000)
	seedAccount(store, "agent@test.com", "01733", domain.RoleAgent, 1000000)
	eng := engine.New(store, "")

	// 20000 covers the amount but not the 300 fee.
	_, err := eng.RequestCashOut(context.Background(), "a@test.com", testPIN, "01733", 20000)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func settleSetup(t *testing.T, entryType domain.TransactionType, amount int64, fee *int64) (*enginetest.Store, *engine.Engine, *domain.Account, *domain.Account, uuid.UUID) {
	t.Helper()
	store := enginetest.NewStore()
	user := seedAccount(store, "a@test.com", "01711", domain.RoleUser, 50000)
	agent := seedAccount(store, "agent@test.com", "01733", domain.RoleAgent, 1000000)
	eng := engine.New(store, "")

	var (
		entry *domain.Transaction
		err   error
	)
	switch entryType {
	case domain.TypeCashIn:
		entry, err = eng.RequestCashIn(context.Background(), user.Email, agent.Phone, amount)
	case domain.TypeCashOut:
		entry, err = eng.RequestCashOut(context.Background(), user.Email, testPIN, agent.Phone, amount)
	}
	require.NoError(t, err)
	if fee != nil {
		require.NotNil(t, entry.Fee)
		require.Equal(t, *fee, *entry.Fee)
	}
	return store, eng, user, agent, entry.ID
}

func TestSettleCashInAccept(t *testing.T) {
	store, eng, user, agent, txID := settleSetup(t, domain.TypeCashIn, 5000, nil)

	entry, err := eng.SettleRequest(context.Background(), agent.Email, txID, engine.ActionAccept)
	require.NoError(t, err)

	assert.Equal(t, domain.TxAccepted, entry.Status)
	assert.Equal(t, int64(55000), store.Balance(user.ID))
	assert.Equal(t, int64(995000), store.Balance(agent.ID))
	assert.NotNil(t, store.Transactions[txID].SettledAt)
}

func TestSettleCashOutAccept(t *testing.T) {
	fee := int64(300)
	store, eng, user, agent, txID := settleSetup(t, domain.TypeCashOut, 20000, &fee)

	entry, err := eng.SettleRequest(context.Background(), agent.Email, txID, engine.ActionAccept)
	require.NoError(t, err)

	// User pays amount + stored fee; agent receives the combined value.
	assert.Equal(t, domain.TxAccepted, entry.Status)
	assert.Equal(t, int64(50000-20300), store.Balance(user.ID))
	assert.Equal(t, int64(1000000+20300), store.Balance(agent.ID))
}

func TestSettleDeclineNeverMovesMoney(t *testing.T) {
	store, eng, user, agent, txID := settleSetup(t, domain.TypeCashOut, 20000, nil)

	entry, err := eng.SettleRequest(context.Background(), agent.Email, txID, engine.ActionDecline)
	require.NoError(t, err)

	assert.Equal(t, domain.TxDeclined, entry.Status)
	assert.Equal(t, int64(50000), store.Balance(user.ID))
	assert.Equal(t, int64(1000000), store.Balance(agent.ID))
}

func TestSettleTwiceRejected(t *testing.T) {
	store, eng, user, agent, txID := settleSetup(t, domain.TypeCashIn, 5000, nil)

	_, err := eng.SettleRequest(context.Background(), agent.Email, txID, engine.ActionAccept)
	require.NoError(t, err)

	// Accept again, then decline: both terminal states stay terminal
	// and the balances move exactly once.
	_, err = eng.SettleRequest(context.Background(), agent.Email, txID, engine.ActionAccept)
	assert.ErrorIs(t, err, domain.ErrAlreadySettled)
	_, err = eng.SettleRequest(context.Background(), agent.Email, txID, engine.ActionDecline)
	assert.ErrorIs(t, err, domain.ErrAlreadySettled)

	assert.Equal(t, int64(55000), store.Balance(user.ID))
	assert.Equal(t, int64(995000), store.Balance(agent.ID))
}

func TestSettleOnlyByAddressedAgent(t *testing.T) {
	store, eng, user, _, txID := settleSetup(t, domain.TypeCashIn, 5000, nil)
	other := seedAccount(store, "other@test.com", "01744", domain.RoleAgent, 1000000)

	_, err := eng.SettleRequest(context.Background(), other.Email, txID, engine.ActionAccept)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, int64(50000), store.Balance(user.ID))
}

func TestSettleCashInAgentInsufficientFunds(t *testing.T) {
	store := enginetest.NewStore()
	user := seedAccount(store, "a@test.com", "01711", domain.RoleUser, 0)
	agent := seedAccount(store, "agent@test.com", "01733", domain.RoleAgent, 1000)
	eng := engine.New(store, "")

	entry, err := eng.RequestCashIn(context.Background(), user.Email, agent.Phone, 5000)
	require.NoError(t, err)

	_, err = eng.SettleRequest(context.Background(), agent.Email, entry.ID, engine.ActionAccept)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// The failed accept leaves the request pending and balances intact.
	assert.Equal(t, domain.TxRequested, store.Transactions[entry.ID].Status)
	assert.Equal(t, int64(0), store.Balance(user.ID))
	assert.Equal(t, int64(1000), store.Balance(agent.ID))
}
