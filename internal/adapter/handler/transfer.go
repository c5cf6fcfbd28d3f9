package handler

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MAAB-FW/quick-cash-server/internal/adapter/middleware"
	"github.com/MAAB-FW/quick-cash-server/internal/core/engine"
)

type TransferHandler struct {
	Engine *engine.Engine
}

// Amounts arrive as JSON numbers in minor units; BodyParser rejects
// non-numeric input with a 400 instead of failing mid-transfer.
type sendMoneyRequest struct {
	PIN    string `json:"pin"`
	Phone  string `json:"phone"`
	Amount int64  `json:"amount"`
}

type cashInRequest struct {
	AgentPhone string `json:"agentPhone"`
	Amount     int64  `json:"amount"`
}

type cashOutRequest struct {
	PIN        string `json:"pin"`
	AgentPhone string `json:"agentPhone"`
	Amount     int64  `json:"amount"`
}

type actionRequest struct {
	Action string `json:"action"`
}

// SendMoney moves money between two users synchronously.
func (h *TransferHandler) SendMoney(c *fiber.Ctx) error {
	var req sendMoneyRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	entry, err := h.Engine.SendMoney(c.Context(), middleware.Caller(c), req.PIN, req.Phone, req.Amount)
	if err != nil {
		return respondErr(c, err)
	}

	slog.Info("send money completed", "transaction_id", entry.ID, "amount", entry.Amount, "fee", entry.Fee)
	return c.Status(http.StatusCreated).JSON(entry)
}

// CashIn records a cash-in request against an agent.
func (h *TransferHandler) CashIn(c *fiber.Ctx) error {
	var req cashInRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	entry, err := h.Engine.RequestCashIn(c.Context(), middleware.Caller(c), req.AgentPhone, req.Amount)
	if err != nil {
		return respondErr(c, err)
	}

	slog.Info("cash-in requested", "transaction_id", entry.ID, "amount", entry.Amount)
	return c.Status(http.StatusCreated).JSON(entry)
}

// CashOut records a cash-out request against an agent.
func (h *TransferHandler) CashOut(c *fiber.Ctx) error {
	var req cashOutRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	entry, err := h.Engine.RequestCashOut(c.Context(), middleware.Caller(c), req.PIN, req.AgentPhone, req.Amount)
	if err != nil {
		return respondErr(c, err)
	}

	slog.Info("cash-out requested", "transaction_id", entry.ID, "amount", entry.Amount, "fee", entry.Fee)
	return c.Status(http.StatusCreated).JSON(entry)
}

// Settle applies the agent's accept or decline to a pending request.
func (h *TransferHandler) Settle(c *fiber.Ctx) error {
	txID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid transaction id")
	}

	var req actionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	action := engine.Action(req.Action)
	if action != engine.ActionAccept && action != engine.ActionDecline {
		return fail(c, http.StatusBadRequest, "action must be accept or decline")
	}

	entry, err := h.Engine.SettleRequest(c.Context(), middleware.Caller(c), txID, action)
	if err != nil {
		return respondErr(c, err)
	}

	slog.Info("request settled", "transaction_id", entry.ID, "status", entry.Status)
	return c.JSON(entry)
}

// History returns the caller's transactions, newest first.
func (h *TransferHandler) History(c *fiber.Ctx) error {
	entries, err := h.Engine.History(c.Context(), middleware.Caller(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"transactions": entries})
}
