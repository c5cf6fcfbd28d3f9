package handler

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MAAB-FW/quick-cash-server/internal/core/domain"
	"github.com/MAAB-FW/quick-cash-server/internal/core/engine"
)

type AccountHandler struct {
	Engine *engine.Engine
}

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
	PIN   string `json:"pin"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// CreateUser registers a pending account. The balance field is absent
// on purpose: accounts start at zero and gain a balance only when an
// admin approves them.
func (h *AccountHandler) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" || req.Email == "" || req.Phone == "" || req.PIN == "" {
		return fail(c, http.StatusBadRequest, "name, email, phone and pin are required")
	}
	// Admin accounts are provisioned out of band, never self-registered.
	role := domain.Role(req.Role)
	if role != domain.RoleUser && role != domain.RoleAgent && role != domain.RoleAny {
		return fail(c, http.StatusBadRequest, "role must be user or agent")
	}

	acc, err := h.Engine.Register(c.Context(), engine.RegisterParams{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Role:  role,
		PIN:   req.PIN,
	})
	if err != nil {
		return respondErr(c, err)
	}

	slog.Info("account created", "id", acc.ID, "role", acc.Role)
	return c.Status(http.StatusCreated).JSON(acc)
}

// ListUsers returns every account, for the admin overview.
func (h *AccountHandler) ListUsers(c *fiber.Ctx) error {
	accounts, err := h.Engine.ListAccounts(c.Context())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(accounts)
}

// UpdateStatus applies an admin decision. Approving a pending account
// grants the role's starting balance exactly once.
func (h *AccountHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid account id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	acc, err := h.Engine.SetAccountStatus(c.Context(), id, domain.AccountStatus(req.Status))
	if err != nil {
		return respondErr(c, err)
	}

	slog.Info("account status updated", "id", acc.ID, "status", acc.Status)
	return c.JSON(acc)
}
