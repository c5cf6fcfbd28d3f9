package handler

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MAAB-FW/quick-cash-server/internal/adapter/middleware"
	"github.com/MAAB-FW/quick-cash-server/internal/core/engine"
	"github.com/MAAB-FW/quick-cash-server/internal/core/security"
)

type AuthHandler struct {
	Engine *engine.Engine
	Secret []byte
}

type tokenRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	PIN string `json:"pin"`
}

// IssueToken signs a long-lived bearer token for an identity payload.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	token, err := security.IssueToken(req.Email, h.Secret, time.Now())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"token": token})
}

// Login verifies an account's PIN and returns the account.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil || req.PIN == "" {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	acc, err := h.Engine.Login(c.Context(), c.Params("email"), req.PIN)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(acc)
}

// UserInfo returns the authenticated caller's account.
func (h *AuthHandler) UserInfo(c *fiber.Ctx) error {
	acc, err := h.Engine.Account(c.Context(), middleware.Caller(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(acc)
}

// Role returns the stored role for an email.
func (h *AuthHandler) Role(c *fiber.Ctx) error {
	role, err := h.Engine.Role(c.Context(), c.Params("email"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"role": role})
}
