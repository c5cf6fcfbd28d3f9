package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/MAAB-FW/quick-cash-server/internal/core/domain"
)

// fail writes the error payload the clients branch on: a message and
// the status code repeated in the body.
func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"status":  status,
	})
}

// respondErr maps domain errors onto responses.
func respondErr(c *fiber.Ctx, err error) error {
	var dup *domain.DuplicateAccountError
	switch {
	case errors.As(err, &dup):
		// The existing record's status lets the client show
		// "already pending" vs "already approved".
		return c.Status(http.StatusConflict).JSON(fiber.Map{
			"message":       "user already exist!",
			"status":        http.StatusConflict,
			"accountStatus": dup.Status,
		})
	case errors.Is(err, domain.ErrUnauthenticated):
		return fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidCredential):
		return fail(c, http.StatusForbidden, "Invalid credentials!")
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrRecipientNotFound),
		errors.Is(err, domain.ErrAgentNotFound),
		errors.Is(err, domain.ErrTxNotFound):
		return fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrInsufficientFunds):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadySettled):
		return fail(c, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "error", err, "path", c.Path())
		return fail(c, http.StatusInternalServerError, "something went wrong")
	}
}
