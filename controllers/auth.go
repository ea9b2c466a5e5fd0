package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/dondesang/appdon/auth"
	"github.com/dondesang/appdon/middleware"
	"github.com/dondesang/appdon/models"
	"github.com/dondesang/appdon/store"
	"github.com/dondesang/appdon/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Login runs the (simulated or verified) login and opens a session.
func (h *Handler) Login(c *fiber.Ctx) error {
	var form auth.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse body",
		})
	}
	u, err := h.auth.Login(c.UserContext(), form)
	if err != nil {
		return h.authError(c, err, fiber.StatusBadRequest)
	}
	return h.startSession(c, fiber.StatusOK, u)
}

// Signup accepts JSON or a multipart form with an optional analysisFile part.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var form auth.SignupForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse body",
		})
	}
	var draft auth.SignupDraft
	if err := draft.Apply(form); err != nil {
		return h.authError(c, err, fiber.StatusUnprocessableEntity)
	}
	if fh, err := c.FormFile("analysisFile"); err == nil {
		if err := draft.AttachFile(fh.Filename, fh.Size, fh.Header.Get("Content-Type"), h.now()); err != nil {
			return utils.FailFields(c, fiber.StatusRequestEntityTooLarge, auth.MsgFileTooLarge, map[string]string{
				"analysisFile": auth.MsgFileTooLarge,
			})
		}
	}
	u, err := h.auth.Signup(c.UserContext(), &draft)
	if err != nil {
		return h.authError(c, err, fiber.StatusUnprocessableEntity)
	}
	return h.startSession(c, fiber.StatusCreated, u)
}

func (h *Handler) startSession(c *fiber.Ctx, status int, u models.User) error {
	sid := h.store.StartSession(u.ID)
	token, exp, err := h.tokens.Issue(u, sid, time.Now())
	if err != nil {
		_ = h.store.EndSession(sid)
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to generate token", err)
	}
	return c.Status(status).JSON(fiber.Map{
		"token":     token,
		"expiresAt": exp,
		"user":      u,
	})
}

// authError maps authentication failures. Form errors use validationStatus.
func (h *Handler) authError(c *fiber.Ctx, err error, validationStatus int) error {
	var fe auth.FieldErrors
	switch {
	case errors.As(err, &fe):
		return utils.FailFields(c, validationStatus, "Formulaire invalide", fe)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	case errors.Is(err, store.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "User with this email already exists",
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusRequestTimeout).JSON(fiber.Map{
			"error": "Request cancelled",
		})
	default:
		h.log.Error("authentication failed", zap.Error(err))
		return utils.Fail(c, fiber.StatusInternalServerError, "Authentication failed", err)
	}
}

// Me returns the current user's record.
func (h *Handler) Me(c *fiber.Ctx) error {
	id, err := h.currentUserID(c)
	if err != nil {
		return err
	}
	u, err := h.store.Donor(id)
	if err != nil {
		return notFoundOr(c, err, "User not found")
	}
	return c.JSON(u)
}

// Logout ends the token's session; the token is refused from then on.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.store.EndSession(middleware.SessionID(c)); err != nil {
		return utils.Fail(c, fiber.StatusUnauthorized, "Session not found", err)
	}
	return c.JSON(fiber.Map{
		"message": "Successfully logged out",
	})
}
