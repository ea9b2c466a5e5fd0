package controllers

import (
	"errors"
	"time"

	"github.com/dondesang/appdon/auth"
	"github.com/dondesang/appdon/db"
	"github.com/dondesang/appdon/middleware"
	"github.com/dondesang/appdon/models"
	"github.com/dondesang/appdon/store"
	"github.com/dondesang/appdon/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler serves the donor-facing routes.
type Handler struct {
	store     *store.Store
	auth      *auth.Authenticator
	tokens    *auth.Tokens
	files     utils.FileStore
	countries db.CountryReader
	log       *zap.Logger
	now       func() time.Time
}

type Deps struct {
	Store         *store.Store
	Authenticator *auth.Authenticator
	Tokens        *auth.Tokens
	Files         utils.FileStore
	Countries     db.CountryReader
	Log           *zap.Logger
	Now           func() time.Time
}

func New(d Deps) *Handler {
	h := &Handler{
		store:     d.Store,
		auth:      d.Authenticator,
		tokens:    d.Tokens,
		files:     d.Files,
		countries: d.Countries,
		log:       d.Log,
		now:       d.Now,
	}
	if h.now == nil {
		h.now = utils.NowLome
	}
	if h.files == nil {
		h.files = utils.MemoryFiles{Now: h.now}
	}
	if h.countries == nil {
		h.countries = db.Unconfigured{}
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	return h
}

func (h *Handler) currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User ID not found in context")
	}
	return id, nil
}

func notFoundOr(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, models.ErrNotFound) {
		return utils.Fail(c, fiber.StatusNotFound, message, err)
	}
	return utils.Fail(c, fiber.StatusInternalServerError, message, err)
}
