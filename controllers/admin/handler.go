package admin

import (
	"errors"
	"time"

	"github.com/dondesang/appdon/models"
	"github.com/dondesang/appdon/store"
	"github.com/dondesang/appdon/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ReportSource hands out the last report computed by the scheduler.
type ReportSource interface {
	Latest() (models.Report, bool)
}

// Handler serves the admin console routes.
type Handler struct {
	store   *store.Store
	reports ReportSource
	log     *zap.Logger
	now     func() time.Time
}

func New(st *store.Store, reports ReportSource, log *zap.Logger, now func() time.Time) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = utils.NowLome
	}
	return &Handler{store: st, reports: reports, log: log, now: now}
}

// failStore maps store and model errors shared by every admin resource.
func failStore(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return utils.Fail(c, fiber.StatusNotFound, message, err)
	case errors.Is(err, store.ErrDuplicate), errors.Is(err, store.ErrEmailTaken):
		return utils.Fail(c, fiber.StatusConflict, message, err)
	case errors.Is(err, models.ErrInvalidStatus):
		return utils.Fail(c, fiber.StatusBadRequest, message, err)
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrAlreadyCompleted):
		return utils.Fail(c, fiber.StatusConflict, message, err)
	default:
		return utils.Fail(c, fiber.StatusInternalServerError, message, err)
	}
}

// bind parses the body into v and runs its validate tags. When ok is false the error
// response has been written and err is what the handler returns.
func bind(c *fiber.Ctx, v any) (ok bool, err error) {
	if err := c.BodyParser(v); err != nil {
		return false, utils.Fail(c, fiber.StatusBadRequest, "Failed to parse request body", err)
	}
	if err := utils.Validate.Struct(v); err != nil {
		return false, utils.FailFields(c, fiber.StatusUnprocessableEntity, "Formulaire invalide", utils.ValidationFields(err))
	}
	return true, nil
}

func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	return c.JSON(models.BuildDashboard(h.store.Snapshot(), h.now()))
}
