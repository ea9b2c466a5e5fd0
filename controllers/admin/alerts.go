package admin

import (
	"github.com/dondesang/appdon/models"
	"github.com/dondesang/appdon/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func alertID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// GetAlerts lists every alert, inactive ones included unless ?active=true.
func (h *Handler) GetAlerts(c *fiber.Ctx) error {
	return c.JSON(h.store.Alerts(c.QueryBool("active"), models.BloodTypeParam(c.Query("bloodType"))))
}

func (h *Handler) CreateAlert(c *fiber.Ctx) error {
	var a models.Alert
	if ok, err := bind(c, &a); !ok {
		return err
	}
	created := h.store.CreateAlert(a, h.now())
	h.log.Info("alert created",
		zap.String("alert_id", created.ID.String()),
		zap.String("urgency", string(created.Urgency)),
		zap.String("blood_type", created.BloodType),
	)
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) UpdateAlert(c *fiber.Ctx) error {
	id, err := alertID(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid alert ID", err)
	}
	var a models.Alert
	if ok, err := bind(c, &a); !ok {
		return err
	}
	updated, err := h.store.UpdateAlert(id, a)
	if err != nil {
		return failStore(c, err, "Alert not found")
	}
	return c.JSON(updated)
}

func (h *Handler) DeactivateAlert(c *fiber.Ctx) error {
	id, err := alertID(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid alert ID", err)
	}
	a, err := h.store.DeactivateAlert(id)
	if err != nil {
		return failStore(c, err, "Alert not found")
	}
	return c.JSON(a)
}

func (h *Handler) DeleteAlert(c *fiber.Ctx) error {
	id, err := alertID(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid alert ID", err)
	}
	if err := h.store.DeleteAlert(id); err != nil {
		return failStore(c, err, "Alert not found")
	}
	return c.JSON(fiber.Map{
		"message": "Alert deleted successfully",
	})
}
