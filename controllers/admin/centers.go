package admin

import (
	"github.com/dondesang/appdon/models"
	"github.com/dondesang/appdon/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (h *Handler) GetCenters(c *fiber.Ctx) error {
	return c.JSON(h.store.Centers(models.CenterFilter{
		Query:  c.Query("q"),
		Region: c.Query("region"),
	}))
}

func (h *Handler) GetCenter(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid center ID", err)
	}
	ctr, err := h.store.Center(id)
	if err != nil {
		return failStore(c, err, "Center not found")
	}
	return c.JSON(ctr)
}

// bindCenter also checks the optional RRULE schedule.
func bindCenter(c *fiber.Ctx, ctr *models.Center) (bool, error) {
	if ok, err := bind(c, ctr); !ok {
		return false, err
	}
	if err := ctr.ValidateSchedule(); err != nil {
		return false, utils.FailFields(c, fiber.StatusUnprocessableEntity, "Formulaire invalide", map[string]string{
			"schedule": "Calendrier invalide",
		})
	}
	return true, nil
}

func (h *Handler) CreateCenter(c *fiber.Ctx) error {
	var ctr models.Center
	if ok, err := bindCenter(c, &ctr); !ok {
		return err
	}
	created, err := h.store.CreateCenter(ctr)
	if err != nil {
		return failStore(c, err, "Center name already used")
	}
	h.log.Info("center created", zap.Int("center_id", created.ID), zap.String("name", created.Name))
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) UpdateCenter(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid center ID", err)
	}
	var ctr models.Center
	if ok, err := bindCenter(c, &ctr); !ok {
		return err
	}
	updated, err := h.store.UpdateCenter(id, ctr)
	if err != nil {
		return failStore(c, err, "Failed to update center")
	}
	return c.JSON(updated)
}

func (h *Handler) DeleteCenter(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid center ID", err)
	}
	if err := h.store.DeleteCenter(id); err != nil {
		return failStore(c, err, "Center not found")
	}
	h.log.Info("center deleted", zap.Int("center_id", id))
	return c.JSON(fiber.Map{
		"message": "Center deleted successfully",
	})
}

func (h *Handler) GetHospitals(c *fiber.Ctx) error {
	return c.JSON(h.store.Hospitals())
}

func (h *Handler) GetHospital(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid hospital ID", err)
	}
	hosp, err := h.store.Hospital(id)
	if err != nil {
		return failStore(c, err, "Hospital not found")
	}
	return c.JSON(hosp)
}

func (h *Handler) CreateHospital(c *fiber.Ctx) error {
	var hosp models.Hospital
	if ok, err := bind(c, &hosp); !ok {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(h.store.CreateHospital(hosp))
}

func (h *Handler) UpdateHospital(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid hospital ID", err)
	}
	var hosp models.Hospital
	if ok, err := bind(c, &hosp); !ok {
		return err
	}
	updated, err := h.store.UpdateHospital(id, hosp)
	if err != nil {
		return failStore(c, err, "Hospital not found")
	}
	return c.JSON(updated)
}

func (h *Handler) DeleteHospital(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid hospital ID", err)
	}
	if err := h.store.DeleteHospital(id); err != nil {
		return failStore(c, err, "Hospital not found")
	}
	return c.JSON(fiber.Map{
		"message": "Hospital deleted successfully",
	})
}
