package admin

import (
	"github.com/dondesang/appdon/models"
	"github.com/dondesang/appdon/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func donorID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

// GetDonors lists donors, filtered by ?q (name or email), ?bloodType and ?city.
func (h *Handler) GetDonors(c *fiber.Ctx) error {
	return c.JSON(h.store.Donors(models.DonorFilter{
		Query:     c.Query("q"),
		BloodType: models.BloodTypeParam(c.Query("bloodType")),
		City:      c.Query("city"),
	}))
}

// GetDonor returns the donor record with its donation history.
func (h *Handler) GetDonor(c *fiber.Ctx) error {
	id, err := donorID(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid donor ID", err)
	}
	u, err := h.store.Donor(id)
	if err != nil {
		return failStore(c, err, "Donor not found")
	}
	hist, err := h.store.History(id, h.now())
	if err != nil {
		return failStore(c, err, "Donor not found")
	}
	return c.JSON(fiber.Map{
		"user":    u,
		"history": hist,
	})
}

func (h *Handler) UpdateDonor(c *fiber.Ctx) error {
	id, err := donorID(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid donor ID", err)
	}
	var p models.ProfileUpdate
	if ok, err := bind(c, &p); !ok {
		return err
	}
	u, err := h.store.UpdateProfile(id, p)
	if err != nil {
		return failStore(c, err, "Failed to update donor")
	}
	return c.JSON(u)
}

func (h *Handler) GetDonorAppointments(c *fiber.Ctx) error {
	id, err := donorID(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid donor ID", err)
	}
	appts, err := h.store.Appointments(id)
	if err != nil {
		return failStore(c, err, "Donor not found")
	}
	return c.JSON(appts)
}

type statusRequest struct {
	Status models.AppointmentStatus `json:"status" validate:"required"`
}

// UpdateAppointmentStatus moves a donor's appointment along pending, confirmed, completed.
func (h *Handler) UpdateAppointmentStatus(c *fiber.Ctx) error {
	id, err := donorID(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid donor ID", err)
	}
	aid, err := c.ParamsInt("aid")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid appointment ID", err)
	}
	var req statusRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	a, err := h.store.SetAppointmentStatus(id, aid, req.Status)
	if err != nil {
		return failStore(c, err, "Failed to update appointment status")
	}
	h.log.Info("appointment status changed",
		zap.String("donor_id", id.String()),
		zap.Int("appointment_id", aid),
		zap.String("status", string(a.Status)),
	)
	return c.JSON(a)
}
