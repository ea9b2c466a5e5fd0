package controllers

import (
	"errors"
	"strings"

	"github.com/dondesang/appdon/models"
	"github.com/dondesang/appdon/utils"
	"github.com/gofiber/fiber/v2"
)

const msgFillAllFields = "Veuillez remplir tous les champs."

// appointmentError maps booking errors onto responses. Form problems come back as field
// messages, so the client keeps its list unchanged and highlights the field.
func appointmentError(c *fiber.Ctx, err error, form models.AppointmentForm) error {
	switch {
	case errors.Is(err, models.ErrMissingFields):
		fields := map[string]string{}
		if strings.TrimSpace(form.Center) == "" {
			fields["center"] = "Centre requis"
		}
		if strings.TrimSpace(form.Date) == "" {
			fields["date"] = "Date requise"
		}
		if strings.TrimSpace(form.Time) == "" {
			fields["time"] = "Heure requise"
		}
		return utils.FailFields(c, fiber.StatusBadRequest, msgFillAllFields, fields)
	case errors.Is(err, models.ErrUnknownCenter):
		return utils.FailFields(c, fiber.StatusUnprocessableEntity, "Centre inconnu", map[string]string{"center": "Centre inconnu"})
	case errors.Is(err, models.ErrInvalidTimeSlot):
		return utils.FailFields(c, fiber.StatusUnprocessableEntity, "Créneau invalide", map[string]string{"time": "Créneau invalide"})
	case errors.Is(err, models.ErrInvalidDate):
		return utils.FailFields(c, fiber.StatusUnprocessableEntity, "Date invalide", map[string]string{"date": "Date invalide"})
	case errors.Is(err, models.ErrDateInPast):
		return utils.FailFields(c, fiber.StatusUnprocessableEntity, "Date passée", map[string]string{"date": "Choisissez aujourd'hui ou une date future"})
	case errors.Is(err, models.ErrNotFound):
		return utils.Fail(c, fiber.StatusNotFound, "Appointment not found", err)
	case errors.Is(err, models.ErrAlreadyCompleted), errors.Is(err, models.ErrInvalidTransition):
		return utils.Fail(c, fiber.StatusConflict, "Appointment cannot be changed", err)
	case errors.Is(err, models.ErrInvalidStatus):
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid status", err)
	default:
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to update appointments", err)
	}
}

// GetAppointments returns the donor's appointments split the way the screen shows them.
func (h *Handler) GetAppointments(c *fiber.Ctx) error {
	id, err := h.currentUserID(c)
	if err != nil {
		return err
	}
	all, upcoming, past, err := h.store.Agenda(id)
	if err != nil {
		return notFoundOr(c, err, "Failed to fetch appointments")
	}
	return c.JSON(fiber.Map{
		"items":    all,
		"upcoming": nonNil(upcoming),
		"past":     nonNil(past),
	})
}

func (h *Handler) GetAppointment(c *fiber.Ctx) error {
	uid, err := h.currentUserID(c)
	if err != nil {
		return err
	}
	aid, err := c.ParamsInt("id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid appointment ID", err)
	}
	a, err := h.store.Appointment(uid, aid)
	if err != nil {
		return notFoundOr(c, err, "Appointment not found")
	}
	return c.JSON(a)
}

// GetAppointmentOptions lists bookable centers (with addresses) and time slots.
func (h *Handler) GetAppointmentOptions(c *fiber.Ctx) error {
	opts := h.store.BookingOptions()
	type center struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	centers := make([]center, 0, len(opts.Centers))
	for _, name := range opts.CenterNames() {
		centers = append(centers, center{Name: name, Address: opts.AddressOf(name)})
	}
	return c.JSON(fiber.Map{
		"centers":   centers,
		"timeSlots": opts.TimeSlots,
		"minDate":   h.now().Format(models.DateLayout),
	})
}

func (h *Handler) CreateAppointment(c *fiber.Ctx) error {
	uid, err := h.currentUserID(c)
	if err != nil {
		return err
	}
	var form models.AppointmentForm
	if err := c.BodyParser(&form); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Failed to parse request body", err)
	}
	a, err := h.store.CreateAppointment(uid, form, h.now())
	if err != nil {
		return appointmentError(c, err, form)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

// UpdateAppointment edits center, date and time. Id, status and address are kept.
func (h *Handler) UpdateAppointment(c *fiber.Ctx) error {
	uid, err := h.currentUserID(c)
	if err != nil {
		return err
	}
	aid, err := c.ParamsInt("id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid appointment ID", err)
	}
	var form models.AppointmentForm
	if err := c.BodyParser(&form); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Failed to parse request body", err)
	}
	a, err := h.store.EditAppointment(uid, aid, form, h.now())
	if err != nil {
		return appointmentError(c, err, form)
	}
	return c.JSON(a)
}

func (h *Handler) CancelAppointment(c *fiber.Ctx) error {
	uid, err := h.currentUserID(c)
	if err != nil {
		return err
	}
	aid, err := c.ParamsInt("id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid appointment ID", err)
	}
	a, err := h.store.CancelAppointment(uid, aid)
	if err != nil {
		return appointmentError(c, err, models.AppointmentForm{})
	}
	return c.JSON(fiber.Map{
		"message":     "Appointment cancelled",
		"appointment": a,
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
