package routes

import (
	"github.com/dondesang/appdon/controllers"
	"github.com/gofiber/fiber/v2"
)

// SetupAppointmentRoutes configures the donor's appointment book
func SetupAppointmentRoutes(app *fiber.App, h *controllers.Handler, g Guards) {
	appointment := app.Group("/appointments", g.Protected)
	appointment.Get("/", h.GetAppointments)
	appointment.Get("/options", h.GetAppointmentOptions)
	appointment.Get("/:id", h.GetAppointment)
	appointment.Post("/", h.CreateAppointment)
	appointment.Put("/:id", h.UpdateAppointment)
	appointment.Delete("/:id", h.CancelAppointment)
}
