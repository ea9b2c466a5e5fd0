package routes

import (
	"github.com/dondesang/appdon/controllers/admin"
	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes configures the admin console. Every route requires the admin role.
func SetupAdminRoutes(app *fiber.App, h *admin.Handler, g Guards) {
	a := app.Group("/admin", g.Protected, g.Admin)
	a.Get("/dashboard", h.GetDashboard)

	centers := a.Group("/centers")
	centers.Get("/", h.GetCenters)
	centers.Get("/:id", h.GetCenter)
	centers.Post("/", h.CreateCenter)
	centers.Put("/:id", h.UpdateCenter)
	centers.Delete("/:id", h.DeleteCenter)

	hospitals := a.Group("/hospitals")
	hospitals.Get("/", h.GetHospitals)
	hospitals.Get("/:id", h.GetHospital)
	hospitals.Post("/", h.CreateHospital)
	hospitals.Put("/:id", h.UpdateHospital)
	hospitals.Delete("/:id", h.DeleteHospital)

	donors := a.Group("/donors")
	donors.Get("/", h.GetDonors)
	donors.Get("/:id", h.GetDonor)
	donors.Put("/:id", h.UpdateDonor)
	donors.Get("/:id/appointments", h.GetDonorAppointments)
	donors.Patch("/:id/appointments/:aid/status", h.UpdateAppointmentStatus)

	alerts := a.Group("/alerts")
	alerts.Get("/", h.GetAlerts)
	alerts.Post("/", h.CreateAlert)
	alerts.Put("/:id", h.UpdateAlert)
	alerts.Post("/:id/deactivate", h.DeactivateAlert)
	alerts.Delete("/:id", h.DeleteAlert)

	a.Get("/reports", h.GetReport)
	a.Get("/reports.csv", h.GetReportCSV)
	a.Get("/reports/latest", h.GetLatestReport)
}
