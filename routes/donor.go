package routes

import (
	"github.com/dondesang/appdon/controllers"
	"github.com/gofiber/fiber/v2"
)

// SetupDonorRoutes configures the profile, history and alert screens
func SetupDonorRoutes(app *fiber.App, h *controllers.Handler, g Guards) {
	app.Get("/history", g.Protected, h.GetHistory)
	app.Get("/eligibility", g.Protected, h.GetEligibility)
	app.Get("/alerts", g.Protected, h.GetAlerts)

	profile := app.Group("/profile", g.Protected)
	profile.Get("/", h.GetProfile)
	profile.Put("/", h.UpdateProfile)
	profile.Post("/analysis", h.UploadAnalysis)
}

// SetupCatalogRoutes configures the public read-only routes
func SetupCatalogRoutes(app *fiber.App, h *controllers.Handler) {
	app.Get("/health", h.Health)
	app.Get("/centers", h.GetCenters)
	app.Get("/centers/:id", h.GetCenter)
	app.Get("/education", h.GetEducation)
	app.Get("/countries", h.GetCountries)
}
