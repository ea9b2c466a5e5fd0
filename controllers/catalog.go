package controllers

import (
	"errors"
	"slices"
	"strconv"

	"github.com/dondesang/appdon/db"
	"github.com/dondesang/appdon/models"
	"github.com/dondesang/appdon/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	listSessions   = 2
	detailSessions = 5
)

// point reads the optional lat/lng query pair. Both or neither must be present.
func point(c *fiber.Ctx) (lat, lng float64, ok bool, err error) {
	rawLat, rawLng := c.Query("lat"), c.Query("lng")
	if rawLat == "" && rawLng == "" {
		return 0, 0, false, nil
	}
	lat, err = strconv.ParseFloat(rawLat, 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, false, errors.New("invalid lat")
	}
	lng, err = strconv.ParseFloat(rawLng, 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, false, errors.New("invalid lng")
	}
	return lat, lng, true, nil
}

func (h *Handler) centerView(ctr models.Center, sessions int) models.CenterView {
	v := models.CenterView{Center: ctr}
	next, err := ctr.NextSessions(h.now(), sessions)
	if err != nil {
		h.log.Warn("center schedule", zap.Int("center_id", ctr.ID), zap.Error(err))
	}
	v.NextSessions = next
	return v
}

// GetCenters lists collection centers. With lat/lng the list is sorted by distance.
func (h *Handler) GetCenters(c *fiber.Ctx) error {
	lat, lng, near, err := point(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid coordinates", err)
	}
	centers := h.store.Centers(models.CenterFilter{
		Query:  c.Query("q"),
		Region: c.Query("region"),
	})
	views := make([]models.CenterView, 0, len(centers))
	for _, ctr := range centers {
		v := h.centerView(ctr, listSessions)
		if near {
			d := ctr.DistanceKm(lat, lng)
			v.DistanceKm = &d
		}
		views = append(views, v)
	}
	if near {
		slices.SortStableFunc(views, func(a, b models.CenterView) int {
			switch {
			case *a.DistanceKm < *b.DistanceKm:
				return -1
			case *a.DistanceKm > *b.DistanceKm:
				return 1
			}
			return 0
		})
	}
	return c.JSON(views)
}

func (h *Handler) GetCenter(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid center ID", err)
	}
	ctr, err := h.store.Center(id)
	if err != nil {
		return notFoundOr(c, err, "Center not found")
	}
	return c.JSON(h.centerView(ctr, detailSessions))
}

func (h *Handler) GetEducation(c *fiber.Ctx) error {
	return c.JSON(h.store.Education())
}

// GetAlerts lists active alerts for the donor's blood type unless ?bloodType overrides it.
// bloodType=all disables the filter. The "+" should be sent as %2B; a bare "+" decoded to a
// space is accepted too.
func (h *Handler) GetAlerts(c *fiber.Ctx) error {
	id, err := h.currentUserID(c)
	if err != nil {
		return err
	}
	bloodType := models.BloodTypeParam(c.Query("bloodType"))
	switch bloodType {
	case "":
		u, err := h.store.Donor(id)
		if err != nil {
			return notFoundOr(c, err, "User not found")
		}
		bloodType = u.BloodType
	case "all":
		bloodType = ""
	default:
		if !slices.Contains(models.BloodTypes, bloodType) {
			return utils.Fail(c, fiber.StatusBadRequest, "Invalid blood type", nil)
		}
	}
	return c.JSON(h.store.Alerts(true, bloodType))
}

// GetCountries is the single read against the hosted backend.
func (h *Handler) GetCountries(c *fiber.Ctx) error {
	rows, err := h.countries.Countries(c.UserContext())
	switch {
	case errors.Is(err, db.ErrNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	case err != nil:
		h.log.Error("countries fetch failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if rows == nil {
		rows = []models.Country{}
	}
	return c.JSON(rows)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   h.now(),
	})
}
