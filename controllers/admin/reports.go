package admin

import (
	"bytes"
	"fmt"
	"time"

	"github.com/dondesang/appdon/models"
	"github.com/dondesang/appdon/utils"
	"github.com/gofiber/fiber/v2"
)

// ParsePeriod reads an inclusive YYYY-MM-DD range. Empty bounds stay open.
func ParsePeriod(from, to string) (models.ReportPeriod, error) {
	var p models.ReportPeriod
	var err error
	if from != "" {
		if p.From, err = time.Parse(models.DateLayout, from); err != nil {
			return p, fmt.Errorf("from: %w", models.ErrInvalidDate)
		}
	}
	if to != "" {
		if p.To, err = time.Parse(models.DateLayout, to); err != nil {
			return p, fmt.Errorf("to: %w", models.ErrInvalidDate)
		}
	}
	if !p.From.IsZero() && !p.To.IsZero() && p.To.Before(p.From) {
		return p, fmt.Errorf("to before from: %w", models.ErrInvalidDate)
	}
	return p, nil
}

func (h *Handler) report(c *fiber.Ctx) (models.Report, error) {
	p, err := ParsePeriod(c.Query("from"), c.Query("to"))
	if err != nil {
		return models.Report{}, err
	}
	return models.BuildReport(h.store.Snapshot(), p, h.now()), nil
}

func (h *Handler) GetReport(c *fiber.Ctx) error {
	r, err := h.report(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid period", err)
	}
	return c.JSON(r)
}

// GetReportCSV serves the same report as a CSV attachment.
func (h *Handler) GetReportCSV(c *fiber.Ctx) error {
	r, err := h.report(c)
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid period", err)
	}
	var buf bytes.Buffer
	if err := r.WriteCSV(&buf); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to write report", err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(fmt.Sprintf("rapport-%s.csv", r.GeneratedAt.Format(models.DateLayout)))
	return c.Send(buf.Bytes())
}

// GetLatestReport returns the last scheduled report, if one was computed yet.
func (h *Handler) GetLatestReport(c *fiber.Ctx) error {
	if h.reports == nil {
		return utils.Fail(c, fiber.StatusNotFound, "No scheduled report", nil)
	}
	r, ok := h.reports.Latest()
	if !ok {
		return utils.Fail(c, fiber.StatusNotFound, "No scheduled report", nil)
	}
	return c.JSON(r)
}
