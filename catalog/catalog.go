// Package catalog holds the reference data the service starts from: collection centers,
// hospitals, bookable time slots, seed alerts, education tips and the demo appointments
// every new donor book is seeded with.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/dondesang/appdon/models"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	TimeSlots        []string             `yaml:"timeSlots" validate:"required,min=1,dive,datetime=15:04"`
	Centers          []models.Center      `yaml:"centers" validate:"required,min=1,dive"`
	Hospitals        []models.Hospital    `yaml:"hospitals" validate:"dive"`
	Alerts           []models.AlertSeed   `yaml:"alerts"`
	Education        []models.Tip         `yaml:"education"`
	DemoAppointments []models.Appointment `yaml:"demoAppointments"`
}

var validate = validator.New()

// Load reads the catalogue at path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}
	names := map[string]bool{}
	ids := map[int]bool{}
	for i, center := range c.Centers {
		if names[center.Name] || ids[center.ID] {
			return fmt.Errorf("duplicate center at centers[%d]: %d %q", i, center.ID, center.Name)
		}
		names[center.Name] = true
		ids[center.ID] = true
		if err := center.ValidateSchedule(); err != nil {
			return fmt.Errorf("centers[%d]: %w", i, err)
		}
	}
	for i, a := range c.DemoAppointments {
		if !a.Status.Valid() {
			return fmt.Errorf("demoAppointments[%d]: %w: %q", i, models.ErrInvalidStatus, a.Status)
		}
	}
	return nil
}

// SeedAlerts turns the alert seeds into active alerts created at now.
func (c *Catalog) SeedAlerts(now time.Time) []models.Alert {
	out := make([]models.Alert, 0, len(c.Alerts))
	for _, s := range c.Alerts {
		out = append(out, s.Alert(now))
	}
	return out
}
