package models

import (
	"time"

	"github.com/google/uuid"
)

type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyNormal   Urgency = "normal"
)

// Alert is a call for donors of a given blood type.
type Alert struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title" validate:"required"`
	Message   string    `json:"message" validate:"required"`
	BloodType string    `json:"bloodType" validate:"omitempty,oneof=O+ O- A+ A- B+ B- AB+ AB-"`
	Center    string    `json:"center"`
	Urgency   Urgency   `json:"urgency" validate:"required,oneof=critical urgent normal"`
	Units     int       `json:"units" validate:"gte=0"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// AlertSeed is the catalogue form of an alert, before it gets an id.
type AlertSeed struct {
	Title     string  `yaml:"title"`
	Message   string  `yaml:"message"`
	BloodType string  `yaml:"bloodType"`
	Center    string  `yaml:"center"`
	Urgency   Urgency `yaml:"urgency"`
	Units     int     `yaml:"units"`
}

func (s AlertSeed) Alert(now time.Time) Alert {
	return Alert{
		ID:        uuid.New(),
		Title:     s.Title,
		Message:   s.Message,
		BloodType: s.BloodType,
		Center:    s.Center,
		Urgency:   s.Urgency,
		Units:     s.Units,
		Active:    true,
		CreatedAt: now,
	}
}

// Concerns reports whether the alert targets bloodType. Alerts without a blood type
// concern everybody.
func (a Alert) Concerns(bloodType string) bool {
	return bloodType == "" || a.BloodType == "" || a.BloodType == bloodType
}

func urgencyRank(u Urgency) int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyUrgent:
		return 1
	default:
		return 2
	}
}

// CompareAlerts orders by urgency, then newest first.
func CompareAlerts(x, y Alert) int {
	if rx, ry := urgencyRank(x.Urgency), urgencyRank(y.Urgency); rx != ry {
		return rx - ry
	}
	return y.CreatedAt.Compare(x.CreatedAt)
}
