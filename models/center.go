package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

type CenterType string

const (
	CenterCHU    CenterType = "CHU"
	CenterCHR    CenterType = "CHR"
	CenterCentre CenterType = "Centre"
	CenterMobile CenterType = "Mobile"
)

// Regions of Togo, in the order the donor client lists them.
var Regions = []string{"Maritime", "Plateaux", "Centrale", "Kara", "Savanes"}

// Center is a fixed or mobile blood collection site.
type Center struct {
	ID      int        `json:"id" yaml:"id"`
	Name    string     `json:"name" yaml:"name" validate:"required"`
	City    string     `json:"city" yaml:"city" validate:"required"`
	Region  string     `json:"region" yaml:"region" validate:"required,oneof=Maritime Plateaux Centrale Kara Savanes"`
	Address string     `json:"address" yaml:"address" validate:"required"`
	Phone   string     `json:"phone" yaml:"phone"`
	Hours   string     `json:"hours" yaml:"hours"`
	Lat     float64    `json:"lat" yaml:"lat" validate:"latitude"`
	Lng     float64    `json:"lng" yaml:"lng" validate:"longitude"`
	Type    CenterType `json:"type" yaml:"type" validate:"required,oneof=CHU CHR Centre Mobile"`
	// Schedule is an optional RRULE describing collection sessions, mostly for mobile drives.
	Schedule string `json:"schedule,omitempty" yaml:"schedule"`
}

// CenterView is what the donor client receives: the center plus derived fields.
type CenterView struct {
	Center
	DistanceKm   *float64    `json:"distanceKm,omitempty"`
	NextSessions []time.Time `json:"nextSessions,omitempty"`
}

// CenterFilter mirrors the donor search box and region selector.
type CenterFilter struct {
	Query  string
	Region string
}

func (f CenterFilter) Match(c Center) bool {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	matchesSearch := q == "" ||
		strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.City), q)
	matchesRegion := f.Region == "" || f.Region == "all" || c.Region == f.Region
	return matchesSearch && matchesRegion
}

// NextSessions expands the center's schedule into the next n session start times after from.
// The rule is anchored at midnight of from's day, so a rule without BYHOUR or BYMINUTE
// yields sessions at 00:00 rather than at the time of the call.
func (c Center) NextSessions(from time.Time, n int) ([]time.Time, error) {
	if c.Schedule == "" || n <= 0 {
		return nil, nil
	}
	r, err := rrule.StrToRRule(c.Schedule)
	if err != nil {
		return nil, fmt.Errorf("center %d schedule: %w", c.ID, err)
	}
	r.DTStart(time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location()))
	out := make([]time.Time, 0, n)
	next := from
	for len(out) < n {
		next = r.After(next, len(out) == 0)
		if next.IsZero() {
			break
		}
		out = append(out, next)
	}
	return out, nil
}

// ValidateSchedule checks the RRULE syntax, if any.
func (c Center) ValidateSchedule() error {
	if c.Schedule == "" {
		return nil
	}
	if _, err := rrule.StrToRRule(c.Schedule); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}
	return nil
}

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between the center and a point.
func (c Center) DistanceKm(lat, lng float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat - c.Lat)
	dLng := rad(lng - c.Lng)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(c.Lat))*math.Cos(rad(lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
