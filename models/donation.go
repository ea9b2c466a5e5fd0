package models

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

type DonationStatus string

const (
	DonationCompleted DonationStatus = "completed"
	DonationScheduled DonationStatus = "scheduled"
)

const (
	// CompletedVolumeML is the standard whole-blood volume recorded per donation.
	CompletedVolumeML = 450
	// LivesPerDonation is how many patients one donation is counted as helping.
	LivesPerDonation = 3

	placeholderBloodType = "O+"
	notApplicable        = "N/A"
	unknownCity          = "Inconnu"
)

// Donation is a history entry derived from an appointment. It is never stored.
type Donation struct {
	ID        int            `json:"id"`
	Date      string         `json:"date"`
	Center    string         `json:"center"`
	City      string         `json:"city"`
	BloodType string         `json:"bloodType"`
	Volume    int            `json:"volume"`
	Status    DonationStatus `json:"status"`
}

type Achievement struct {
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
	Unlocked  bool   `json:"unlocked"`
}

type History struct {
	Items          []Donation            `json:"items"`
	Completed      []Donation            `json:"completed"`
	Scheduled      []Donation            `json:"scheduled"`
	ByYear         map[string][]Donation `json:"byYear"`
	TotalDonations int                   `json:"totalDonations"`
	TotalVolume    int                   `json:"totalVolume"`
	LivesSaved     int                   `json:"livesSaved"`
	Level          string                `json:"level"`
	Achievements   []Achievement         `json:"achievements"`
	Eligibility    Eligibility           `json:"eligibility"`
}

// CityFromAddress returns the second comma-separated part of an address.
func CityFromAddress(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return unknownCity
	}
	if city := strings.TrimSpace(parts[1]); city != "" {
		return city
	}
	return unknownCity
}

// ToDonation maps an appointment onto a history entry. Only completed appointments carry a
// volume and blood type.
func ToDonation(a Appointment) Donation {
	d := Donation{
		ID:     a.ID,
		Date:   a.Date,
		Center: a.Center,
		City:   CityFromAddress(a.Address),
	}
	if a.Status == StatusCompleted {
		d.BloodType = placeholderBloodType
		d.Volume = CompletedVolumeML
		d.Status = DonationCompleted
	} else {
		d.BloodType = notApplicable
		d.Status = DonationScheduled
	}
	return d
}

// DonorLevel is Gold from 10 donations, Silver from 5, Bronze otherwise.
func DonorLevel(total int) string {
	switch {
	case total >= 10:
		return "Gold"
	case total >= 5:
		return "Silver"
	default:
		return "Bronze"
	}
}

func achievements(total int) []Achievement {
	out := []Achievement{
		{Name: "Premier don", Threshold: 1},
		{Name: "5 dons", Threshold: 5},
		{Name: "10 dons", Threshold: 10},
	}
	for i := range out {
		out[i].Unlocked = total >= out[i].Threshold
	}
	return out
}

// BuildHistory derives the donation history from a donor's appointments. Items are sorted
// by date, most recent first.
func BuildHistory(appts []Appointment, now time.Time) History {
	items := make([]Donation, 0, len(appts))
	for _, a := range appts {
		items = append(items, ToDonation(a))
	}
	slices.SortStableFunc(items, func(x, y Donation) int {
		return strings.Compare(y.Date, x.Date)
	})

	h := History{
		Items:     items,
		Completed: []Donation{},
		Scheduled: []Donation{},
		ByYear:    map[string][]Donation{},
	}
	for _, d := range items {
		switch d.Status {
		case DonationCompleted:
			h.Completed = append(h.Completed, d)
			h.TotalVolume += d.Volume
		case DonationScheduled:
			h.Scheduled = append(h.Scheduled, d)
		}
		year := yearOf(d.Date)
		h.ByYear[year] = append(h.ByYear[year], d)
	}
	h.TotalDonations = len(h.Completed)
	h.LivesSaved = h.TotalDonations * LivesPerDonation
	h.Level = DonorLevel(h.TotalDonations)
	h.Achievements = achievements(h.TotalDonations)

	var last *time.Time
	if len(h.Completed) > 0 {
		if t, err := time.ParseInLocation(DateLayout, h.Completed[0].Date, now.Location()); err == nil {
			last = &t
		}
	}
	h.Eligibility = CheckEligibility(last, now)
	return h
}

func yearOf(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "unknown"
	}
	return strconv.Itoa(t.Year())
}
