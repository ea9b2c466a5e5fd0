package models

import (
	"math"
	"time"
)

// DonationCooldown is the minimum gap between two whole-blood donations.
const DonationCooldown = 90 * 24 * time.Hour

type Eligibility struct {
	CanDonateNow     bool       `json:"canDonateNow"`
	LastDonation     *time.Time `json:"lastDonation,omitempty"`
	NextEligibleDate time.Time  `json:"nextEligibleDate"`
	DaysUntilNext    int        `json:"daysUntilNext"`
}

// CheckEligibility applies the 90 day cooldown. With no previous donation the donor can give
// now. DaysUntilNext is rounded up and never negative.
func CheckEligibility(lastCompleted *time.Time, now time.Time) Eligibility {
	if lastCompleted == nil {
		return Eligibility{CanDonateNow: true, NextEligibleDate: now}
	}
	next := lastCompleted.Add(DonationCooldown)
	days := int(math.Ceil(next.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}
	return Eligibility{
		CanDonateNow:     days <= 0,
		LastDonation:     lastCompleted,
		NextEligibleDate: next,
		DaysUntilNext:    days,
	}
}
