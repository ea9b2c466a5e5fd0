package utils

import "time"

var lome = loadLome()

func loadLome() *time.Location {
	loc, err := time.LoadLocation("Africa/Lome")
	if err != nil {
		// Togo is on GMT all year
		return time.FixedZone("GMT", 0)
	}
	return loc
}

// ToLome converts t to Togo local time. Appointment dates are judged against this clock.
func ToLome(t time.Time) time.Time {
	return t.In(lome)
}

// NowLome is the clock handlers use.
func NowLome() time.Time {
	return ToLome(time.Now())
}
