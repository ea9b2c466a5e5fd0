package models

import (
	"encoding/csv"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DonorRecord pairs a donor with their appointment book contents.
type DonorRecord struct {
	User         User          `json:"user"`
	Appointments []Appointment `json:"appointments"`
}

// Snapshot is a consistent copy of the in-memory state, taken under the store lock.
type Snapshot struct {
	Donors    []DonorRecord
	Centers   []Center
	Hospitals []Hospital
	Alerts    []Alert
}

type Dashboard struct {
	TotalDonors          int                       `json:"total_donors"`
	TotalCenters         int                       `json:"total_centers"`
	TotalHospitals       int                       `json:"total_hospitals"`
	ActiveAlerts         int                       `json:"active_alerts"`
	CriticalAlerts       int                       `json:"critical_alerts"`
	AppointmentsByStatus map[AppointmentStatus]int `json:"appointments_by_status"`
	TotalDonations       int                       `json:"total_donations"`
	TotalVolumeML        int                       `json:"total_volume_ml"`
	LivesSaved           int                       `json:"lives_saved"`
	DonorsByBloodType    map[string]int            `json:"donors_by_blood_type"`
	LastUpdated          time.Time                 `json:"last_updated"`
}

func BuildDashboard(s Snapshot, now time.Time) Dashboard {
	d := Dashboard{
		TotalDonors:    len(s.Donors),
		TotalCenters:   len(s.Centers),
		TotalHospitals: len(s.Hospitals),
		AppointmentsByStatus: map[AppointmentStatus]int{
			StatusPending:   0,
			StatusConfirmed: 0,
			StatusCompleted: 0,
		},
		DonorsByBloodType: map[string]int{},
		LastUpdated:       now,
	}
	for _, a := range s.Alerts {
		if !a.Active {
			continue
		}
		d.ActiveAlerts++
		if a.Urgency == UrgencyCritical {
			d.CriticalAlerts++
		}
	}
	for _, r := range s.Donors {
		d.DonorsByBloodType[bloodTypeKey(r.User.BloodType)]++
		for _, a := range r.Appointments {
			d.AppointmentsByStatus[a.Status]++
			if a.Status == StatusCompleted {
				d.TotalDonations++
			}
		}
	}
	d.TotalVolumeML = d.TotalDonations * CompletedVolumeML
	d.LivesSaved = d.TotalDonations * LivesPerDonation
	return d
}

// ReportRow is one line of a grouped report table. Donors counts the distinct donors behind
// the row's donations, except in the blood type table where it counts every registered
// donor of that group.
type ReportRow struct {
	Key       string `json:"key"`
	Donors    int    `json:"donors"`
	Donations int    `json:"donations"`
	VolumeML  int    `json:"volume_ml"`
}

// ReportPeriod bounds a report by date, inclusive. Zero bounds are open.
type ReportPeriod struct {
	From time.Time `json:"from,omitempty"`
	To   time.Time `json:"to,omitempty"`
}

func (p ReportPeriod) contains(day time.Time) bool {
	if day.IsZero() {
		return false
	}
	if !p.From.IsZero() && day.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && day.After(p.To) {
		return false
	}
	return true
}

type Report struct {
	GeneratedAt     time.Time    `json:"generated_at"`
	Period          ReportPeriod `json:"period"`
	TotalDonors     int          `json:"total_donors"`
	TotalDonations  int          `json:"total_donations"`
	TotalVolumeML   int          `json:"total_volume_ml"`
	LivesSaved      int          `json:"lives_saved"`
	ScheduledVisits int          `json:"scheduled_visits"`
	ByCenter        []ReportRow  `json:"by_center"`
	ByMonth         []ReportRow  `json:"by_month"`
	ByBloodType     []ReportRow  `json:"by_blood_type"`
}

// BuildReport groups completed donations inside the period by center, by month and by the
// donor's blood type.
func BuildReport(s Snapshot, period ReportPeriod, now time.Time) Report {
	r := Report{GeneratedAt: now, Period: period, TotalDonors: len(s.Donors)}
	byCenter := map[string]*ReportRow{}
	byMonth := map[string]*ReportRow{}
	byBlood := map[string]*ReportRow{}

	row := func(m map[string]*ReportRow, key string) *ReportRow {
		if _, ok := m[key]; !ok {
			m[key] = &ReportRow{Key: key}
		}
		return m[key]
	}
	// donate adds one donation to the row and counts the donor once per row.
	donate := func(m map[string]*ReportRow, key string, seen map[string]bool) {
		rw := row(m, key)
		rw.Donations++
		rw.VolumeML += CompletedVolumeML
		if !seen[key] {
			seen[key] = true
			rw.Donors++
		}
	}

	for _, d := range s.Donors {
		blood := bloodTypeKey(d.User.BloodType)
		row(byBlood, blood).Donors++
		centers, months := map[string]bool{}, map[string]bool{}
		for _, a := range d.Appointments {
			if !period.contains(a.Day()) {
				continue
			}
			if a.Status != StatusCompleted {
				r.ScheduledVisits++
				continue
			}
			r.TotalDonations++
			donate(byCenter, a.Center, centers)
			donate(byMonth, a.Day().Format("2006-01"), months)
			b := row(byBlood, blood)
			b.Donations++
			b.VolumeML += CompletedVolumeML
		}
	}
	r.TotalVolumeML = r.TotalDonations * CompletedVolumeML
	r.LivesSaved = r.TotalDonations * LivesPerDonation
	r.ByCenter = sortedRows(byCenter)
	r.ByMonth = sortedRows(byMonth)
	r.ByBloodType = sortedRows(byBlood)
	return r
}

func sortedRows(m map[string]*ReportRow) []ReportRow {
	out := make([]ReportRow, 0, len(m))
	for _, row := range m {
		out = append(out, *row)
	}
	slices.SortFunc(out, func(x, y ReportRow) int { return strings.Compare(x.Key, y.Key) })
	return out
}

func bloodTypeKey(bt string) string {
	if bt == "" {
		return "unknown"
	}
	return bt
}

// WriteCSV writes the report as "section,key,donors,donations,volume_ml" rows.
func (r Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	rows := [][]string{{"section", "key", "donors", "donations", "volume_ml"}}
	add := func(section string, list []ReportRow) {
		for _, row := range list {
			rows = append(rows, []string{section, row.Key, strconv.Itoa(row.Donors), strconv.Itoa(row.Donations), strconv.Itoa(row.VolumeML)})
		}
	}
	add("center", r.ByCenter)
	add("month", r.ByMonth)
	add("blood_type", r.ByBloodType)
	rows = append(rows, []string{"total", "all", strconv.Itoa(r.TotalDonors), strconv.Itoa(r.TotalDonations), strconv.Itoa(r.TotalVolumeML)})
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
