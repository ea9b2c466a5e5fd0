package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dondesang/appdon/models"
	"github.com/dondesang/appdon/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2025, 10, 13, 6, 0, 0, 0, time.UTC)

type fixedStore struct{ snap models.Snapshot }

func (f fixedStore) Snapshot() models.Snapshot { return f.snap }

type sentMail struct {
	to      []string
	subject string
	files   []utils.Attachment
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to []string, subject, _ string, files ...utils.Attachment) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, files: files})
	return nil
}

type fakeRefresher struct{ calls int }

func (f *fakeRefresher) Refresh(context.Context) ([]models.Country, error) {
	f.calls++
	return []models.Country{{ID: 1, Name: "Togo"}}, nil
}

func weekStore() fixedStore {
	return fixedStore{snap: models.Snapshot{Donors: []models.DonorRecord{{
		User: models.User{Email: "ama@example.tg", BloodType: "O+"},
		Appointments: []models.Appointment{
			{ID: 1, Center: "CHU Sylvanus Olympio", Date: "2025-10-08", Time: "09:00", Status: models.StatusCompleted},
			{ID: 2, Center: "CHU Campus", Date: "2025-09-01", Time: "10:00", Status: models.StatusCompleted},
			{ID: 3, Center: "CHU Campus", Date: "2025-10-10", Time: "10:00", Status: models.StatusPending},
		},
	}}}}
}

func TestWeeklyPeriod(t *testing.T) {
	p := WeeklyPeriod(monday)
	assert.Equal(t, time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC), p.From)
	assert.Equal(t, time.Date(2025, 10, 12, 0, 0, 0, 0, time.UTC), p.To)
}

func TestRunReport_KeepsLatestWithoutMailer(t *testing.T) {
	s, err := New(weekStore(), Options{ReportSpec: "0 6 * * 1", Now: func() time.Time { return monday }})
	require.NoError(t, err)

	_, ok := s.Latest()
	assert.False(t, ok)

	r, err := s.RunReport()
	require.NoError(t, err)
	assert.Equal(t, 1, r.TotalDonations)
	assert.Equal(t, 1, r.ScheduledVisits)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, r, latest)
}

func TestRunReport_EmailsCSV(t *testing.T) {
	mailer := &fakeMailer{}
	s, err := New(weekStore(), Options{
		ReportSpec: "0 6 * * 1",
		Mailer:     mailer,
		Recipients: []string{"stats@cnts.tg"},
		Now:        func() time.Time { return monday },
	})
	require.NoError(t, err)

	_, err = s.RunReport()
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	mail := mailer.sent[0]
	assert.Equal(t, []string{"stats@cnts.tg"}, mail.to)
	assert.Equal(t, "Rapport des dons du 2025-10-06 au 2025-10-12", mail.subject)
	require.Len(t, mail.files, 1)
	assert.Equal(t, "rapport-2025-10-12.csv", mail.files[0].Name)
	assert.True(t, strings.Contains(string(mail.files[0].Data), "center,CHU Sylvanus Olympio,1,1,450"))
}

func TestRunReport_MailFailureStillKeepsReport(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	s, err := New(weekStore(), Options{
		ReportSpec: "0 6 * * 1",
		Mailer:     mailer,
		Recipients: []string{"stats@cnts.tg"},
		Now:        func() time.Time { return monday },
	})
	require.NoError(t, err)

	_, err = s.RunReport()
	assert.Error(t, err)
	_, ok := s.Latest()
	assert.True(t, ok)
}

func TestNew_RegistersJobs(t *testing.T) {
	s, err := New(weekStore(), Options{ReportSpec: "0 6 * * 1", CountriesSpec: "@every 1h", Countries: &fakeRefresher{}})
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)

	s, err = New(weekStore(), Options{ReportSpec: "0 6 * * 1", CountriesSpec: "@every 1h"})
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 1)
}

func TestNew_RejectsBadSpec(t *testing.T) {
	_, err := New(weekStore(), Options{ReportSpec: "not a cron"})
	assert.Error(t, err)
}

func TestRefreshCountries(t *testing.T) {
	ref := &fakeRefresher{}
	s, err := New(weekStore(), Options{ReportSpec: "0 6 * * 1", CountriesSpec: "@every 1h", Countries: ref})
	require.NoError(t, err)
	s.refreshCountries()
	assert.Equal(t, 1, ref.calls)
}
