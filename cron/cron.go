package cron

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dondesang/appdon/models"
	"github.com/dondesang/appdon/utils"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// reportWindow is the period covered by the scheduled report, ending yesterday.
const reportWindow = 7 * 24 * time.Hour

const refreshTimeout = 30 * time.Second

// Snapshotter is the store view the report job reads.
type Snapshotter interface {
	Snapshot() models.Snapshot
}

// CountryRefresher reloads the cached countries list.
type CountryRefresher interface {
	Refresh(ctx context.Context) ([]models.Country, error)
}

type Options struct {
	ReportSpec    string
	CountriesSpec string
	// Mailer and Recipients are optional; without them the report is only kept in memory.
	Mailer     utils.Mailer
	Recipients []string
	// Countries is optional; the refresh job is not scheduled without it.
	Countries CountryRefresher
	Log       *zap.Logger
	Now       func() time.Time
}

// Scheduler runs the periodic report and the countries cache refresh.
type Scheduler struct {
	cron       *cron.Cron
	store      Snapshotter
	mailer     utils.Mailer
	recipients []string
	countries  CountryRefresher
	log        *zap.Logger
	now        func() time.Time

	mu     sync.RWMutex
	latest models.Report
	ready  bool
}

// New registers the jobs. Nothing runs until Start.
func New(st Snapshotter, opts Options) (*Scheduler, error) {
	s := &Scheduler{
		cron:       cron.New(),
		store:      st,
		mailer:     opts.Mailer,
		recipients: opts.Recipients,
		countries:  opts.Countries,
		log:        opts.Log,
		now:        opts.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = utils.NowLome
	}
	if _, err := s.cron.AddFunc(opts.ReportSpec, s.runReport); err != nil {
		return nil, fmt.Errorf("add report job: %w", err)
	}
	if s.countries != nil {
		if _, err := s.cron.AddFunc(opts.CountriesSpec, s.refreshCountries); err != nil {
			return nil, fmt.Errorf("add countries job: %w", err)
		}
	}
	return s, nil
}

// StartCronJobs starts the scheduler in its own goroutine.
func (s *Scheduler) StartCronJobs() {
	s.cron.Start()
	s.log.Info("cron scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Latest returns the last report built by the scheduler.
func (s *Scheduler) Latest() (models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.ready
}

// WeeklyPeriod covers the seven days before now's date.
func WeeklyPeriod(now time.Time) models.ReportPeriod {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return models.ReportPeriod{
		From: today.Add(-reportWindow),
		To:   today.AddDate(0, 0, -1),
	}
}

func (s *Scheduler) runReport() {
	if _, err := s.RunReport(); err != nil {
		s.log.Error("scheduled report failed", zap.Error(err))
	}
}

// RunReport builds the weekly report, keeps it as the latest one and emails it as CSV
// when recipients are configured.
func (s *Scheduler) RunReport() (models.Report, error) {
	now := s.now()
	r := models.BuildReport(s.store.Snapshot(), WeeklyPeriod(now), now)

	s.mu.Lock()
	s.latest, s.ready = r, true
	s.mu.Unlock()

	s.log.Info("report computed",
		zap.Int("donations", r.TotalDonations),
		zap.Int("scheduled_visits", r.ScheduledVisits),
	)
	if s.mailer == nil || len(s.recipients) == 0 {
		return r, nil
	}
	if err := s.sendReport(r); err != nil {
		return r, err
	}
	s.log.Info("report emailed", zap.Strings("to", s.recipients))
	return r, nil
}

func (s *Scheduler) sendReport(r models.Report) error {
	var buf bytes.Buffer
	if err := r.WriteCSV(&buf); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	from := r.Period.From.Format(models.DateLayout)
	to := r.Period.To.Format(models.DateLayout)
	subject := fmt.Sprintf("Rapport des dons du %s au %s", from, to)
	body := fmt.Sprintf(`
		<p>Bonjour,</p>
		<p>Voici le rapport hebdomadaire des dons de sang.</p>
		<ul>
			<li><strong>Dons:</strong> %d</li>
			<li><strong>Volume:</strong> %d ml</li>
			<li><strong>Vies sauvées:</strong> %d</li>
			<li><strong>Rendez-vous à venir:</strong> %d</li>
		</ul>
		<p>Le détail par centre et par mois est joint en CSV.</p>
	`, r.TotalDonations, r.TotalVolumeML, r.LivesSaved, r.ScheduledVisits)

	return s.mailer.Send(s.recipients, subject, body, utils.Attachment{
		Name:        fmt.Sprintf("rapport-%s.csv", to),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	})
}

func (s *Scheduler) refreshCountries() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	rows, err := s.countries.Refresh(ctx)
	if err != nil {
		s.log.Warn("countries refresh failed", zap.Error(err))
		return
	}
	s.log.Debug("countries refreshed", zap.Int("count", len(rows)))
}
