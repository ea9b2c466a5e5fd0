// Package store keeps the service state in process memory. Everything is lost on restart.
package store

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dondesang/appdon/catalog"
	"github.com/dondesang/appdon/models"
	"github.com/google/uuid"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	ErrDuplicate  = errors.New("duplicate name")
	ErrNoSession  = errors.New("session not found")
)

type donor struct {
	user models.User
	book *models.AppointmentBook
}

// Store is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	slots []string
	demo  []models.Appointment

	donors   map[uuid.UUID]*donor
	byEmail  map[string]uuid.UUID
	sessions map[string]uuid.UUID

	centers   []models.Center
	hospitals []models.Hospital
	alerts    []models.Alert
	tips      []models.Tip
}

// New seeds a store from the catalogue. With seedDemo every new donor book starts with
// the catalogue's demo appointments.
func New(cat *catalog.Catalog, seedDemo bool, now time.Time) *Store {
	s := &Store{
		slots:     slices.Clone(cat.TimeSlots),
		donors:    map[uuid.UUID]*donor{},
		byEmail:   map[string]uuid.UUID{},
		sessions:  map[string]uuid.UUID{},
		centers:   slices.Clone(cat.Centers),
		hospitals: slices.Clone(cat.Hospitals),
		alerts:    cat.SeedAlerts(now),
		tips:      slices.Clone(cat.Education),
	}
	if seedDemo {
		s.demo = slices.Clone(cat.DemoAppointments)
	}
	return s
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// view returns the donor's user with the derived donation count.
func (d *donor) view() models.User {
	u := d.user
	u.TotalDonations = len(d.book.Past())
	return u
}

// Register adds a new donor. The email must not be in use.
func (s *Store) Register(u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey(u.Email)
	if _, ok := s.byEmail[key]; ok {
		return models.User{}, ErrEmailTaken
	}
	return s.insert(u), nil
}

// Login returns the donor registered under u.Email, creating it from u when unknown,
// and marks it authenticated.
func (s *Store) Login(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byEmail[emailKey(u.Email)]; ok {
		d := s.donors[id]
		d.user.Authenticated = true
		d.user.Role = u.Role
		return d.view()
	}
	return s.insert(u)
}

func (s *Store) insert(u models.User) models.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Authenticated = true
	d := &donor{user: u, book: models.NewAppointmentBook(s.demo)}
	s.donors[u.ID] = d
	s.byEmail[emailKey(u.Email)] = u.ID
	return d.view()
}

// Credentials returns the donor registered under email, password hash included.
func (s *Store) Credentials(email string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return models.User{}, false
	}
	return s.donors[id].view(), true
}

func (s *Store) StartSession(userID uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sid := uuid.NewString()
	s.sessions[sid] = userID
	return sid
}

// EndSession removes the session. The donor is marked unauthenticated once no session
// is left.
func (s *Store) EndSession(sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.sessions[sid]
	if !ok {
		return ErrNoSession
	}
	delete(s.sessions, sid)
	for _, other := range s.sessions {
		if other == userID {
			return nil
		}
	}
	if d, ok := s.donors[userID]; ok {
		d.user.Authenticated = false
	}
	return nil
}

func (s *Store) SessionActive(sid string, userID uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.sessions[sid]
	return ok && owner == userID
}

func (s *Store) Donor(id uuid.UUID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.donors[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return d.view(), nil
}

// Donors lists donors matching f, sorted by name.
func (s *Store) Donors(f models.DonorFilter) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []models.User{}
	for _, d := range s.donors {
		u := d.user
		if q != "" && !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		if f.BloodType != "" && u.BloodType != f.BloodType {
			continue
		}
		if f.City != "" && !strings.EqualFold(u.City, f.City) {
			continue
		}
		out = append(out, d.view())
	}
	slices.SortFunc(out, func(a, b models.User) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Email, b.Email)
	})
	return out
}

// UpdateProfile replaces the editable profile fields of a donor.
func (s *Store) UpdateProfile(id uuid.UUID, p models.ProfileUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donors[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	oldKey, newKey := emailKey(d.user.Email), emailKey(p.Email)
	if oldKey != newKey {
		if _, taken := s.byEmail[newKey]; taken {
			return models.User{}, ErrEmailTaken
		}
		delete(s.byEmail, oldKey)
		s.byEmail[newKey] = id
	}
	d.user = d.user.WithProfile(p)
	return d.view(), nil
}

func (s *Store) SetAnalysisFile(id uuid.UUID, att models.Attachment) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donors[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	d.user.AnalysisFile = &att
	return d.view(), nil
}

func (s *Store) Education() []models.Tip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tips)
}

// Snapshot copies the whole state for dashboards and reports.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := models.Snapshot{
		Donors:    make([]models.DonorRecord, 0, len(s.donors)),
		Centers:   slices.Clone(s.centers),
		Hospitals: slices.Clone(s.hospitals),
		Alerts:    slices.Clone(s.alerts),
	}
	for _, d := range s.donors {
		snap.Donors = append(snap.Donors, models.DonorRecord{User: d.view(), Appointments: d.book.List()})
	}
	slices.SortFunc(snap.Donors, func(a, b models.DonorRecord) int {
		return strings.Compare(a.User.Email, b.User.Email)
	})
	return snap
}
