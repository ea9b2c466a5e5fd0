package store

import (
	"slices"
	"time"

	"github.com/dondesang/appdon/models"
	"github.com/google/uuid"
)

// Alerts returns alerts concerning bloodType (all when empty), most urgent first.
func (s *Store) Alerts(activeOnly bool, bloodType string) []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Alert{}
	for _, a := range s.alerts {
		if activeOnly && !a.Active {
			continue
		}
		if !a.Concerns(bloodType) {
			continue
		}
		out = append(out, a)
	}
	slices.SortStableFunc(out, models.CompareAlerts)
	return out
}

func (s *Store) alertIndex(id uuid.UUID) int {
	return slices.IndexFunc(s.alerts, func(a models.Alert) bool { return a.ID == id })
}

func (s *Store) CreateAlert(a models.Alert, now time.Time) models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = now
	a.Active = true
	s.alerts = append(s.alerts, a)
	return a
}

// UpdateAlert replaces the editable fields. Id, creation time and the active flag are kept;
// DeactivateAlert is the only way to retire an alert.
func (s *Store) UpdateAlert(id uuid.UUID, a models.Alert) (models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.alertIndex(id)
	if i < 0 {
		return models.Alert{}, models.ErrNotFound
	}
	a.ID = id
	a.CreatedAt = s.alerts[i].CreatedAt
	a.Active = s.alerts[i].Active
	s.alerts[i] = a
	return a, nil
}

func (s *Store) DeactivateAlert(id uuid.UUID) (models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.alertIndex(id)
	if i < 0 {
		return models.Alert{}, models.ErrNotFound
	}
	s.alerts[i].Active = false
	return s.alerts[i], nil
}

func (s *Store) DeleteAlert(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.alertIndex(id)
	if i < 0 {
		return models.ErrNotFound
	}
	s.alerts = slices.Delete(s.alerts, i, i+1)
	return nil
}
