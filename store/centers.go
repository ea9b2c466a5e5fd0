package store

import (
	"slices"
	"strings"

	"github.com/dondesang/appdon/models"
)

func (s *Store) Centers(f models.CenterFilter) []models.Center {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Center{}
	for _, c := range s.centers {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) Center(id int) (models.Center, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.centerIndex(id)
	if i < 0 {
		return models.Center{}, models.ErrNotFound
	}
	return s.centers[i], nil
}

func (s *Store) centerIndex(id int) int {
	return slices.IndexFunc(s.centers, func(c models.Center) bool { return c.ID == id })
}

func (s *Store) centerNameTaken(name string, except int) bool {
	return slices.ContainsFunc(s.centers, func(c models.Center) bool {
		return c.ID != except && strings.EqualFold(c.Name, name)
	})
}

// CreateCenter assigns the next id. Center names are unique because appointments refer to
// centers by name.
func (s *Store) CreateCenter(c models.Center) (models.Center, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.centerNameTaken(c.Name, 0) {
		return models.Center{}, ErrDuplicate
	}
	c.ID = 1
	for _, existing := range s.centers {
		c.ID = max(c.ID, existing.ID+1)
	}
	s.centers = append(s.centers, c)
	return c, nil
}

func (s *Store) UpdateCenter(id int, c models.Center) (models.Center, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.centerIndex(id)
	if i < 0 {
		return models.Center{}, models.ErrNotFound
	}
	if s.centerNameTaken(c.Name, id) {
		return models.Center{}, ErrDuplicate
	}
	c.ID = id
	s.centers[i] = c
	return c, nil
}

// DeleteCenter removes the center from the catalogue. Existing appointments keep the
// name and address they were booked with.
func (s *Store) DeleteCenter(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.centerIndex(id)
	if i < 0 {
		return models.ErrNotFound
	}
	s.centers = slices.Delete(s.centers, i, i+1)
	return nil
}

func (s *Store) Hospitals() []models.Hospital {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.hospitals)
}

func (s *Store) hospitalIndex(id int) int {
	return slices.IndexFunc(s.hospitals, func(h models.Hospital) bool { return h.ID == id })
}

func (s *Store) Hospital(id int) (models.Hospital, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.hospitalIndex(id)
	if i < 0 {
		return models.Hospital{}, models.ErrNotFound
	}
	return s.hospitals[i], nil
}

func (s *Store) CreateHospital(h models.Hospital) models.Hospital {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = 1
	for _, existing := range s.hospitals {
		h.ID = max(h.ID, existing.ID+1)
	}
	s.hospitals = append(s.hospitals, h)
	return h
}

func (s *Store) UpdateHospital(id int, h models.Hospital) (models.Hospital, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.hospitalIndex(id)
	if i < 0 {
		return models.Hospital{}, models.ErrNotFound
	}
	h.ID = id
	s.hospitals[i] = h
	return h, nil
}

func (s *Store) DeleteHospital(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.hospitalIndex(id)
	if i < 0 {
		return models.ErrNotFound
	}
	s.hospitals = slices.Delete(s.hospitals, i, i+1)
	return nil
}
