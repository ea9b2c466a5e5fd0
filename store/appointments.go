package store

import (
	"time"

	"github.com/dondesang/appdon/models"
	"github.com/google/uuid"
)

// BookingOptions is built from the current center list so admin edits show up in the
// appointment form.
func (s *Store) BookingOptions() models.BookingOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bookingOptions()
}

func (s *Store) bookingOptions() models.BookingOptions {
	return models.NewBookingOptions(s.centers, s.slots)
}

func (s *Store) readBook(userID uuid.UUID, fn func(*models.AppointmentBook)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.donors[userID]
	if !ok {
		return models.ErrNotFound
	}
	fn(d.book)
	return nil
}

func (s *Store) writeBook(userID uuid.UUID, fn func(*models.AppointmentBook, models.BookingOptions) (models.Appointment, error)) (models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donors[userID]
	if !ok {
		return models.Appointment{}, models.ErrNotFound
	}
	return fn(d.book, s.bookingOptions())
}

func (s *Store) Appointments(userID uuid.UUID) ([]models.Appointment, error) {
	var out []models.Appointment
	err := s.readBook(userID, func(b *models.AppointmentBook) { out = b.List() })
	return out, err
}

func (s *Store) Appointment(userID uuid.UUID, id int) (models.Appointment, error) {
	var (
		a      models.Appointment
		getErr error
	)
	if err := s.readBook(userID, func(b *models.AppointmentBook) { a, getErr = b.Get(id) }); err != nil {
		return models.Appointment{}, err
	}
	return a, getErr
}

// Agenda returns every appointment along with the upcoming (confirmed and pending) and
// past (completed) ones, all read from the same state of the book.
func (s *Store) Agenda(userID uuid.UUID) (all, upcoming, past []models.Appointment, err error) {
	err = s.readBook(userID, func(b *models.AppointmentBook) {
		all, upcoming, past = b.List(), b.Upcoming(), b.Past()
	})
	return all, upcoming, past, err
}

func (s *Store) CreateAppointment(userID uuid.UUID, f models.AppointmentForm, now time.Time) (models.Appointment, error) {
	return s.writeBook(userID, func(b *models.AppointmentBook, opts models.BookingOptions) (models.Appointment, error) {
		return b.Create(f, opts, now)
	})
}

func (s *Store) EditAppointment(userID uuid.UUID, id int, f models.AppointmentForm, now time.Time) (models.Appointment, error) {
	return s.writeBook(userID, func(b *models.AppointmentBook, opts models.BookingOptions) (models.Appointment, error) {
		return b.Edit(id, f, opts, now)
	})
}

func (s *Store) CancelAppointment(userID uuid.UUID, id int) (models.Appointment, error) {
	return s.writeBook(userID, func(b *models.AppointmentBook, _ models.BookingOptions) (models.Appointment, error) {
		return b.Cancel(id)
	})
}

func (s *Store) SetAppointmentStatus(userID uuid.UUID, id int, status models.AppointmentStatus) (models.Appointment, error) {
	return s.writeBook(userID, func(b *models.AppointmentBook, _ models.BookingOptions) (models.Appointment, error) {
		return b.SetStatus(id, status)
	})
}

func (s *Store) History(userID uuid.UUID, now time.Time) (models.History, error) {
	var h models.History
	err := s.readBook(userID, func(b *models.AppointmentBook) { h = models.BuildHistory(b.List(), now) })
	return h, err
}
