package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
)

// Valid reports whether s is one of the three lifecycle literals.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted:
		return true
	}
	return false
}

// DateLayout is the wire format of appointment and donation dates.
const DateLayout = "2006-01-02"

// UnknownAddress is used when a center has no known address.
const UnknownAddress = "Adresse inconnue"

var (
	ErrMissingFields     = errors.New("center, date and time are required")
	ErrUnknownCenter     = errors.New("unknown center")
	ErrInvalidTimeSlot   = errors.New("invalid time slot")
	ErrInvalidDate       = errors.New("invalid date")
	ErrDateInPast        = errors.New("date is in the past")
	ErrNotFound          = errors.New("not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyCompleted  = errors.New("appointment already completed")
)

type Appointment struct {
	ID      int               `json:"id" yaml:"id"`
	Center  string            `json:"center" yaml:"center"`
	Date    string            `json:"date" yaml:"date"`
	Time    string            `json:"time" yaml:"time"`
	Address string            `json:"address" yaml:"address"`
	Status  AppointmentStatus `json:"status" yaml:"status"`
}

// Day parses the appointment date. The zero time is returned when the date is malformed.
func (a Appointment) Day() time.Time {
	d, err := time.Parse(DateLayout, a.Date)
	if err != nil {
		return time.Time{}
	}
	return d
}

// AppointmentForm carries the three fields a donor fills in to book or edit a visit.
type AppointmentForm struct {
	Center string `json:"center"`
	Date   string `json:"date"`
	Time   string `json:"time"`
}

func (f AppointmentForm) trimmed() AppointmentForm {
	return AppointmentForm{
		Center: strings.TrimSpace(f.Center),
		Date:   strings.TrimSpace(f.Date),
		Time:   strings.TrimSpace(f.Time),
	}
}

// BookingOptions lists what the appointment form can offer: center name to address, and
// the bookable time slots.
type BookingOptions struct {
	Centers   map[string]string `json:"centers"`
	TimeSlots []string          `json:"timeSlots"`
}

// NewBookingOptions derives the form choices from a center list.
func NewBookingOptions(centers []Center, slots []string) BookingOptions {
	byName := make(map[string]string, len(centers))
	for _, c := range centers {
		byName[c.Name] = c.Address
	}
	return BookingOptions{Centers: byName, TimeSlots: slices.Clone(slots)}
}

// CenterNames returns the bookable centers in a stable order.
func (o BookingOptions) CenterNames() []string {
	names := make([]string, 0, len(o.Centers))
	for name := range o.Centers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks a form against the options. The date must be today or later in now's
// location.
func (o BookingOptions) Validate(f AppointmentForm, now time.Time) error {
	f = f.trimmed()
	if f.Center == "" || f.Date == "" || f.Time == "" {
		return ErrMissingFields
	}
	if _, ok := o.Centers[f.Center]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCenter, f.Center)
	}
	if !slices.Contains(o.TimeSlots, f.Time) {
		return fmt.Errorf("%w: %s", ErrInvalidTimeSlot, f.Time)
	}
	day, err := time.ParseInLocation(DateLayout, f.Date, now.Location())
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, f.Date)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return ErrDateInPast
	}
	return nil
}

// AddressOf resolves a center address, falling back to UnknownAddress.
func (o BookingOptions) AddressOf(center string) string {
	if addr, ok := o.Centers[center]; ok && addr != "" {
		return addr
	}
	return UnknownAddress
}

// AppointmentBook is one donor's list of appointments. It is not safe for concurrent use;
// the store serialises access.
type AppointmentBook struct {
	items []Appointment
}

func NewAppointmentBook(seed []Appointment) *AppointmentBook {
	return &AppointmentBook{items: slices.Clone(seed)}
}

// List returns a copy of the appointments in insertion order.
func (b *AppointmentBook) List() []Appointment {
	return slices.Clone(b.items)
}

func (b *AppointmentBook) Len() int { return len(b.items) }

// NextID is max(existing id)+1, or 1 for an empty book.
func (b *AppointmentBook) NextID() int {
	maxID := 0
	for _, a := range b.items {
		if a.ID > maxID {
			maxID = a.ID
		}
	}
	return maxID + 1
}

func (b *AppointmentBook) index(id int) int {
	return slices.IndexFunc(b.items, func(a Appointment) bool { return a.ID == id })
}

func (b *AppointmentBook) Get(id int) (Appointment, error) {
	i := b.index(id)
	if i < 0 {
		return Appointment{}, ErrNotFound
	}
	return b.items[i], nil
}

// Create appends a pending appointment. The book is left untouched on error.
func (b *AppointmentBook) Create(f AppointmentForm, opts BookingOptions, now time.Time) (Appointment, error) {
	if err := opts.Validate(f, now); err != nil {
		return Appointment{}, err
	}
	f = f.trimmed()
	a := Appointment{
		ID:      b.NextID(),
		Center:  f.Center,
		Date:    f.Date,
		Time:    f.Time,
		Address: opts.AddressOf(f.Center),
		Status:  StatusPending,
	}
	b.items = append(b.items, a)
	return a, nil
}

// Edit overwrites center, date and time of the appointment with the given id. Id, status
// and address are kept.
func (b *AppointmentBook) Edit(id int, f AppointmentForm, opts BookingOptions, now time.Time) (Appointment, error) {
	i := b.index(id)
	if i < 0 {
		return Appointment{}, ErrNotFound
	}
	if err := opts.Validate(f, now); err != nil {
		return Appointment{}, err
	}
	f = f.trimmed()
	b.items[i].Center = f.Center
	b.items[i].Date = f.Date
	b.items[i].Time = f.Time
	return b.items[i], nil
}

// Cancel removes a not yet completed appointment.
func (b *AppointmentBook) Cancel(id int) (Appointment, error) {
	i := b.index(id)
	if i < 0 {
		return Appointment{}, ErrNotFound
	}
	a := b.items[i]
	if a.Status == StatusCompleted {
		return Appointment{}, ErrAlreadyCompleted
	}
	b.items = slices.Delete(b.items, i, i+1)
	return a, nil
}

// SetStatus moves an appointment along pending -> confirmed -> completed. A pending
// appointment may also be completed directly (walk-in donation).
func (b *AppointmentBook) SetStatus(id int, next AppointmentStatus) (Appointment, error) {
	if !next.Valid() {
		return Appointment{}, fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	i := b.index(id)
	if i < 0 {
		return Appointment{}, ErrNotFound
	}
	cur := b.items[i].Status
	switch cur {
	case StatusPending:
		if next != StatusConfirmed && next != StatusCompleted {
			return Appointment{}, fmt.Errorf("%w from %s to %s", ErrInvalidTransition, cur, next)
		}
	case StatusConfirmed:
		if next != StatusCompleted {
			return Appointment{}, fmt.Errorf("%w from %s to %s", ErrInvalidTransition, cur, next)
		}
	case StatusCompleted:
		return Appointment{}, fmt.Errorf("%w: no transitions allowed from %s", ErrInvalidTransition, cur)
	}
	b.items[i].Status = next
	return b.items[i], nil
}

// Upcoming returns confirmed and pending appointments, earliest first.
func (b *AppointmentBook) Upcoming() []Appointment {
	var out []Appointment
	for _, a := range b.items {
		if a.Status == StatusConfirmed || a.Status == StatusPending {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(x, y Appointment) int {
		return strings.Compare(x.Date+x.Time, y.Date+y.Time)
	})
	return out
}

// Past returns completed appointments.
func (b *AppointmentBook) Past() []Appointment {
	var out []Appointment
	for _, a := range b.items {
		if a.Status == StatusCompleted {
			out = append(out, a)
		}
	}
	return out
}
