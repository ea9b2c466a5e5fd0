package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var testOptions = BookingOptions{
	Centers: map[string]string{
		"CHU Sylvanus Olympio":           "Boulevard du 13 Janvier, Lomé",
		"CHU Campus":                     "Rue de la Kozah, Lomé",
		"Centre de Transfusion Sanguine": "Rue du Commerce, Lomé",
		"CHR Kara":                       "Route de Bassar, Kara",
		"Collecte Mobile":                "",
	},
	TimeSlots: []string{"08:00", "09:00", "10:00", "11:00", "14:00", "15:00", "16:00", "17:00"},
}

var testNow = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func seedBook() *AppointmentBook {
	return NewAppointmentBook([]Appointment{
		{ID: 1, Center: "CHU Sylvanus Olympio", Date: "2025-12-02", Time: "10:00", Address: "Boulevard du 13 Janvier, Lomé", Status: StatusConfirmed},
		{ID: 2, Center: "Centre de Transfusion Sanguine", Date: "2025-10-15", Time: "14:30", Address: "Rue du Commerce, Lomé", Status: StatusCompleted},
	})
}

func TestCreate_MissingFieldsLeavesBookUnchanged(t *testing.T) {
	cases := []struct {
		name string
		form AppointmentForm
	}{
		{"no center", AppointmentForm{Date: "2025-11-01", Time: "10:00"}},
		{"no date", AppointmentForm{Center: "CHU Campus", Time: "10:00"}},
		{"no time", AppointmentForm{Center: "CHU Campus", Date: "2025-11-01"}},
		{"blank center", AppointmentForm{Center: "   ", Date: "2025-11-01", Time: "10:00"}},
		{"all empty", AppointmentForm{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			book := seedBook()
			before := book.List()

			_, err := book.Create(tc.form, testOptions, testNow)
			require.ErrorIs(t, err, ErrMissingFields)
			assert.Equal(t, before, book.List())
		})
	}
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		form AppointmentForm
		want error
	}{
		{"unknown center", AppointmentForm{Center: "Clinique X", Date: "2025-11-01", Time: "10:00"}, ErrUnknownCenter},
		{"bad slot", AppointmentForm{Center: "CHU Campus", Date: "2025-11-01", Time: "12:00"}, ErrInvalidTimeSlot},
		{"bad date", AppointmentForm{Center: "CHU Campus", Date: "01/11/2025", Time: "10:00"}, ErrInvalidDate},
		{"yesterday", AppointmentForm{Center: "CHU Campus", Date: "2025-09-30", Time: "10:00"}, ErrDateInPast},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			book := seedBook()
			_, err := book.Create(tc.form, testOptions, testNow)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 2, book.Len())
		})
	}
}

func TestCreate_TodayIsAllowed(t *testing.T) {
	book := NewAppointmentBook(nil)
	a, err := book.Create(AppointmentForm{Center: "CHU Campus", Date: "2025-10-01", Time: "08:00"}, testOptions, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-10-01", a.Date)
}

func TestCreate_AssignsIDs(t *testing.T) {
	form := AppointmentForm{Center: "CHR Kara", Date: "2025-11-20", Time: "09:00"}

	t.Run("empty book starts at 1", func(t *testing.T) {
		book := NewAppointmentBook(nil)
		a, err := book.Create(form, testOptions, testNow)
		require.NoError(t, err)
		assert.Equal(t, 1, a.ID)
	})

	t.Run("max id plus one", func(t *testing.T) {
		book := NewAppointmentBook([]Appointment{
			{ID: 3, Status: StatusCompleted},
			{ID: 7, Status: StatusConfirmed},
			{ID: 5, Status: StatusPending},
		})
		a, err := book.Create(form, testOptions, testNow)
		require.NoError(t, err)
		assert.Equal(t, 8, a.ID)
	})
}

func TestCreate_NewAppointmentIsPendingWithCenterAddress(t *testing.T) {
	book := seedBook()
	a, err := book.Create(AppointmentForm{Center: "CHR Kara", Date: "2025-11-20", Time: "09:00"}, testOptions, testNow)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, a.Status)
	assert.Equal(t, "Route de Bassar, Kara", a.Address)
	assert.Equal(t, 3, book.Len())

	b, err := book.Create(AppointmentForm{Center: "Collecte Mobile", Date: "2025-11-21", Time: "09:00"}, testOptions, testNow)
	require.NoError(t, err)
	assert.Equal(t, UnknownAddress, b.Address)
}

func TestEdit_ChangesOnlyCenterDateTime(t *testing.T) {
	book := seedBook()
	original, err := book.Get(1)
	require.NoError(t, err)
	other, err := book.Get(2)
	require.NoError(t, err)

	edited, err := book.Edit(1, AppointmentForm{Center: "CHR Kara", Date: "2025-12-10", Time: "15:00"}, testOptions, testNow)
	require.NoError(t, err)

	assert.Equal(t, 1, edited.ID)
	assert.Equal(t, original.Status, edited.Status)
	assert.Equal(t, original.Address, edited.Address)
	assert.Equal(t, "CHR Kara", edited.Center)
	assert.Equal(t, "2025-12-10", edited.Date)
	assert.Equal(t, "15:00", edited.Time)

	still, err := book.Get(2)
	require.NoError(t, err)
	assert.Equal(t, other, still)
	assert.Equal(t, 2, book.Len())
}

func TestEdit_InvalidFormOrUnknownID(t *testing.T) {
	book := seedBook()
	before := book.List()

	_, err := book.Edit(1, AppointmentForm{Center: "CHR Kara"}, testOptions, testNow)
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = book.Edit(42, AppointmentForm{Center: "CHR Kara", Date: "2025-12-10", Time: "15:00"}, testOptions, testNow)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, before, book.List())
}

func TestCancel(t *testing.T) {
	book := seedBook()

	_, err := book.Cancel(2)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	removed, err := book.Cancel(1)
	require.NoError(t, err)
	assert.Equal(t, 1, removed.ID)
	assert.Equal(t, 1, book.Len())

	_, err = book.Cancel(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatus(t *testing.T) {
	cases := []struct {
		name string
		from AppointmentStatus
		to   AppointmentStatus
		ok   bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to completed", StatusPending, StatusCompleted, true},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, true},
		{"confirmed to pending", StatusConfirmed, StatusPending, false},
		{"completed to confirmed", StatusCompleted, StatusConfirmed, false},
		{"pending to pending", StatusPending, StatusPending, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			book := NewAppointmentBook([]Appointment{{ID: 1, Status: tc.from}})
			a, err := book.SetStatus(1, tc.to)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.to, a.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}

	book := NewAppointmentBook([]Appointment{{ID: 1, Status: StatusPending}})
	_, err := book.SetStatus(1, "canceled")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpcomingAndPast(t *testing.T) {
	book := seedBook()
	_, err := book.Create(AppointmentForm{Center: "CHU Campus", Date: "2025-11-01", Time: "08:00"}, testOptions, testNow)
	require.NoError(t, err)

	upcoming := book.Upcoming()
	require.Len(t, upcoming, 2)
	assert.Equal(t, "2025-11-01", upcoming[0].Date)
	assert.Equal(t, "2025-12-02", upcoming[1].Date)

	past := book.Past()
	require.Len(t, past, 1)
	assert.Equal(t, 2, past[0].ID)
}

func TestCreate_IDsStayUnique(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := rapid.SliceOfDistinct(rapid.IntRange(1, 500), rapid.ID[int]).Draw(t, "ids")
		seed := make([]Appointment, len(ids))
		for i, id := range ids {
			seed[i] = Appointment{ID: id, Status: StatusConfirmed}
		}
		book := NewAppointmentBook(seed)

		n := rapid.IntRange(1, 10).Draw(t, "creates")
		for i := 0; i < n; i++ {
			if _, err := book.Create(AppointmentForm{Center: "CHU Campus", Date: "2025-11-01", Time: "08:00"}, testOptions, testNow); err != nil {
				t.Fatalf("create: %v", err)
			}
		}

		seen := map[int]bool{}
		for _, a := range book.List() {
			if seen[a.ID] {
				t.Fatalf("duplicate id %d", a.ID)
			}
			seen[a.ID] = true
		}
	})
}
