package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BloodTypes accepted on signup and profile edits.
var BloodTypes = []string{"O+", "O-", "A+", "A-", "B+", "B-", "AB+", "AB-"}

// BloodTypeParam reads a blood type from a query string value. An unencoded "+" arrives
// as a space, so "O " and "AB " are read as "O+" and "AB+". Clients should still send %2B.
func BloodTypeParam(raw string) string {
	bt := strings.TrimSpace(raw)
	if strings.HasSuffix(raw, " ") && slices.Contains(BloodTypes, bt+"+") {
		return bt + "+"
	}
	return bt
}

// MaxAnalysisFileSize is the ceiling for the uploaded analysis result (5 MB).
const MaxAnalysisFileSize = 5 * 1024 * 1024

// Attachment references an uploaded analysis result. URL is only set when a remote storage
// backend kept the bytes.
type Attachment struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType,omitempty"`
	URL         string    `json:"url,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type User struct {
	ID             uuid.UUID   `json:"id"`
	Email          string      `json:"email"`
	Name           string      `json:"name"`
	Phone          string      `json:"phone,omitempty"`
	City           string      `json:"city,omitempty"`
	BloodType      string      `json:"bloodType,omitempty"`
	DateOfBirth    string      `json:"dateOfBirth,omitempty"`
	AnalysisFile   *Attachment `json:"analysisFile,omitempty"`
	Authenticated  bool        `json:"authenticated"`
	MemberSince    time.Time   `json:"memberSince"`
	TotalDonations int         `json:"totalDonations"`
	Role           Role        `json:"role"`
	PasswordHash   string      `json:"-"`
}

// ProfileUpdate holds the fields a donor can edit on the profile screen.
type ProfileUpdate struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	BloodType   string `json:"bloodType" validate:"omitempty,oneof=O+ O- A+ A- B+ B- AB+ AB-"`
	DateOfBirth string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
}

// WithProfile replaces every editable field at once and keeps the rest of the record.
func (u User) WithProfile(p ProfileUpdate) User {
	u.Name = p.Name
	u.Email = p.Email
	u.Phone = p.Phone
	u.City = p.City
	u.BloodType = p.BloodType
	u.DateOfBirth = p.DateOfBirth
	return u
}

// DonorFilter narrows the admin donor list.
type DonorFilter struct {
	Query     string
	BloodType string
	City      string
}
