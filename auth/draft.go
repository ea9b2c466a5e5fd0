package auth

import (
	"errors"
	"time"

	"github.com/dondesang/appdon/models"
)

var ErrFileTooLarge = errors.New("analysis file exceeds 5 MB")

// MsgFileTooLarge is shown under the file input.
const MsgFileTooLarge = "Fichier trop volumineux (max 5 MB)"

// CheckAnalysisFile enforces the 5 MB ceiling on analysis uploads.
func CheckAnalysisFile(size int64) error {
	if size > models.MaxAnalysisFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// SignupDraft holds the last accepted signup form and analysis file. A rejected form or
// file never overwrites what was accepted before.
type SignupDraft struct {
	form     SignupForm
	accepted bool
	file     *models.Attachment
}

// Apply validates f and, when valid, makes it the accepted form.
func (d *SignupDraft) Apply(f SignupForm) error {
	if err := f.Validate(); err != nil {
		return err
	}
	d.form = f.normalized()
	d.accepted = true
	return nil
}

// AttachFile records the analysis file reference unless it exceeds the size ceiling.
func (d *SignupDraft) AttachFile(name string, size int64, contentType string, now time.Time) error {
	if err := CheckAnalysisFile(size); err != nil {
		return err
	}
	d.file = &models.Attachment{Name: name, Size: size, ContentType: contentType, UploadedAt: now}
	return nil
}

// Form returns the accepted form and whether one was accepted at all.
func (d *SignupDraft) Form() (SignupForm, bool) { return d.form, d.accepted }

func (d *SignupDraft) File() *models.Attachment { return d.file }

// User builds the donor record from the accepted values.
func (d *SignupDraft) User() models.User {
	return models.User{
		Email:        d.form.Email,
		Name:         d.form.FullName,
		Phone:        d.form.Phone,
		City:         d.form.City,
		BloodType:    d.form.BloodType,
		DateOfBirth:  d.form.DateOfBirth,
		AnalysisFile: d.file,
	}
}
