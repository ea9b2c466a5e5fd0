package models

// Hospital is a blood consumer managed from the admin console.
type Hospital struct {
	ID      int    `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name" validate:"required"`
	City    string `json:"city" yaml:"city" validate:"required"`
	Region  string `json:"region" yaml:"region" validate:"required,oneof=Maritime Plateaux Centrale Kara Savanes"`
	Address string `json:"address" yaml:"address"`
	Phone   string `json:"phone" yaml:"phone"`
	Email   string `json:"email" yaml:"email" validate:"omitempty,email"`
	Type    string `json:"type" yaml:"type" validate:"required,oneof=CHU CHR Clinique CMS"`
}
