package auth

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field (json name) to the message shown under it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("donor_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

type LoginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

const msgLoginRequired = "Email et mot de passe requis"

// Validate only checks that both fields are filled in.
func (f LoginForm) Validate() error {
	fe := FieldErrors{}
	if strings.TrimSpace(f.Email) == "" {
		fe["email"] = msgLoginRequired
	}
	if f.Password == "" {
		fe["password"] = msgLoginRequired
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

type SignupForm struct {
	FullName        string `json:"fullName" form:"fullName" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required,donor_email"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"confirmPassword" form:"confirmPassword" validate:"required,eqfield=Password"`
	Phone           string `json:"phone" form:"phone" validate:"required"`
	City            string `json:"city" form:"city" validate:"required"`
	BloodType       string `json:"bloodType" form:"bloodType" validate:"required,oneof=O+ O- A+ A- B+ B- AB+ AB-"`
	DateOfBirth     string `json:"dateOfBirth" form:"dateOfBirth" validate:"required,datetime=2006-01-02"`
}

var signupMessages = map[string]string{
	"fullName.required":        "Nom complet requis",
	"email.required":           "Email requis",
	"email.donor_email":        "Email invalide",
	"password.required":        "Mot de passe requis",
	"password.min":             "Minimum 6 caractères",
	"confirmPassword.required": "Confirmation requise",
	"confirmPassword.eqfield":  "Les mots de passe ne correspondent pas",
	"phone.required":           "Téléphone requis",
	"city.required":            "Ville requise",
	"bloodType.required":       "Groupe sanguin requis",
	"bloodType.oneof":          "Groupe sanguin invalide",
	"dateOfBirth.required":     "Date de naissance requise",
	"dateOfBirth.datetime":     "Date de naissance invalide",
}

func (f SignupForm) normalized() SignupForm {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.City = strings.TrimSpace(f.City)
	f.DateOfBirth = strings.TrimSpace(f.DateOfBirth)
	return f
}

// Validate returns FieldErrors with one message per invalid field, or nil.
func (f SignupForm) Validate() error {
	err := validate.Struct(f.normalized())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := FieldErrors{}
	for _, v := range verrs {
		if _, seen := fe[v.Field()]; seen {
			continue
		}
		msg, ok := signupMessages[v.Field()+"."+v.Tag()]
		if !ok {
			msg = "Valeur invalide"
		}
		fe[v.Field()] = msg
	}
	return fe
}
