package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate reports field names by their json tag.
var Validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}()

var tagMessages = map[string]string{
	"required":  "Champ requis",
	"email":     "Email invalide",
	"oneof":     "Valeur non autorisée",
	"datetime":  "Date invalide",
	"latitude":  "Latitude invalide",
	"longitude": "Longitude invalide",
	"gte":       "Valeur trop petite",
}

// ValidationFields turns validator errors into field messages. It returns nil for any
// other error.
func ValidationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = "Valeur invalide"
		}
		out[fe.Field()] = msg
	}
	return out
}
