package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// difficulties are the names accepted by the "difficulty" tag.
var difficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("difficulty", isDifficulty); err != nil {
		panic(err)
	}
}

func isDifficulty(fl validator.FieldLevel) bool {
	return difficulties[strings.ToLower(fl.Field().String())]
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	return validate
}
