package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Privacy level validation
	validate.RegisterValidation("privacy_level", func(fl validator.FieldLevel) bool {
		level := fl.Field().String()
		validLevels := []string{"Public", "Private", "MatchOnly", ""}
		for _, l := range validLevels {
			if level == l {
				return true
			}
		}
		return false
	})

	// Moderation status validation
	validate.RegisterValidation("moderation_status", func(fl validator.FieldLevel) bool {
		status := fl.Field().String()
		validStatuses := []string{"approved", "pending", "flagged", "rejected"}
		for _, s := range validStatuses {
			if status == s {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "privacy_level":
			errors[field] = "Invalid privacy level. Must be: Public, Private, or MatchOnly"
		case "moderation_status":
			errors[field] = "Invalid moderation status. Must be: approved, pending, flagged, or rejected"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
