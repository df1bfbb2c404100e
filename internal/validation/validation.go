// File: internal/validation/validation.go
package validation

import (
	"fmt"
	"html"
	"strings"

	"uniadmin-console/internal/models"
	"uniadmin-console/internal/nic"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate *validator.Validate
	policy   *bluemonday.Policy
)

func init() {
	validate = validator.New()

	// Register custom validators
	validate.RegisterValidation("nic", validateNIC)
	validate.RegisterValidation("role", oneOfFold(models.Roles))
	validate.RegisterValidation("location", oneOf(models.Locations))
	validate.RegisterValidation("faculty", oneOf(models.Faculties))
	validate.RegisterValidation("jobtype", oneOf(models.JobTypes))

	// StrictPolicy() strips all HTML tags.
	policy = bluemonday.StrictPolicy()
}

// ValidateStruct validates a struct and returns a user-friendly error message
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validation failed: %w", err)
	}

	var errorMessages []string
	for _, fe := range validationErrors {
		errorMessages = append(errorMessages, getErrorMessage(fe))
	}

	return fmt.Errorf("validation failed: %s", strings.Join(errorMessages, "; "))
}

// getErrorMessage returns a user-friendly error message for validation errors
func getErrorMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "nic":
		return fmt.Sprintf("%s must be a valid NIC number (e.g. 901234567V or 199012345678)", field)
	case "role":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(models.Roles, ", "))
	case "location":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(models.Locations, ", "))
	case "faculty":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(models.Faculties, ", "))
	case "jobtype":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(models.JobTypes, ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// validateNIC accepts either NIC format with a decodable birth date
func validateNIC(fl validator.FieldLevel) bool {
	return nic.Valid(fl.Field().String())
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if a == value {
				return true
			}
		}
		return false
	}
}

func oneOfFold(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := strings.TrimSpace(fl.Field().String())
		for _, a := range allowed {
			if strings.EqualFold(a, value) {
				return true
			}
		}
		return false
	}
}

// SanitizeString removes potentially dangerous characters from user input
func SanitizeString(input string) string {
	// Remove null bytes
	cleaned := strings.ReplaceAll(input, "\x00", "")

	// Sanitize using our strict allow-list policy
	// This will strip all HTML tags, leaving only the text.
	sanitized := policy.Sanitize(cleaned)

	// The policy entity-encodes what it keeps; values go to the backend as
	// plain text, not HTML.
	return strings.TrimSpace(html.UnescapeString(sanitized))
}
