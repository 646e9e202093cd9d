package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrorResponse represents a validation error with field-level details
type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// fieldLabels names request fields the way the onboarding and profile forms do
var fieldLabels = map[string]string{
	"email":          "Email",
	"password":       "Password",
	"newPassword":    "New password",
	"token":          "Token",
	"username":       "Username",
	"linkedin_url":   "LinkedIn URL",
	"skills":         "Skill",
	"certifications": "Certification",
	"role":           "Role",
	"id":             "Candidate id",
}

// validate reports fields by their JSON names so messages match the request body
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRequest validates a request DTO and returns the first failure as a readable sentence
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		first := toValidationError(ve[0])
		return fmt.Errorf("%s %s", first.Field, first.Message)
	}
	return fmt.Errorf("invalid request: %w", err)
}

func toValidationError(fe validator.FieldError) ValidationErrorResponse {
	return ValidationErrorResponse{
		Field:   fieldLabel(fe.Field()),
		Message: formatValidationError(fe),
	}
}

// fieldLabel maps "skills[2]" to "Skill" and unknown names to themselves
func fieldLabel(field string) string {
	name, _, _ := strings.Cut(field, "[")
	if label, ok := fieldLabels[name]; ok {
		return label
	}
	return name
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		if fe.Field() == "password" || fe.Field() == "newPassword" {
			return fmt.Sprintf("must be at most %s bytes", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("is invalid (%s)", fe.Tag())
	}
}
