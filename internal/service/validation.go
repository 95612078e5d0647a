package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const msgAllFieldsRequired = "All fields are required"

// Aturan field mengikuti model data; nil berarti field tidak dikirim.
type userRules struct {
	Username *string `validate:"omitnil,min=5,max=20"`
	Email    *string `validate:"omitnil,email"`
	Password *string `validate:"omitnil,min=8"`
}

type taskRules struct {
	Title       *string `validate:"omitnil,min=10,max=50"`
	Description *string `validate:"omitnil,min=10,max=200"`
}

var fieldLabels = map[string]string{
	"Username":    "Username",
	"Email":       "Email",
	"Password":    "Password",
	"Title":       "Task title",
	"Description": "Task description",
}

// NewValidator returns the validator shared by the services.
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// check runs v over rules and turns the first failure into a validation error.
func check(v *validator.Validate, rules any) error {
	err := v.Struct(rules)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return internalError(err)
	}
	return validationError(fieldMessage(verrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.StructField()]
	if !ok {
		label = fe.StructField()
	}
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", label, fe.Param())
	case "email":
		return "Please provide a valid email address"
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDueDate accepts RFC3339 and the shorter forms browser date inputs
// send. Zone-less values are read as UTC. An empty string means no due date.
func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, validationError("Invalid due date")
}
