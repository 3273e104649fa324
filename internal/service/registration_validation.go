package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/church-events-api/internal/dto"
	appErrors "github.com/noah-isme/church-events-api/pkg/errors"
)

var simpleEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NewValidator returns a validator with the custom rules used by the public
// forms. Field names in errors come from the label tag, then the json tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return simpleEmailPattern.MatchString(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParticipantLimits bounds the number of named participants in a group.
type ParticipantLimits struct {
	Min int
	Max int
}

// RegistrationValidator checks quiz submissions. It has no side effects.
type RegistrationValidator struct {
	validator *validator.Validate
	limits    ParticipantLimits
}

// NewRegistrationValidator constructs a validator. Zero limits fall back to 2..8.
func NewRegistrationValidator(validate *validator.Validate, limits ParticipantLimits) *RegistrationValidator {
	if validate == nil {
		validate = NewValidator()
	}
	if limits.Min <= 0 {
		limits.Min = 2
	}
	if limits.Max < limits.Min {
		limits.Max = 8
	}
	return &RegistrationValidator{validator: validate, limits: limits}
}

// Validate normalizes req in place and reports the first problem found.
// Scalars are checked in form order before participants.
func (v *RegistrationValidator) Validate(req *dto.QuizRegistrationRequest) error {
	req.Normalize()

	if err := v.validator.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, FirstValidationMessage(err))
	}

	switch n := len(req.Participants); {
	case n < v.limits.Min:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("At least %d participants are required", v.limits.Min))
	case n > v.limits.Max:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("A maximum of %d participants is allowed", v.limits.Max))
	}
	return nil
}

// FirstValidationMessage turns the first field error into a sentence a
// form user can act on.
func FirstValidationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Invalid request"
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "simple_email", "email":
		return "Please enter a valid email address"
	case "len":
		return fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "numeric":
		return fe.Field() + " must contain digits only"
	default:
		return fe.Field() + " is invalid"
	}
}
