package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var trackIdRegexp = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors lists every failed field of one struct.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Message)
	}

	return strings.Join(messages, "; ")
}

var messages = map[string]string{
	"required": "%s is required",
	"min":      "%s must be at least %s characters long",
	"max":      "%s must not exceed %s characters",
	"gte":      "%s must be greater than or equal to %s",
	"oneof":    "%s must be one of [%s]",
	"trackid":  "%s must contain only letters, digits, '-' and '_'",
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]

		if name == "-" {
			return ""
		}

		return name
	})
	v.RegisterValidation("trackid", func(fl validator.FieldLevel) bool {
		return trackIdRegexp.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

func message(err validator.FieldError) string {
	format, ok := messages[err.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid", err.Field())
	}

	if strings.Count(format, "%s") == 1 {
		return fmt.Sprintf(format, err.Field())
	}

	return fmt.Sprintf(format, err.Field(), err.Param())
}

// Validate checks i against its validate tags. The returned errors are keyed
// by json field names.
func (v *Validator) Validate(i any) (ValidationErrors, bool) {
	err := v.validate.Struct(i)
	if err == nil {
		return nil, true
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Code: "INVALID", Message: err.Error()}}, false
	}

	errors := make(ValidationErrors, 0, len(validationErrors))
	for _, err := range validationErrors {
		errors = append(errors, ValidationError{
			Field:   err.Field(),
			Code:    strings.ToUpper(err.Tag()),
			Message: message(err),
		})
	}

	return errors, false
}
