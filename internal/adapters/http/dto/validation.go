package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jsamuelsen/zapallo-backoffice/internal/adapters/http/web"
)

// tagParts is the number of parts kept when splitting a form or json tag by comma.
const tagParts = 2

// Validation errors.
var (
	// ErrValidation indicates a validation failure occurred.
	ErrValidation = errors.New("validation failed")

	// ErrBinding indicates form or query binding failed.
	ErrBinding = errors.New("binding failed")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the singleton validator. Field names in its errors are the
// form field names, which match the API's snake_case field names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(fieldName)

		_ = validate.RegisterValidation("uuid", validateUUID)
		_ = validate.RegisterValidation("notempty", validateNotEmpty)
	})

	return validate
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", tagParts)[0]
		if name == "-" {
			return ""
		}

		if name != "" {
			return name
		}
	}

	return fld.Name
}

// Validate validates a struct's tags.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindForm binds a submitted form into v and validates it.
func BindForm(c *gin.Context, v any) error {
	if err := c.ShouldBind(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// BindQuery binds query parameters into v and validates it.
func BindQuery(c *gin.Context, v any) error {
	if err := c.ShouldBindQuery(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// IsValidationError checks if the error carries validator field errors.
func IsValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs)
}

// ValidationErrors returns one message per failing field of form, keyed by
// form field name. Messages use the field's label tag, e.g. "Name is
// required"; a message tag replaces the message outright.
func ValidationErrors(err error, form any) map[string]string {
	fieldErrors := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fieldErrors
	}

	t := reflect.TypeOf(form)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	for _, fe := range validationErrs {
		var sf reflect.StructField
		if t != nil && t.Kind() == reflect.Struct {
			sf, _ = t.FieldByName(fe.StructField())
		}

		if _, done := fieldErrors[fe.Field()]; done {
			continue
		}

		fieldErrors[fe.Field()] = validationMessage(fe, sf)
	}

	return fieldErrors
}

// validationMessages maps validation tags to message templates. {label} is
// the field label and {param} the tag parameter.
var validationMessages = map[string]string{
	"required": "{label} is required",
	"notempty": "{label} is required",
	"uuid":     "{label} must be a valid UUID",
	"url":      "{label} must be a valid URL",
	"oneof":    "{label} must be one of: {param}",
}

func validationMessage(fe validator.FieldError, sf reflect.StructField) string {
	if msg := sf.Tag.Get("message"); msg != "" {
		return msg
	}

	label := sf.Tag.Get("label")
	if label == "" {
		label = web.Label(fe.Field())
	}

	tag := fe.Tag()
	param := fe.Param()

	var msg string

	switch tag {
	case "min", "max":
		msg = minMaxMessage(tag, fe.Type().Kind())
	default:
		var ok bool
		if msg, ok = validationMessages[tag]; !ok {
			msg = "{label} is invalid"
		}
	}

	return strings.NewReplacer("{label}", label, "{param}", param).Replace(msg)
}

// minMaxMessage returns the message for min/max, counting characters for strings.
func minMaxMessage(tag string, kind reflect.Kind) string {
	suffix := ""
	if kind == reflect.String {
		suffix = " characters"
	}

	if tag == "min" {
		return "{label} must be at least {param}" + suffix
	}

	return "{label} must be {param}" + suffix + " or less"
}

// validateUUID accepts an empty string; combine with required when needed.
func validateUUID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	return uuid.Validate(value) == nil
}

// validateNotEmpty requires at least one character. Whitespace-only values
// pass and are left for the API to judge.
func validateNotEmpty(fl validator.FieldLevel) bool {
	return fl.Field().Len() > 0
}
