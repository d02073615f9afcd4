package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "careerlens/internal/errors"
	"careerlens/internal/schema"
)

// RequestValidator validates decoded request DTOs by their struct tags.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator registers the custom tags used by the API contracts:
//
//	view        a known analysis view name
//	exportfmt   csv, xlsx or json
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("view", func(fl validator.FieldLevel) bool {
		_, ok := schema.Lookup(fl.Field().String())
		return ok
	})
	v.RegisterValidation("exportfmt", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "csv", "xlsx", "json":
			return true
		}
		return false
	})

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestValidator{validate: v}
}

// Struct validates v and converts failures into a 400 APIError listing
// every offending field.
func (rv *RequestValidator) Struct(v any) error {
	err := rv.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fieldPath(fe),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(out)
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatValidationError(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, param)
	case "view":
		return fmt.Sprintf("%s must be a known view", field)
	case "exportfmt":
		return fmt.Sprintf("%s must be csv, xlsx or json", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
