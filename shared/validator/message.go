package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

const dateOnlyParam = "2006-01-02"

var messages = map[string]string{
	"required":      "{field} is required",
	"max":           "{field} must be at most {param} characters",
	"oneof":         "{field} must be one of {param}",
	"uuid":          "{field} must be a valid uuid",
	"datetime":      "{field} must match the format {param}",
	"timeofday":     "{field} must be a time of day (HH:mm)",
	"localdatetime": "{field} must be a local date-time (yyyy-MM-ddTHH:mm)",
}

// message renders the first failed rule of err as a client-facing sentence.
func message(err error) string {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) || len(valErrors) == 0 {
		return err.Error()
	}

	first := valErrors[0]

	if first.Tag() == "datetime" && first.Param() == dateOnlyParam {
		return first.Field() + " must be a date (yyyy-MM-dd)"
	}

	template, ok := messages[first.Tag()]
	if !ok {
		return first.Error()
	}

	return strings.NewReplacer("{field}", first.Field(), "{param}", first.Param()).Replace(template)
}
