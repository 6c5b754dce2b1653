package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"insurai/shared/constant"
	"insurai/shared/failure"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

// ParseTimeOfDay accepts "HH:mm" and "HH:mm:ss".
func ParseTimeOfDay(value string) (time.Time, error) {
	parsed, err := time.Parse(constant.TimeOfDayFormat, value)
	if err == nil {
		return parsed, nil
	}

	return time.Parse(time.TimeOnly, value) //nolint:wrapcheck
}

// ParseLocalDateTime accepts "yyyy-MM-ddTHH:mm" and "yyyy-MM-ddTHH:mm:ss" in loc.
func ParseLocalDateTime(value string, loc *time.Location) (time.Time, error) {
	parsed, err := time.ParseInLocation(constant.LocalDateTime, value, loc)
	if err == nil {
		return parsed, nil
	}

	return time.ParseInLocation(constant.LocalDateTimeSecs, value, loc) //nolint:wrapcheck
}

func registerTimeOfDayValidation(field val.FieldLevel) bool {
	str, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := ParseTimeOfDay(str)

	return err == nil
}

func registerLocalDateTimeValidation(field val.FieldLevel) bool {
	str, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := ParseLocalDateTime(str, time.UTC)

	return err == nil
}

// jsonName reports fields by their wire name so messages match the request body.
func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	if name == "" {
		return field.Name
	}

	return name
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonName)

	if err := validate.RegisterValidation("timeofday", registerTimeOfDayValidation); err != nil {
		panic(err)
	}

	if err := validate.RegisterValidation("localdatetime", registerLocalDateTimeValidation); err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

