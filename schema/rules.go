package schema

import (
	"math"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Field keys for errors that span several fields.
const (
	FieldAvailability = "availability"
	FieldMedia        = "media"
)

const (
	MsgAvailability = "Must be available for either sale or rent"
	MsgPriceMissing = "Enter a price for sale or rent"
	MsgMediaMissing = "At least one image is required"
	MsgNotANumber   = "Must be a number"
)

const maxOthersLength = 500

func parseNumber(v any) (float64, bool, bool) {
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, true, false
	}
	return f, true, true
}

// positiveNumber accepts empty values so Required decides presence.
func positiveNumber(message string) validation.Rule {
	return validation.By(func(v any) error {
		f, present, ok := parseNumber(v)
		if !present {
			return nil
		}
		if !ok {
			return validation.NewError("validation_not_a_number", MsgNotANumber)
		}
		if f <= 0 {
			return validation.NewError("validation_not_positive", message)
		}
		return nil
	})
}

func positiveInteger(message string) validation.Rule {
	return validation.By(func(v any) error {
		f, present, ok := parseNumber(v)
		if !present {
			return nil
		}
		if !ok {
			return validation.NewError("validation_not_a_number", MsgNotANumber)
		}
		if f <= 0 || f != math.Trunc(f) {
			return validation.NewError("validation_not_positive_integer", message)
		}
		return nil
	})
}

func integerBetween(min, max int, message string) validation.Rule {
	return validation.By(func(v any) error {
		f, present, ok := parseNumber(v)
		if !present {
			return nil
		}
		if !ok {
			return validation.NewError("validation_not_a_number", MsgNotANumber)
		}
		if f != math.Trunc(f) || f < float64(min) || f > float64(max) {
			return validation.NewError("validation_out_of_range", message)
		}
		return nil
	})
}

// hasPositive reports whether a numeric string is a number above zero.
func hasPositive(s string) bool {
	f, present, ok := parseNumber(s)
	return present && ok && f > 0
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

func coordinateRules(lat, lng *float64) validation.Errors {
	return validation.Errors{
		"latitude": validation.Validate(lat,
			validation.Min(-90.0).Error("Latitude must be between -90 and 90"),
			validation.Max(90.0).Error("Latitude must be between -90 and 90"),
		),
		"longitude": validation.Validate(lng,
			validation.Min(-180.0).Error("Longitude must be between -180 and 180"),
			validation.Max(180.0).Error("Longitude must be between -180 and 180"),
		),
	}
}

func mediaRule(count int) validation.Errors {
	if count >= 1 {
		return nil
	}
	return validation.Errors{FieldMedia: validation.NewError("validation_media_required", MsgMediaMissing)}
}
