package validation

import (
	"time"

	"pet-health-log/internal/platform/apperr"
)

// Time parsea un campo de fecha/hora. El tag ya lo validó, pero si el parser
// no coincide con el tag el error sale igual como 400 con el código dado
// (bad_body o bad_query).
func Time(code, field, raw string, parse func(string) (time.Time, error)) (time.Time, error) {
	t, err := parse(raw)
	if err != nil {
		return time.Time{}, apperr.Validation(code, []apperr.FieldError{{
			Field:   field,
			Tag:     "format",
			Message: err.Error(),
		}})
	}
	return t, nil
}
