// Package validation valida payloads y query strings con reglas declaradas en
// tags de struct (go-playground/validator). Tags propios:
//
//	hhmm        HH:MM en 24h
//	hexcolor6   #RRGGBB
//	dateordt    YYYY-MM-DD o fecha-hora RFC3339
//	datetime3339 fecha-hora RFC3339
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"pet-health-log/internal/platform/apperr"
	"pet-health-log/internal/platform/localtime"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// Get devuelve el validador compartido (cachea la metadata de structs).
func Get() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldName)

		mustRegister(v, "hhmm", func(fl validator.FieldLevel) bool {
			_, _, err := localtime.ParseClock(fl.Field().String())
			return err == nil
		})
		mustRegister(v, "hexcolor6", func(fl validator.FieldLevel) bool {
			return hexColorRe.MatchString(fl.Field().String())
		})
		mustRegister(v, "dateordt", func(fl validator.FieldLevel) bool {
			_, err := localtime.ParseDateOrDateTime(fl.Field().String())
			return err == nil
		})
		mustRegister(v, "datetime3339", func(fl validator.FieldLevel) bool {
			_, err := localtime.ParseDateTime(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// fieldName usa el nombre público (json o query) en los mensajes.
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "query"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// Body valida un payload ya decodificado. Errores => 400 bad_body.
func Body(v any) error {
	return run(v, "bad_body")
}

// Query valida parámetros de query ya bindeados. Errores => 400 bad_query.
func Query(v any) error {
	return run(v, "bad_query")
}

func run(v any, code string) error {
	err := Get().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Invalid(code, err.Error())
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{
			Field:   fieldPath(fe),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return apperr.Validation(code, fields)
}

// fieldPath quita el nombre del struct raíz: "createSessionRequest.times[2]" => "times[2]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	name := fieldPath(fe)
	switch fe.Tag() {
	case "required", "required_without", "required_without_all":
		return name + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "len":
		return fmt.Sprintf("%s must have exactly %s items", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	case "uuid", "uuid4":
		return name + " must be a valid UUID"
	case "email":
		return name + " must be a valid email"
	case "datetime":
		return name + " must be YYYY-MM-DD"
	case "hhmm":
		return name + " must be HH:MM"
	case "hexcolor6":
		return name + " must be #RRGGBB"
	case "dateordt":
		return name + " must be a date or datetime"
	case "datetime3339":
		return name + " must be an ISO datetime"
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}
