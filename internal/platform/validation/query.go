package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/zitadel/schema"

	"pet-health-log/internal/platform/apperr"
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag("query")
	d.IgnoreUnknownKeys(true)
	// listas como CSV: kinds=birthdays,vaccines
	d.RegisterConverter([]string{}, func(raw string) reflect.Value {
		out := []string{}
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return reflect.ValueOf(out)
	})
	return d
}

// BindQuery copia los parámetros de query en dst (puntero a struct) usando el
// tag `query`. Parámetros vacíos se ignoran; un valor que no convierte al tipo
// del campo es un bad_query.
func BindQuery(values url.Values, dst any) error {
	src := make(map[string][]string, len(values))
	for k, vs := range values {
		for _, v := range vs {
			if v = strings.TrimSpace(v); v != "" {
				src[k] = append(src[k], v)
			}
		}
	}

	err := queryDecoder.Decode(dst, src)
	if err == nil {
		return nil
	}

	var multi schema.MultiError
	if !errors.As(err, &multi) {
		return fmt.Errorf("validation: bind query: %w", err)
	}
	keys := make([]string, 0, len(multi))
	for k := range multi {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]apperr.FieldError, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, apperr.FieldError{
			Field:   k,
			Tag:     "type",
			Message: k + ": invalid value",
		})
	}
	return apperr.Validation("bad_query", fields)
}
