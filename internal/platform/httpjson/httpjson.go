// Package httpjson agrupa la escritura/lectura JSON de los handlers.
// Antes vivía duplicado como writeJSON en cada módulo.
package httpjson

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"pet-health-log/internal/platform/apperr"
	"pet-health-log/internal/platform/validation"
)

// maxBody limita el tamaño de los payloads aceptados.
const maxBody = 1 << 20

// ErrorBody es el cuerpo de toda respuesta de error.
type ErrorBody struct {
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Fields  []apperr.FieldError `json:"fields,omitempty"`
}

func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode lee el body en v. Body vacío o JSON inválido => bad_body.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("bad_body", "empty body")
		}
		return apperr.Invalid("bad_body", "invalid json")
	}
	return nil
}

// Bind decodifica y valida el body.
func Bind(r *http.Request, v any) error {
	if err := Decode(r, v); err != nil {
		return err
	}
	return validation.Body(v)
}

// BindQuery lee y valida la query string.
func BindQuery(r *http.Request, v any) error {
	if err := validation.BindQuery(r.URL.Query(), v); err != nil {
		return err
	}
	return validation.Query(v)
}

// Error escribe el error con el status que le corresponde.
// Los 500 no exponen el mensaje interno.
func Error(w http.ResponseWriter, err error) {
	status, e := apperr.Status(err)
	if status == http.StatusInternalServerError {
		Write(w, status, ErrorBody{Error: e.Code})
		return
	}
	if len(e.Extra) > 0 {
		body := map[string]any{"error": e.Code}
		for k, v := range e.Extra {
			body[k] = v
		}
		Write(w, status, body)
		return
	}
	Write(w, status, ErrorBody{Error: e.Code, Message: e.Message, Fields: e.Fields})
}
