// Package apidocs arma el documento OpenAPI (swagger 2.0) de la API. El
// documento se construye una vez al arrancar y se sirve en /openapi.json.
package apidocs

import (
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-openapi/spec"
	"github.com/goccy/go-json"
	"github.com/swaggo/swag"

	"pet-health-log/internal/domain/alerts"
	"pet-health-log/internal/domain/conditions"
	"pet-health-log/internal/domain/glycemia"
	"pet-health-log/internal/domain/lab"
	"pet-health-log/internal/domain/pets"
	"pet-health-log/internal/domain/settings"
	"pet-health-log/internal/domain/treatments"
	"pet-health-log/internal/domain/vaccines"
	"pet-health-log/internal/domain/vetvisits"
	"pet-health-log/internal/platform/httpjson"
)

const Title = "pet-health-log API"

type route struct {
	method  string
	path    string
	tag     string
	summary string
	query   []string
	body    bool
	// out es un valor de ejemplo del cuerpo de respuesta (struct o slice) o un
	// *spec.Schema armado a mano.
	out    any
	status int // default: 201 en POST, 200 en el resto
}

func created() *spec.Schema {
	return new(spec.Schema).Typed("object", "").SetProperty("id", *spec.StringProperty()).WithRequired("id")
}

func flag(name string) *spec.Schema {
	return new(spec.Schema).Typed("object", "").SetProperty(name, *spec.BoolProperty()).WithRequired(name)
}

var routes = []route{
	{method: http.MethodGet, path: "/health", tag: "system", summary: "Estado del servicio", out: new(spec.Schema).Typed("object", "").SetProperty("ok", *spec.BoolProperty()).SetProperty("time", *spec.DateTimeProperty())},

	{method: http.MethodGet, path: "/pets", tag: "pets", summary: "Listar mascotas", query: []string{"q", "species", "gender", "sortBy", "sortDir", "limit", "offset"}, out: []pets.PetResponse{}},
	{method: http.MethodPost, path: "/pets", tag: "pets", summary: "Crear mascota", body: true, out: created()},
	{method: http.MethodGet, path: "/pets/{petID}", tag: "pets", summary: "Obtener mascota", out: pets.PetResponse{}},
	{method: http.MethodPut, path: "/pets/{petID}", tag: "pets", summary: "Actualizar mascota", body: true, out: flag("updated")},
	{method: http.MethodDelete, path: "/pets/{petID}", tag: "pets", summary: "Borrar mascota y su historial", out: flag("deleted")},
	{method: http.MethodGet, path: "/pets/{petID}/weights", tag: "pets", summary: "Listar pesos", query: []string{"limit", "offset"}, out: []pets.WeightResponse{}},
	{method: http.MethodPost, path: "/pets/{petID}/weights", tag: "pets", summary: "Registrar peso", body: true, out: created()},

	{method: http.MethodGet, path: "/glycemia/sessions", tag: "glycemia", summary: "Listar curvas de glucemia", query: []string{"petId", "limit", "offset"}, out: []glycemia.SessionResponse{}},
	{method: http.MethodPost, path: "/glycemia/sessions", tag: "glycemia", summary: "Crear curva con cinco controles", body: true, out: created()},
	{method: http.MethodGet, path: "/glycemia/sessions/{sessionID}", tag: "glycemia", summary: "Obtener curva con puntos", out: glycemia.DetailResponse{}},
	{method: http.MethodPut, path: "/glycemia/sessions/{sessionID}", tag: "glycemia", summary: "Actualizar curva", body: true, out: flag("updated")},
	{method: http.MethodDelete, path: "/glycemia/sessions/{sessionID}", tag: "glycemia", summary: "Borrar curva", out: glycemia.DeleteResponse{}},
	{method: http.MethodPut, path: "/glycemia/sessions/{sessionID}/points/{idx}", tag: "glycemia", summary: "Registrar control", body: true, out: flag("updated")},
	{method: http.MethodPut, path: "/glycemia/sessions/{sessionID}/points/{idx}/expected", tag: "glycemia", summary: "Reprogramar control", body: true, out: flag("updated")},

	{method: http.MethodGet, path: "/lab/test-types", tag: "lab", summary: "Listar tipos de análisis", query: []string{"q", "species"}, out: []lab.TestTypeResponse{}},
	{method: http.MethodPost, path: "/lab/test-types", tag: "lab", summary: "Crear tipo de análisis", body: true, out: created()},
	{method: http.MethodPut, path: "/lab/test-types/{typeID}", tag: "lab", summary: "Actualizar tipo de análisis", body: true, out: lab.TestTypeResponse{}},
	{method: http.MethodGet, path: "/lab/results", tag: "lab", summary: "Listar resultados", query: []string{"petId", "limit", "offset"}, out: []lab.ResultResponse{}},
	{method: http.MethodPost, path: "/lab/results", tag: "lab", summary: "Cargar resultado", body: true, out: created()},

	{method: http.MethodGet, path: "/vaccines/types", tag: "vaccines", summary: "Listar vacunas", query: []string{"q", "species"}, out: []vaccines.TypeResponse{}},
	{method: http.MethodPost, path: "/vaccines/types", tag: "vaccines", summary: "Crear vacuna", body: true, out: created()},
	{method: http.MethodPut, path: "/vaccines/types/{typeID}", tag: "vaccines", summary: "Actualizar vacuna", body: true, out: vaccines.TypeResponse{}},
	{method: http.MethodGet, path: "/vaccines/applications", tag: "vaccines", summary: "Listar aplicaciones", query: []string{"petId", "limit", "offset"}, out: []vaccines.ApplicationResponse{}},
	{method: http.MethodPost, path: "/vaccines/applications", tag: "vaccines", summary: "Registrar aplicación", body: true, out: created()},
	{method: http.MethodGet, path: "/vaccines/due", tag: "vaccines", summary: "Próximas dosis", query: []string{"petId", "from", "to", "includeOverdue", "offsetMinutes", "limit", "offset"}, out: []vaccines.DueResponse{}},

	{method: http.MethodGet, path: "/treatments", tag: "treatments", summary: "Listar tratamientos", query: []string{"petId"}, out: []treatments.Response{}},
	{method: http.MethodPost, path: "/treatments", tag: "treatments", summary: "Registrar tratamiento", body: true, out: created()},
	{method: http.MethodGet, path: "/treatments/{treatmentID}", tag: "treatments", summary: "Obtener tratamiento", out: treatments.Response{}},

	{method: http.MethodGet, path: "/vet-visits", tag: "vet-visits", summary: "Listar consultas", query: []string{"petId"}, out: []vetvisits.Response{}},
	{method: http.MethodPost, path: "/vet-visits", tag: "vet-visits", summary: "Registrar consulta con vacunas y pedidos", body: true, out: created()},
	{method: http.MethodGet, path: "/vet-visits/{visitID}", tag: "vet-visits", summary: "Detalle de consulta", out: vetvisits.DetailResponse{}},
	{method: http.MethodPut, path: "/vet-visits/{visitID}", tag: "vet-visits", summary: "Actualizar consulta", body: true, out: flag("updated")},

	{method: http.MethodGet, path: "/pets/{petID}/conditions", tag: "conditions", summary: "Listar condiciones", out: []conditions.Response{}},
	{method: http.MethodPost, path: "/pets/{petID}/conditions", tag: "conditions", summary: "Registrar condición", body: true, out: conditions.Response{}},
	{method: http.MethodGet, path: "/conditions/{conditionID}", tag: "conditions", summary: "Obtener condición", out: conditions.Response{}},
	{method: http.MethodPut, path: "/conditions/{conditionID}", tag: "conditions", summary: "Actualizar condición", body: true, out: conditions.Response{}},
	{method: http.MethodDelete, path: "/conditions/{conditionID}", tag: "conditions", summary: "Borrar condición", out: flag("deleted")},
	{method: http.MethodGet, path: "/conditions/{conditionID}/lab-types", tag: "conditions", summary: "Tipos de análisis vinculados", out: []lab.TestTypeResponse{}},
	{method: http.MethodPost, path: "/conditions/{conditionID}/lab-types", tag: "conditions", summary: "Vincular tipo de análisis", body: true, out: flag("linked"), status: http.StatusOK},
	{method: http.MethodDelete, path: "/conditions/{conditionID}/lab-types/{targetID}", tag: "conditions", summary: "Desvincular tipo de análisis", out: flag("unlinked")},
	{method: http.MethodGet, path: "/conditions/{conditionID}/lab-results", tag: "conditions", summary: "Resultados vinculados", out: []lab.ResultResponse{}},
	{method: http.MethodPost, path: "/conditions/{conditionID}/lab-results", tag: "conditions", summary: "Vincular resultado", body: true, out: flag("linked"), status: http.StatusOK},
	{method: http.MethodDelete, path: "/conditions/{conditionID}/lab-results/{targetID}", tag: "conditions", summary: "Desvincular resultado", out: flag("unlinked")},
	{method: http.MethodGet, path: "/conditions/{conditionID}/treatments", tag: "conditions", summary: "Tratamientos vinculados", out: []treatments.Response{}},
	{method: http.MethodPost, path: "/conditions/{conditionID}/treatments/{targetID}", tag: "conditions", summary: "Vincular tratamiento", out: flag("linked"), status: http.StatusOK},
	{method: http.MethodDelete, path: "/conditions/{conditionID}/treatments/{targetID}", tag: "conditions", summary: "Desvincular tratamiento", out: flag("unlinked")},
	{method: http.MethodGet, path: "/conditions/{conditionID}/notes", tag: "conditions", summary: "Listar notas", out: []conditions.NoteResponse{}},
	{method: http.MethodPost, path: "/conditions/{conditionID}/notes", tag: "conditions", summary: "Agregar nota", body: true, out: conditions.NoteResponse{}},
	{method: http.MethodPut, path: "/condition-notes/{noteID}", tag: "conditions", summary: "Editar nota", body: true, out: conditions.NoteResponse{}},
	{method: http.MethodDelete, path: "/condition-notes/{noteID}", tag: "conditions", summary: "Borrar nota", out: flag("deleted")},

	{method: http.MethodGet, path: "/alerts/due", tag: "alerts", summary: "Feed de vencimientos", query: []string{"days", "minutes", "offsetMinutes", "petId", "kinds"}, out: alerts.DueResponse{}},

	{method: http.MethodGet, path: "/settings/me", tag: "settings", summary: "Preferencias del usuario", out: settings.Response{}},
	{method: http.MethodPut, path: "/settings/me", tag: "settings", summary: "Actualizar preferencias", body: true, out: settings.Response{}},
}

var pathParam = regexp.MustCompile(`\{([^}]+)\}`)

// integerParams son los query params numéricos; el resto viaja como string.
var integerParams = map[string]bool{
	"limit": true, "offset": true, "days": true, "minutes": true, "offsetMinutes": true, "idx": true,
}

func operationID(rt route) string {
	id := strings.ToLower(rt.method)
	for _, part := range strings.Split(strings.Trim(rt.path, "/"), "/") {
		part = strings.Trim(part, "{}")
		if part == "" {
			continue
		}
		id += strings.ToUpper(part[:1]) + strings.ReplaceAll(part[1:], "-", "")
	}
	return id
}

func param(p *spec.Parameter, name string) *spec.Parameter {
	if integerParams[name] {
		return p.Typed("integer", "int32")
	}
	return p.Typed("string", "")
}

// Build arma el documento completo a partir de la tabla de rutas. Las
// respuestas apuntan a definitions generadas de los structs de cada handler.
func Build() *spec.Swagger {
	defs := definitions{}
	errRef := defs.schemaOf(reflect.TypeOf(httpjson.ErrorBody{}))

	doc := &spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Swagger:  "2.0",
			Consumes: []string{"application/json"},
			Produces: []string{"application/json"},
			Info: &spec.Info{InfoProps: spec.InfoProps{
				Title:       Title,
				Version:     "1.0",
				Description: "Historia clínica y alertas de vencimiento para mascotas.",
			}},
			Paths: &spec.Paths{Paths: make(map[string]spec.PathItem)},
		},
	}

	for _, rt := range routes {
		status := rt.status
		if status == 0 {
			status = http.StatusOK
			if rt.method == http.MethodPost {
				status = http.StatusCreated
			}
		}

		op := spec.NewOperation(operationID(rt)).
			WithSummary(rt.summary).
			WithTags(rt.tag).
			RespondsWith(status, spec.NewResponse().
				WithDescription(http.StatusText(status)).
				WithSchema(responseSchema(defs, rt.out))).
			RespondsWith(http.StatusInternalServerError, errorResponse(errRef, "db_error"))

		for _, m := range pathParam.FindAllStringSubmatch(rt.path, -1) {
			op.AddParam(param(spec.PathParam(m[1]), m[1]))
		}
		for _, q := range rt.query {
			op.AddParam(param(spec.QueryParam(q), q))
		}
		if len(rt.query) > 0 {
			op.RespondsWith(http.StatusBadRequest, errorResponse(errRef, "bad_query"))
		}
		if rt.body {
			op.AddParam(spec.BodyParam("body", new(spec.Schema).Typed("object", "")).AsRequired())
			op.RespondsWith(http.StatusBadRequest, errorResponse(errRef, "bad_body"))
		}
		if rt.method != http.MethodGet || strings.Contains(rt.path, "{") {
			op.RespondsWith(http.StatusNotFound, errorResponse(errRef, "not_found"))
		}

		item := doc.Paths.Paths[rt.path]
		switch rt.method {
		case http.MethodGet:
			item.Get = op
		case http.MethodPost:
			item.Post = op
		case http.MethodPut:
			item.Put = op
		case http.MethodDelete:
			item.Delete = op
		}
		doc.Paths.Paths[rt.path] = item
	}

	doc.Definitions = spec.Definitions(defs)
	return doc
}

func responseSchema(defs definitions, out any) *spec.Schema {
	if s, ok := out.(*spec.Schema); ok {
		return s
	}
	return defs.schemaOf(reflect.TypeOf(out))
}

func errorResponse(ref *spec.Schema, code string) *spec.Response {
	return spec.NewResponse().WithDescription(code).WithSchema(ref)
}

// Doc es el documento ya serializado. Se arma una vez al arrancar y se
// inyecta en el router.
type Doc struct {
	swagger *spec.Swagger
	raw     []byte
}

func New() (*Doc, error) {
	sw := Build()
	raw, err := json.Marshal(sw)
	if err != nil {
		return nil, fmt.Errorf("apidocs: marshal: %w", err)
	}
	return &Doc{swagger: sw, raw: raw}, nil
}

func (d *Doc) Swagger() *spec.Swagger { return d.swagger }

// ReadDoc implementa swag.Swagger.
func (d *Doc) ReadDoc() string { return string(d.raw) }

// Handler sirve el documento en JSON.
func (d *Doc) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(d.raw)
	}
}

// Register publica el documento en el registro de swag (lo lee /docs/doc.json).
// swag no permite registrar dos veces el mismo nombre.
func Register(name string, d *Doc) error {
	if swag.GetSwagger(name) != nil {
		return fmt.Errorf("apidocs: swagger %q already registered", name)
	}
	swag.Register(name, d)
	return nil
}
