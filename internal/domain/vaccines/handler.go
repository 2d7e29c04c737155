package vaccines

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-health-log/internal/platform/httpjson"
	"pet-health-log/internal/platform/localtime"
	"pet-health-log/internal/platform/validation"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/vaccines/types", listTypesHandler(svc))
	r.Post("/vaccines/types", createTypeHandler(svc))
	r.Put("/vaccines/types/{typeID}", updateTypeHandler(svc))

	r.Get("/vaccines/applications", listApplicationsHandler(svc))
	r.Post("/vaccines/applications", createApplicationHandler(svc))

	r.Get("/vaccines/due", dueHandler(svc))
}

// typeRequest acepta total_doses y totalDoses; gana total_doses.
type typeRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=100"`
	Species         *string `json:"species" validate:"omitempty,oneof=dog cat other"`
	TotalDosesSnake *int    `json:"total_doses" validate:"omitempty,min=1,max=12"`
	TotalDoses      *int    `json:"totalDoses" validate:"omitempty,min=1,max=12"`
	Description     *string `json:"description" validate:"omitempty,max=1000"`
	Brand           *string `json:"brand" validate:"omitempty,max=100"`
	Notes           *string `json:"notes" validate:"omitempty,max=1000"`
}

func (r typeRequest) input() TypeInput {
	doses := r.TotalDosesSnake
	if doses == nil {
		doses = r.TotalDoses
	}
	return TypeInput{
		Name:        r.Name,
		Species:     r.Species,
		TotalDoses:  doses,
		Description: r.Description,
		Brand:       r.Brand,
		Notes:       r.Notes,
	}
}

type applicationRequest struct {
	PetID          string  `json:"petId" validate:"required"`
	VaccineTypeID  string  `json:"vaccineTypeId" validate:"required"`
	DoseNumber     int     `json:"doseNumber" validate:"required,min=1"`
	AdministeredAt string  `json:"administeredAt" validate:"required,dateordt"`
	AdministeredBy *string `json:"administeredBy" validate:"omitempty,max=200"`
	Clinic         *string `json:"clinic" validate:"omitempty,max=200"`
	NextDoseAt     *string `json:"nextDoseAt" validate:"omitempty,dateordt"`
	Notes          *string `json:"notes" validate:"omitempty,max=1000"`
	Brand          *string `json:"brand" validate:"omitempty,max=100"`
}

type typesQuery struct {
	Q       string `query:"q" validate:"max=100"`
	Species string `query:"species" validate:"omitempty,oneof=dog cat other"`
}

type applicationsQuery struct {
	PetID  string `query:"petId"`
	Limit  int    `query:"limit" validate:"min=0,max=200"`
	Offset int    `query:"offset" validate:"min=0"`
}

type dueQuery struct {
	PetID          string `query:"petId" validate:"omitempty,uuid"`
	From           string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To             string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	IncludeOverdue *bool  `query:"includeOverdue"`
	OffsetMinutes  *int   `query:"offsetMinutes" validate:"omitempty,min=-720,max=840"`
	Limit          int    `query:"limit" validate:"min=0,max=500"`
	Offset         int    `query:"offset" validate:"min=0"`
}

type TypeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	TotalDoses  int       `json:"total_doses"`
	Description string    `json:"description"`
	Brand       string    `json:"brand"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ApplicationResponse struct {
	ID             string     `json:"id"`
	PetID          string     `json:"pet_id"`
	VaccineTypeID  string     `json:"vaccine_type_id"`
	DoseNumber     int        `json:"dose_number"`
	AdministeredAt time.Time  `json:"administered_at"`
	AdministeredBy string     `json:"administered_by"`
	Clinic         string     `json:"clinic"`
	NextDoseAt     *time.Time `json:"next_dose_at"`
	Notes          string     `json:"notes"`
	Brand          string     `json:"brand"`
	VetVisitID     string     `json:"vet_visit_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type DueResponse struct {
	ApplicationID  string    `json:"application_id"`
	PetID          string    `json:"pet_id"`
	PetName        string    `json:"pet_name"`
	VaccineTypeID  string    `json:"vaccine_type_id"`
	VaccineName    string    `json:"vaccine_name"`
	DoseNumber     int       `json:"dose_number"`
	AdministeredAt time.Time `json:"administered_at"`
	NextDoseAt     time.Time `json:"next_dose_at"`
	Overdue        bool      `json:"overdue"`
}

func listTypesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q typesQuery
		if err := httpjson.BindQuery(r, &q); err != nil {
			httpjson.Error(w, err)
			return
		}
		items, err := svc.ListTypes(r.Context(), TypeFilter{Query: q.Q, Species: q.Species})
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		out := make([]TypeResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toTypeResponse(t))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

// createTypeHandler godoc
// @Summary Crear vacuna en el catálogo
// @Tags vaccines
// @Accept json
// @Produce json
// @Param payload body typeRequest true "name y total_doses obligatorios"
// @Success 201 {object} map[string]string "{id}"
// @Failure 409 {object} map[string]string "duplicate_name_brand"
// @Router /vaccines/types [post]
func createTypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req typeRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}
		t, err := svc.CreateType(r.Context(), req.input())
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusCreated, map[string]string{"id": t.ID})
	}
}

func updateTypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req typeRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}
		t, err := svc.UpdateType(r.Context(), chi.URLParam(r, "typeID"), req.input())
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, toTypeResponse(t))
	}
}

func listApplicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q applicationsQuery
		if err := httpjson.BindQuery(r, &q); err != nil {
			httpjson.Error(w, err)
			return
		}
		items, err := svc.ListApplications(r.Context(), q.PetID, q.Limit, q.Offset)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		out := make([]ApplicationResponse, 0, len(items))
		for _, a := range items {
			out = append(out, ToApplicationResponse(a))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

// createApplicationHandler godoc
// @Summary Registrar dosis aplicada
// @Description administeredAt y nextDoseAt aceptan fecha o fecha-hora.
// @Tags vaccines
// @Accept json
// @Produce json
// @Param payload body applicationRequest true "Aplicación"
// @Success 201 {object} map[string]string "{id}"
// @Failure 404 {object} map[string]string "not_found (mascota o vacuna)"
// @Router /vaccines/applications [post]
func createApplicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req applicationRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}
		in, err := req.input()
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		a, err := svc.CreateApplication(r.Context(), in)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusCreated, map[string]string{"id": a.ID})
	}
}

// dueHandler godoc
// @Summary Próximas dosis y vencidas
// @Description Toma la última aplicación de cada par mascota/vacuna. Vencida = next_dose_at antes de hoy (hora local); próxima = dentro de [from, to].
// @Tags vaccines
// @Produce json
// @Param petId query string false "ID de la mascota"
// @Param from query string false "YYYY-MM-DD, default hoy"
// @Param to query string false "YYYY-MM-DD, default from + 30 días"
// @Param includeOverdue query bool false "default true"
// @Param offsetMinutes query int false "default -180"
// @Param limit query int false "default 100"
// @Param offset query int false "default 0"
// @Success 200 {array} DueResponse
// @Router /vaccines/due [get]
func dueHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q dueQuery
		if err := httpjson.BindQuery(r, &q); err != nil {
			httpjson.Error(w, err)
			return
		}

		in := DueQuery{
			PetID:          q.PetID,
			IncludeOverdue: q.IncludeOverdue,
			OffsetMinutes:  q.OffsetMinutes,
			Limit:          q.Limit,
			Offset:         q.Offset,
		}
		if q.From != "" {
			d, err := validation.Time("bad_query", "from", q.From, localtime.ParseDate)
			if err != nil {
				httpjson.Error(w, err)
				return
			}
			in.From = &d
		}
		if q.To != "" {
			d, err := validation.Time("bad_query", "to", q.To, localtime.ParseDate)
			if err != nil {
				httpjson.Error(w, err)
				return
			}
			in.To = &d
		}

		items, err := svc.Due(r.Context(), in)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		out := make([]DueResponse, 0, len(items))
		for _, d := range items {
			out = append(out, DueResponse(d))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

func (r applicationRequest) input() (ApplicationInput, error) {
	administered, err := validation.Time("bad_body", "administeredAt", r.AdministeredAt, localtime.ParseDateOrDateTime)
	if err != nil {
		return ApplicationInput{}, err
	}
	in := ApplicationInput{
		PetID:          r.PetID,
		VaccineTypeID:  r.VaccineTypeID,
		DoseNumber:     r.DoseNumber,
		AdministeredAt: administered,
		AdministeredBy: deref(r.AdministeredBy),
		Clinic:         deref(r.Clinic),
		Notes:          deref(r.Notes),
		Brand:          deref(r.Brand),
	}
	if r.NextDoseAt != nil && *r.NextDoseAt != "" {
		next, err := validation.Time("bad_body", "nextDoseAt", *r.NextDoseAt, localtime.ParseDateOrDateTime)
		if err != nil {
			return ApplicationInput{}, err
		}
		in.NextDoseAt = &next
	}
	return in, nil
}

func toTypeResponse(t Type) TypeResponse {
	return TypeResponse{
		ID:          t.ID,
		Name:        t.Name,
		Species:     t.Species,
		TotalDoses:  t.TotalDoses,
		Description: t.Description,
		Brand:       t.Brand,
		Notes:       t.Notes,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ToApplicationResponse(a Application) ApplicationResponse {
	return ApplicationResponse{
		ID:             a.ID,
		PetID:          a.PetID,
		VaccineTypeID:  a.VaccineTypeID,
		DoseNumber:     a.DoseNumber,
		AdministeredAt: a.AdministeredAt,
		AdministeredBy: a.AdministeredBy,
		Clinic:         a.Clinic,
		NextDoseAt:     a.NextDoseAt,
		Notes:          a.Notes,
		Brand:          a.Brand,
		VetVisitID:     a.VetVisitID,
		CreatedAt:      a.CreatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
