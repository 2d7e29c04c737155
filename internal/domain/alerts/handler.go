package alerts

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-health-log/internal/platform/httpjson"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/alerts/due", dueHandler(svc))
}

type dueQuery struct {
	Days          *int     `query:"days" validate:"omitempty,min=1,max=3650"`
	Minutes       *int     `query:"minutes" validate:"omitempty,min=1,max=1440"`
	OffsetMinutes *int     `query:"offsetMinutes" validate:"omitempty,min=-720,max=840"`
	PetID         string   `query:"petId" validate:"omitempty,uuid"`
	Kinds         []string `query:"kinds" validate:"omitempty,dive,oneof=birthdays vaccines glycemia treatments"`
}

type BirthdayResponse struct {
	PetID   string    `json:"pet_id"`
	PetName string    `json:"pet_name"`
	At      time.Time `json:"at"`
	Turns   int       `json:"turns"`
}

type VaccineResponse struct {
	ID            string    `json:"id"`
	PetID         string    `json:"pet_id"`
	PetName       string    `json:"pet_name"`
	VaccineTypeID string    `json:"vaccine_type_id"`
	VaccineName   string    `json:"vaccine_name"`
	DoseNumber    int       `json:"dose_number"`
	NextDoseAt    time.Time `json:"next_dose_at"`
}

type GlycemiaResponse struct {
	SessionID   string    `json:"session_id"`
	Idx         int       `json:"idx"`
	ExpectedAt  time.Time `json:"expected_at"`
	WarnMinutes int       `json:"warn_minutes_before"`
	PetID       string    `json:"pet_id"`
	PetName     string    `json:"pet_name"`
}

type TreatmentResponse struct {
	ID          string    `json:"id"`
	PetID       string    `json:"pet_id"`
	PetName     string    `json:"pet_name"`
	Type        string    `json:"type"`
	TypeLabel   string    `json:"type_label"`
	ProductName string    `json:"product_name"`
	NextDueAt   time.Time `json:"next_due_at"`
}

type DueResponse struct {
	Birthdays  []BirthdayResponse  `json:"birthdays"`
	Vaccines   []VaccineResponse   `json:"vaccines"`
	Glycemia   []GlycemiaResponse  `json:"glycemia"`
	Treatments []TreatmentResponse `json:"treatments"`
	// Errors lista las secciones que no se pudieron calcular.
	Errors map[string]string `json:"errors,omitempty"`
}

// dueHandler godoc
// @Summary Avisos próximos
// @Description Cumpleaños y vacunas/tratamientos hasta ahora + days; puntos de glucemia pendientes en su ventana de aviso [expected_at - warn, expected_at), mirando minutes hacia adelante.
// @Description Si una sección falla el resto se devuelve igual y la sección aparece en errors.
// @Tags alerts
// @Produce json
// @Param days query int false "1-3650, default 7"
// @Param minutes query int false "1-1440, default 15"
// @Param offsetMinutes query int false "offset local en minutos, default -180"
// @Param petId query string false "UUID de la mascota"
// @Param kinds query string false "CSV de birthdays,vaccines,glycemia,treatments"
// @Success 200 {object} DueResponse
// @Failure 400 {object} map[string]any "bad_query"
// @Failure 500 {object} map[string]string "db_error"
// @Router /alerts/due [get]
func dueHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q dueQuery
		if err := httpjson.BindQuery(r, &q); err != nil {
			httpjson.Error(w, err)
			return
		}

		kinds := make([]Kind, 0, len(q.Kinds))
		for _, k := range q.Kinds {
			kinds = append(kinds, Kind(k))
		}

		res, err := svc.Due(r.Context(), Query{
			Days:          q.Days,
			Minutes:       q.Minutes,
			OffsetMinutes: q.OffsetMinutes,
			PetID:         q.PetID,
			Kinds:         kinds,
		})
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, toResponse(res))
	}
}

func toResponse(res Result) DueResponse {
	out := DueResponse{
		Birthdays:  make([]BirthdayResponse, 0, len(res.Birthdays)),
		Vaccines:   make([]VaccineResponse, 0, len(res.Vaccines)),
		Glycemia:   make([]GlycemiaResponse, 0, len(res.Glycemia)),
		Treatments: make([]TreatmentResponse, 0, len(res.Treatments)),
	}
	for _, b := range res.Birthdays {
		out.Birthdays = append(out.Birthdays, BirthdayResponse(b))
	}
	for _, v := range res.Vaccines {
		out.Vaccines = append(out.Vaccines, VaccineResponse{
			ID:            v.ApplicationID,
			PetID:         v.PetID,
			PetName:       v.PetName,
			VaccineTypeID: v.VaccineTypeID,
			VaccineName:   v.VaccineName,
			DoseNumber:    v.DoseNumber,
			NextDoseAt:    v.NextDoseAt,
		})
	}
	for _, g := range res.Glycemia {
		out.Glycemia = append(out.Glycemia, GlycemiaResponse(g))
	}
	for _, t := range res.Treatments {
		out.Treatments = append(out.Treatments, TreatmentResponse{
			ID:          t.TreatmentID,
			PetID:       t.PetID,
			PetName:     t.PetName,
			Type:        t.Type,
			TypeLabel:   t.TypeLabel,
			ProductName: t.ProductName,
			NextDueAt:   t.NextDueAt,
		})
	}
	if len(res.Errors) > 0 {
		out.Errors = make(map[string]string, len(res.Errors))
		for k := range res.Errors {
			out.Errors[string(k)] = "db_error"
		}
	}
	return out
}
