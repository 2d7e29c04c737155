package treatments

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-health-log/internal/platform/httpjson"
	"pet-health-log/internal/platform/localtime"
	"pet-health-log/internal/platform/validation"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/treatments", listHandler(svc))
	r.Post("/treatments", createHandler(svc))
	r.Get("/treatments/{treatmentID}", getHandler(svc))
}

type createRequest struct {
	PetID          string  `json:"petId" validate:"required"`
	Type           string  `json:"type" validate:"required,max=50"`
	TypeLabel      *string `json:"typeLabel" validate:"omitempty,max=100"`
	ProductName    *string `json:"productName" validate:"omitempty,max=200"`
	AdministeredAt string  `json:"administeredAt" validate:"required,dateordt"`
	NextDueAt      *string `json:"nextDueAt" validate:"omitempty,dateordt"`
	DoseInfo       *string `json:"doseInfo" validate:"omitempty,max=200"`
	Notes          *string `json:"notes" validate:"omitempty,max=1000"`
}

type listQuery struct {
	PetID string `query:"petId"`
}

type Response struct {
	ID             string     `json:"id"`
	PetID          string     `json:"pet_id"`
	Type           string     `json:"type"`
	TypeLabel      string     `json:"type_label"`
	ProductName    string     `json:"product_name"`
	AdministeredAt time.Time  `json:"administered_at"`
	NextDueAt      *time.Time `json:"next_due_at"`
	DoseInfo       string     `json:"dose_info"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
}

// createHandler godoc
// @Summary Registrar tratamiento
// @Tags treatments
// @Accept json
// @Produce json
// @Param payload body createRequest true "Tratamiento"
// @Success 201 {object} map[string]string "{id}"
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]string "mascota inexistente"
// @Router /treatments [post]
func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}

		administered, err := validation.Time("bad_body", "administeredAt", req.AdministeredAt, localtime.ParseDateOrDateTime)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		in := CreateInput{
			PetID:          req.PetID,
			Type:           req.Type,
			TypeLabel:      deref(req.TypeLabel),
			ProductName:    deref(req.ProductName),
			AdministeredAt: administered,
			DoseInfo:       deref(req.DoseInfo),
			Notes:          deref(req.Notes),
		}
		if req.NextDueAt != nil && *req.NextDueAt != "" {
			next, err := validation.Time("bad_body", "nextDueAt", *req.NextDueAt, localtime.ParseDateOrDateTime)
			if err != nil {
				httpjson.Error(w, err)
				return
			}
			in.NextDueAt = &next
		}

		t, err := svc.Create(r.Context(), in)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusCreated, map[string]string{"id": t.ID})
	}
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q listQuery
		if err := httpjson.BindQuery(r, &q); err != nil {
			httpjson.Error(w, err)
			return
		}
		items, err := svc.List(r.Context(), q.PetID)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		out := make([]Response, 0, len(items))
		for _, t := range items {
			out = append(out, Response(t))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := svc.GetByID(r.Context(), chi.URLParam(r, "treatmentID"))
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, Response(t))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
