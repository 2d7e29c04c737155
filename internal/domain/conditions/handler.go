package conditions

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-health-log/internal/domain/lab"
	"pet-health-log/internal/domain/treatments"
	"pet-health-log/internal/platform/httpjson"
	"pet-health-log/internal/platform/localtime"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/pets/{petID}/conditions", listHandler(svc))
	r.Post("/pets/{petID}/conditions", createHandler(svc))

	r.Get("/conditions/{conditionID}", getHandler(svc))
	r.Put("/conditions/{conditionID}", updateHandler(svc))
	r.Delete("/conditions/{conditionID}", deleteHandler(svc))

	r.Get("/conditions/{conditionID}/lab-types", linkedLabTypesHandler(svc))
	r.Post("/conditions/{conditionID}/lab-types", linkFromBodyHandler(svc, LinkLabType))
	r.Delete("/conditions/{conditionID}/lab-types/{targetID}", unlinkHandler(svc, LinkLabType))

	r.Get("/conditions/{conditionID}/lab-results", linkedLabResultsHandler(svc))
	r.Post("/conditions/{conditionID}/lab-results", linkFromBodyHandler(svc, LinkLabResult))
	r.Delete("/conditions/{conditionID}/lab-results/{targetID}", unlinkHandler(svc, LinkLabResult))

	r.Get("/conditions/{conditionID}/treatments", linkedTreatmentsHandler(svc))
	r.Post("/conditions/{conditionID}/treatments/{targetID}", linkFromPathHandler(svc, LinkTreatment))
	r.Delete("/conditions/{conditionID}/treatments/{targetID}", unlinkHandler(svc, LinkTreatment))

	r.Get("/conditions/{conditionID}/notes", listNotesHandler(svc))
	r.Post("/conditions/{conditionID}/notes", createNoteHandler(svc))
	r.Put("/condition-notes/{noteID}", updateNoteHandler(svc))
	r.Delete("/condition-notes/{noteID}", deleteNoteHandler(svc))
}

// conditionRequest acepta diagnosedAt/resolvedAt también en snake_case.
type conditionRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=200"`
	Curability       *string `json:"curability" validate:"omitempty,oneof=CURÁVEL NÃO_CURÁVEL INDEFINIDO"`
	Status           *string `json:"status" validate:"omitempty,oneof=ATIVA RESOLVIDA EM_MANEJO DESCARTADA"`
	Severity         *string `json:"severity" validate:"omitempty,oneof=BAIXA MODERADA ALTA"`
	DiagnosedAt      *string `json:"diagnosedAt" validate:"omitempty,datetime=2006-01-02"`
	DiagnosedAtSnake *string `json:"diagnosed_at" validate:"omitempty,datetime=2006-01-02"`
	ResolvedAt       *string `json:"resolvedAt" validate:"omitempty,datetime=2006-01-02"`
	ResolvedAtSnake  *string `json:"resolved_at" validate:"omitempty,datetime=2006-01-02"`
	Notes            *string `json:"notes" validate:"omitempty,max=4000"`
}

type noteRequest struct {
	Content               *string `json:"content" validate:"omitempty,min=1,max=4000"`
	StatusSnapshot        *string `json:"statusSnapshot" validate:"omitempty,oneof=ATIVA RESOLVIDA EM_MANEJO DESCARTADA"`
	StatusSnapshotSnake   *string `json:"status_snapshot" validate:"omitempty,oneof=ATIVA RESOLVIDA EM_MANEJO DESCARTADA"`
	SeveritySnapshot      *string `json:"severitySnapshot" validate:"omitempty,oneof=BAIXA MODERADA ALTA"`
	SeveritySnapshotSnake *string `json:"severity_snapshot" validate:"omitempty,oneof=BAIXA MODERADA ALTA"`
}

type linkRequest struct {
	LabTypeID   string `json:"labTypeId"`
	LabResultID string `json:"labResultId"`
}

type Response struct {
	ID          string     `json:"id"`
	PetID       string     `json:"pet_id"`
	Name        string     `json:"name"`
	Curability  Curability `json:"curability"`
	Status      Status     `json:"status"`
	Severity    Severity   `json:"severity"`
	DiagnosedAt *string    `json:"diagnosed_at"`
	ResolvedAt  *string    `json:"resolved_at"`
	Notes       string     `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type NoteResponse struct {
	ID               string    `json:"id"`
	ConditionID      string    `json:"condition_id"`
	Content          string    `json:"content"`
	StatusSnapshot   *Status   `json:"status_snapshot"`
	SeveritySnapshot *Severity `json:"severity_snapshot"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByPet(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		out := make([]Response, 0, len(items))
		for _, c := range items {
			out = append(out, toResponse(c))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

// createHandler godoc
// @Summary Registrar condición de salud
// @Description Defaults: curability INDEFINIDO, status ATIVA, severity MODERADA.
// @Tags conditions
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body conditionRequest true "name obligatorio"
// @Success 201 {object} Response
// @Failure 404 {object} map[string]string "not_found"
// @Router /pets/{petID}/conditions [post]
func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req conditionRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}
		c, err := svc.Create(r.Context(), chi.URLParam(r, "petID"), req.input())
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusCreated, toResponse(c))
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Get(r.Context(), chi.URLParam(r, "conditionID"))
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, toResponse(c))
	}
}

func updateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req conditionRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}
		c, err := svc.Update(r.Context(), chi.URLParam(r, "conditionID"), req.input())
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, toResponse(c))
	}
}

func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "conditionID")); err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func linkFromBodyHandler(svc *Service, kind LinkKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req linkRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}
		target := req.LabTypeID
		if kind == LinkLabResult {
			target = req.LabResultID
		}
		if err := svc.Link(r.Context(), chi.URLParam(r, "conditionID"), kind, target); err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]bool{"linked": true})
	}
}

func linkFromPathHandler(svc *Service, kind LinkKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Link(r.Context(), chi.URLParam(r, "conditionID"), kind, chi.URLParam(r, "targetID")); err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]bool{"linked": true})
	}
}

func unlinkHandler(svc *Service, kind LinkKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Unlink(r.Context(), chi.URLParam(r, "conditionID"), kind, chi.URLParam(r, "targetID")); err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]bool{"unlinked": true})
	}
}

func linkedLabTypesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.LinkedLabTypes(r.Context(), chi.URLParam(r, "conditionID"))
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		out := make([]lab.TestTypeResponse, 0, len(items))
		for _, t := range items {
			out = append(out, lab.ToTestTypeResponse(t))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

func linkedLabResultsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.LinkedLabResults(r.Context(), chi.URLParam(r, "conditionID"))
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		out := make([]lab.ResultResponse, 0, len(items))
		for _, res := range items {
			out = append(out, lab.ToResultResponse(res))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

func linkedTreatmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.LinkedTreatments(r.Context(), chi.URLParam(r, "conditionID"))
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		out := make([]treatments.Response, 0, len(items))
		for _, t := range items {
			out = append(out, treatments.Response(t))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

func listNotesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListNotes(r.Context(), chi.URLParam(r, "conditionID"))
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		out := make([]NoteResponse, 0, len(items))
		for _, n := range items {
			out = append(out, NoteResponse(n))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

func createNoteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req noteRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}
		n, err := svc.AddNote(r.Context(), chi.URLParam(r, "conditionID"), req.input())
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusCreated, NoteResponse(n))
	}
}

func updateNoteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req noteRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}
		n, err := svc.UpdateNote(r.Context(), chi.URLParam(r, "noteID"), req.input())
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, NoteResponse(n))
	}
}

func deleteNoteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteNote(r.Context(), chi.URLParam(r, "noteID")); err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func (r conditionRequest) input() Input {
	in := Input{
		Name:        r.Name,
		DiagnosedAt: parseDate(first(r.DiagnosedAt, r.DiagnosedAtSnake)),
		ResolvedAt:  parseDate(first(r.ResolvedAt, r.ResolvedAtSnake)),
		Notes:       r.Notes,
	}
	if r.Curability != nil {
		v := Curability(*r.Curability)
		in.Curability = &v
	}
	if r.Status != nil {
		v := Status(*r.Status)
		in.Status = &v
	}
	if r.Severity != nil {
		v := Severity(*r.Severity)
		in.Severity = &v
	}
	return in
}

func (r noteRequest) input() NoteInput {
	in := NoteInput{Content: r.Content}
	if s := first(r.StatusSnapshot, r.StatusSnapshotSnake); s != nil {
		v := Status(*s)
		in.StatusSnapshot = &v
	}
	if s := first(r.SeveritySnapshot, r.SeveritySnapshotSnake); s != nil {
		v := Severity(*s)
		in.SeveritySnapshot = &v
	}
	return in
}

func toResponse(c Condition) Response {
	return Response{
		ID:          c.ID,
		PetID:       c.PetID,
		Name:        c.Name,
		Curability:  c.Curability,
		Status:      c.Status,
		Severity:    c.Severity,
		DiagnosedAt: localtime.FormatDate(c.DiagnosedAt),
		ResolvedAt:  localtime.FormatDate(c.ResolvedAt),
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func first(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}

func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := localtime.ParseDate(*s)
	if err != nil {
		return nil
	}
	return &t
}
