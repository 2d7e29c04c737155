package glycemia

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-health-log/internal/platform/apperr"
	"pet-health-log/internal/platform/httpjson"
	"pet-health-log/internal/platform/localtime"
	"pet-health-log/internal/platform/validation"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/glycemia/sessions", listSessionsHandler(svc))
	r.Post("/glycemia/sessions", createSessionHandler(svc))
	r.Get("/glycemia/sessions/{sessionID}", getSessionHandler(svc))
	r.Put("/glycemia/sessions/{sessionID}", updateSessionHandler(svc))
	r.Delete("/glycemia/sessions/{sessionID}", deleteSessionHandler(svc))
	r.Put("/glycemia/sessions/{sessionID}/points/{idx}", updatePointHandler(svc))
	r.Put("/glycemia/sessions/{sessionID}/points/{idx}/expected", updateExpectedHandler(svc))
}

type expectedPoint struct {
	ExpectedAt string `json:"expectedAt" validate:"required,datetime3339"`
}

type createSessionRequest struct {
	PetID             string          `json:"petId" validate:"required"`
	SessionDate       *string         `json:"sessionDate" validate:"omitempty,datetime=2006-01-02"`
	Times             []string        `json:"times" validate:"omitempty,len=5,dive,hhmm"`
	Points            []expectedPoint `json:"points" validate:"omitempty,len=5,dive"`
	WarnMinutesBefore *int            `json:"warnMinutesBefore" validate:"omitempty,min=0,max=240"`
	OffsetMinutes     *int            `json:"offsetMinutes" validate:"omitempty,min=-720,max=840"`
	Notes             *string         `json:"notes" validate:"omitempty,max=1000"`
}

type updateSessionRequest struct {
	SessionDate   *string  `json:"sessionDate" validate:"omitempty,datetime=2006-01-02"`
	Notes         *string  `json:"notes" validate:"omitempty,max=1000"`
	Times         []string `json:"times" validate:"omitempty,len=5,dive,hhmm"`
	OffsetMinutes *int     `json:"offsetMinutes" validate:"omitempty,min=-720,max=840"`
}

type updatePointRequest struct {
	GlucoseMgDl    *float64 `json:"glucoseMgDl" validate:"omitempty,gte=0"`
	GlucoseStr     *string  `json:"glucoseStr" validate:"omitempty,oneof=HI"`
	MeasuredAt     *string  `json:"measuredAt" validate:"omitempty,datetime3339"`
	MeasuredAtTime *string  `json:"measuredAtTime" validate:"omitempty,hhmm"`
	OffsetMinutes  *int     `json:"offsetMinutes" validate:"omitempty,min=-720,max=840"`
	DosageClicks   *int     `json:"dosageClicks" validate:"omitempty,min=0"`
	Notes          *string  `json:"notes" validate:"omitempty,max=200"`
}

type updateExpectedRequest struct {
	ExpectedTime  *string `json:"expectedTime" validate:"omitempty,hhmm"`
	ExpectedAt    *string `json:"expectedAt" validate:"omitempty,datetime3339"`
	OffsetMinutes *int    `json:"offsetMinutes" validate:"omitempty,min=-720,max=840"`
}

type listSessionsQuery struct {
	PetID  string `query:"petId"`
	Limit  int    `query:"limit" validate:"min=0,max=200"`
	Offset int    `query:"offset" validate:"min=0"`
}

type SessionResponse struct {
	ID          string    `json:"id"`
	PetID       string    `json:"pet_id"`
	SessionDate string    `json:"session_date"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PointResponse struct {
	ID                string      `json:"id"`
	SessionID         string      `json:"session_id"`
	Idx               int         `json:"idx"`
	ExpectedAt        time.Time   `json:"expected_at"`
	WarnMinutesBefore *int        `json:"warn_minutes_before"`
	GlucoseMgDl       *float64    `json:"glucose_mgdl"`
	GlucoseStr        string      `json:"glucose_str,omitempty"`
	MeasuredAt        *time.Time  `json:"measured_at"`
	DosageClicks      *int        `json:"dosage_clicks"`
	Notes             string      `json:"notes"`
	Status            PointStatus `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type DetailResponse struct {
	Session SessionResponse `json:"session"`
	Points  []PointResponse `json:"points"`
}

type DeleteResponse struct {
	Deleted        bool `json:"deleted"`
	PointsDeleted  int  `json:"pointsDeleted"`
	SessionDeleted bool `json:"sessionDeleted"`
}

// listSessionsHandler godoc
// @Summary Listar sesiones de glucemia
// @Description Sin petId devuelve una lista vacía.
// @Tags glycemia
// @Produce json
// @Param petId query string false "ID de la mascota"
// @Param limit query int false "1-200, default 50"
// @Param offset query int false "default 0"
// @Success 200 {array} SessionResponse
// @Router /glycemia/sessions [get]
func listSessionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q listSessionsQuery
		if err := httpjson.BindQuery(r, &q); err != nil {
			httpjson.Error(w, err)
			return
		}

		items, err := svc.List(r.Context(), q.PetID, q.Limit, q.Offset)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		out := make([]SessionResponse, 0, len(items))
		for _, s := range items {
			out = append(out, toSessionResponse(s))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

// createSessionHandler godoc
// @Summary Crear sesión de glucemia
// @Description Crea la sesión con sus cinco puntos en una sola operación. Se envía sessionDate + times (HH:MM locales, con offsetMinutes) o points[5].expectedAt.
// @Tags glycemia
// @Accept json
// @Produce json
// @Param payload body createSessionRequest true "Sesión"
// @Success 201 {object} map[string]string "{id}"
// @Failure 400 {object} map[string]string "bad_body"
// @Failure 404 {object} map[string]string "not_found"
// @Router /glycemia/sessions [post]
func createSessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}

		in := CreateInput{
			PetID:             req.PetID,
			Times:             req.Times,
			WarnMinutesBefore: req.WarnMinutesBefore,
			OffsetMinutes:     req.OffsetMinutes,
		}
		if req.Notes != nil {
			in.Notes = *req.Notes
		}
		if req.SessionDate != nil {
			d, err := validation.Time("bad_body", "sessionDate", *req.SessionDate, localtime.ParseDate)
			if err != nil {
				httpjson.Error(w, err)
				return
			}
			in.SessionDate = &d
		}
		for _, p := range req.Points {
			in.ExpectedAt = append(in.ExpectedAt, p.ExpectedAt)
		}

		s, err := svc.Create(r.Context(), in)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusCreated, map[string]string{"id": s.ID})
	}
}

// getSessionHandler godoc
// @Summary Ver sesión con sus puntos
// @Tags glycemia
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Success 200 {object} DetailResponse
// @Failure 404 {object} map[string]string "not_found"
// @Router /glycemia/sessions/{sessionID} [get]
func getSessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.Get(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		out := DetailResponse{
			Session: toSessionResponse(d.Session),
			Points:  make([]PointResponse, 0, len(d.Points)),
		}
		for _, p := range d.Points {
			out.Points = append(out.Points, toPointResponse(p))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

func updateSessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateSessionRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}

		in := UpdateSessionInput{Notes: req.Notes, Times: req.Times, OffsetMinutes: req.OffsetMinutes}
		if req.SessionDate != nil {
			d, err := validation.Time("bad_body", "sessionDate", *req.SessionDate, localtime.ParseDate)
			if err != nil {
				httpjson.Error(w, err)
				return
			}
			in.SessionDate = &d
		}

		if err := svc.UpdateSession(r.Context(), chi.URLParam(r, "sessionID"), in); err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]bool{"updated": true})
	}
}

// updatePointHandler godoc
// @Summary Registrar medición de un punto
// @Description measuredAt (ISO) o measuredAtTime (HH:MM sobre la fecha de la sesión). Campos ausentes no se tocan.
// @Tags glycemia
// @Accept json
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Param idx path int true "Índice 1-5"
// @Param payload body updatePointRequest true "Medición"
// @Success 200 {object} map[string]bool "{updated}"
// @Failure 404 {object} map[string]string "session_not_found / not_found"
// @Router /glycemia/sessions/{sessionID}/points/{idx} [put]
func updatePointHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, err := pointIdx(r)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		var req updatePointRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}

		in := PointInput{
			GlucoseMgDl:    req.GlucoseMgDl,
			GlucoseStr:     req.GlucoseStr,
			MeasuredAtTime: req.MeasuredAtTime,
			OffsetMinutes:  req.OffsetMinutes,
			DosageClicks:   req.DosageClicks,
			Notes:          req.Notes,
		}
		if req.MeasuredAt != nil {
			t, err := validation.Time("bad_body", "measuredAt", *req.MeasuredAt, localtime.ParseDateTime)
			if err != nil {
				httpjson.Error(w, err)
				return
			}
			in.MeasuredAt = &t
		}

		if _, err := svc.UpdatePoint(r.Context(), chi.URLParam(r, "sessionID"), idx, in); err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]bool{"updated": true})
	}
}

// updateExpectedHandler godoc
// @Summary Reprogramar un punto
// @Description expectedTime (HH:MM sobre la fecha de la sesión, con offsetMinutes) o expectedAt (ISO). Sin ninguno de los dos responde invalid_payload.
// @Tags glycemia
// @Accept json
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Param idx path int true "Índice 1-5"
// @Param payload body updateExpectedRequest true "Nuevo horario"
// @Success 200 {object} map[string]bool "{updated}"
// @Failure 400 {object} map[string]any "invalid_payload / bad_body"
// @Failure 404 {object} map[string]string "session_not_found / not_found"
// @Router /glycemia/sessions/{sessionID}/points/{idx}/expected [put]
func updateExpectedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, err := pointIdx(r)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		var req updateExpectedRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}

		in := ExpectedInput{ExpectedTime: req.ExpectedTime, OffsetMinutes: req.OffsetMinutes}
		if req.ExpectedAt != nil {
			t, err := validation.Time("bad_body", "expectedAt", *req.ExpectedAt, localtime.ParseDateTime)
			if err != nil {
				httpjson.Error(w, err)
				return
			}
			in.ExpectedAt = &t
		}

		if _, err := svc.SetExpected(r.Context(), chi.URLParam(r, "sessionID"), idx, in); err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]bool{"updated": true})
	}
}

// deleteSessionHandler godoc
// @Summary Borrar sesión
// @Description Borra puntos y sesión e informa cuántos de cada uno se borraron.
// @Tags glycemia
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Success 200 {object} DeleteResponse
// @Failure 404 {object} map[string]string "not_found"
// @Router /glycemia/sessions/{sessionID} [delete]
func deleteSessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Delete(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, DeleteResponse{
			Deleted:        res.SessionDeleted,
			PointsDeleted:  res.PointsDeleted,
			SessionDeleted: res.SessionDeleted,
		})
	}
}

func pointIdx(r *http.Request) (int, error) {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil || idx < 1 || idx > PointsPerSession {
		return 0, apperr.Invalid("bad_query", "idx must be between 1 and 5")
	}
	return idx, nil
}

func toSessionResponse(s Session) SessionResponse {
	return SessionResponse{
		ID:          s.ID,
		PetID:       s.PetID,
		SessionDate: s.SessionDate.Format(localtime.DateLayout),
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toPointResponse(p Point) PointResponse {
	return PointResponse{
		ID:                p.ID,
		SessionID:         p.SessionID,
		Idx:               p.Idx,
		ExpectedAt:        p.ExpectedAt,
		WarnMinutesBefore: p.WarnMinutesBefore,
		GlucoseMgDl:       p.GlucoseMgDl,
		GlucoseStr:        p.GlucoseStr,
		MeasuredAt:        p.MeasuredAt,
		DosageClicks:      p.DosageClicks,
		Notes:             p.Notes,
		Status:            p.Status(),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
