package lab

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-health-log/internal/platform/httpjson"
	"pet-health-log/internal/platform/localtime"
	"pet-health-log/internal/platform/validation"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/lab/test-types", listTestTypesHandler(svc))
	r.Post("/lab/test-types", createTestTypeHandler(svc))
	r.Put("/lab/test-types/{typeID}", updateTestTypeHandler(svc))

	r.Get("/lab/results", listResultsHandler(svc))
	r.Post("/lab/results", createResultHandler(svc))
}

type createTestTypeRequest struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Species  *string  `json:"species" validate:"omitempty,oneof=dog cat other"`
	Unit     *string  `json:"unit" validate:"omitempty,max=50"`
	RefLow   *float64 `json:"refLow"`
	RefHigh  *float64 `json:"refHigh"`
	Category *string  `json:"category" validate:"omitempty,max=100"`
}

type updateTestTypeRequest struct {
	Name     *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Species  *string  `json:"species" validate:"omitempty,oneof=dog cat other"`
	Unit     *string  `json:"unit" validate:"omitempty,max=50"`
	RefLow   *float64 `json:"refLow"`
	RefHigh  *float64 `json:"refHigh"`
	Category *string  `json:"category" validate:"omitempty,max=100"`
}

type valueRequest struct {
	TestTypeID string   `json:"testTypeId" validate:"required_without=Name"`
	Name       string   `json:"name" validate:"required_without=TestTypeID,max=100"`
	Value      *float64 `json:"value" validate:"required"`
	Unit       *string  `json:"unit" validate:"omitempty,max=50"`
}

type createResultRequest struct {
	PetID       string         `json:"petId" validate:"required"`
	CollectedAt string         `json:"collectedAt" validate:"required,datetime3339"`
	LabName     *string        `json:"labName" validate:"omitempty,max=200"`
	VetName     *string        `json:"vetName" validate:"omitempty,max=200"`
	Notes       *string        `json:"notes" validate:"omitempty,max=2000"`
	Values      []valueRequest `json:"values" validate:"required,min=1,dive"`
}

type typesQuery struct {
	Q       string `query:"q" validate:"max=100"`
	Species string `query:"species" validate:"omitempty,oneof=dog cat other"`
}

type resultsQuery struct {
	PetID  string `query:"petId"`
	Limit  int    `query:"limit" validate:"min=0,max=200"`
	Offset int    `query:"offset" validate:"min=0"`
}

type TestTypeResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Species   string    `json:"species"`
	Unit      string    `json:"unit"`
	RefLow    *float64  `json:"ref_low"`
	RefHigh   *float64  `json:"ref_high"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ValueResponse struct {
	ID         string  `json:"id"`
	TestTypeID string  `json:"test_type_id"`
	TestName   string  `json:"test_name"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
}

type ResultResponse struct {
	ID          string          `json:"id"`
	PetID       string          `json:"pet_id"`
	CollectedAt time.Time       `json:"collected_at"`
	LabName     string          `json:"lab_name"`
	VetName     string          `json:"vet_name"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	Values      []ValueResponse `json:"values"`
}

func listTestTypesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q typesQuery
		if err := httpjson.BindQuery(r, &q); err != nil {
			httpjson.Error(w, err)
			return
		}
		items, err := svc.ListTestTypes(r.Context(), TypeFilter{Query: q.Q, Species: q.Species})
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		out := make([]TestTypeResponse, 0, len(items))
		for _, t := range items {
			out = append(out, ToTestTypeResponse(t))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

// createTestTypeHandler godoc
// @Summary Crear tipo de análisis
// @Tags lab
// @Accept json
// @Produce json
// @Param payload body createTestTypeRequest true "Tipo de análisis; species default other"
// @Success 201 {object} map[string]string "{id}"
// @Failure 409 {object} map[string]string "duplicate (nombre + especie)"
// @Router /lab/test-types [post]
func createTestTypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTestTypeRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}
		t, err := svc.CreateTestType(r.Context(), TestTypeInput{
			Name:     &req.Name,
			Species:  req.Species,
			Unit:     req.Unit,
			RefLow:   req.RefLow,
			RefHigh:  req.RefHigh,
			Category: req.Category,
		})
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusCreated, map[string]string{"id": t.ID})
	}
}

func updateTestTypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateTestTypeRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}
		t, err := svc.UpdateTestType(r.Context(), chi.URLParam(r, "typeID"), TestTypeInput(req))
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, ToTestTypeResponse(t))
	}
}

func listResultsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q resultsQuery
		if err := httpjson.BindQuery(r, &q); err != nil {
			httpjson.Error(w, err)
			return
		}
		items, err := svc.ListResults(r.Context(), q.PetID, q.Limit, q.Offset)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		out := make([]ResultResponse, 0, len(items))
		for _, res := range items {
			out = append(out, ToResultResponse(res))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

// createResultHandler godoc
// @Summary Cargar resultado de laboratorio
// @Description Cada valor referencia un tipo por testTypeId o por nombre; un nombre desconocido crea el tipo. Todo se guarda en una transacción.
// @Tags lab
// @Accept json
// @Produce json
// @Param payload body createResultRequest true "Resultado con valores"
// @Success 201 {object} map[string]string "{id}"
// @Failure 400 {object} map[string]string "bad_body"
// @Failure 404 {object} map[string]string "not_found"
// @Router /lab/results [post]
func createResultHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createResultRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}

		collected, err := validation.Time("bad_body", "collectedAt", req.CollectedAt, localtime.ParseDateTime)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		in := ResultInput{
			PetID:       req.PetID,
			CollectedAt: collected,
			LabName:     deref(req.LabName),
			VetName:     deref(req.VetName),
			Notes:       deref(req.Notes),
		}
		for _, v := range req.Values {
			in.Values = append(in.Values, ValueInput{
				TestTypeID: v.TestTypeID,
				Name:       v.Name,
				Value:      *v.Value,
				Unit:       v.Unit,
			})
		}

		res, err := svc.CreateResult(r.Context(), in)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusCreated, map[string]string{"id": res.ID})
	}
}

func ToTestTypeResponse(t TestType) TestTypeResponse {
	return TestTypeResponse{
		ID:        t.ID,
		Name:      t.Name,
		Species:   t.Species,
		Unit:      t.Unit,
		RefLow:    t.RefLow,
		RefHigh:   t.RefHigh,
		Category:  t.Category,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func ToResultResponse(res Result) ResultResponse {
	out := ResultResponse{
		ID:          res.ID,
		PetID:       res.PetID,
		CollectedAt: res.CollectedAt,
		LabName:     res.LabName,
		VetName:     res.VetName,
		Notes:       res.Notes,
		CreatedAt:   res.CreatedAt,
		Values:      make([]ValueResponse, 0, len(res.Values)),
	}
	for _, v := range res.Values {
		out.Values = append(out.Values, ValueResponse{
			ID:         v.ID,
			TestTypeID: v.TestTypeID,
			TestName:   v.TestName,
			Value:      v.Value,
			Unit:       v.Unit,
		})
	}
	return out
}
