package pets

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-health-log/internal/platform/httpjson"
	"pet-health-log/internal/platform/localtime"
	"pet-health-log/internal/platform/validation"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/pets", listPetsHandler(svc))
	r.Post("/pets", createPetHandler(svc))
	r.Get("/pets/{petID}", getPetHandler(svc))
	r.Put("/pets/{petID}", updatePetHandler(svc))
	r.Delete("/pets/{petID}", deletePetHandler(svc))

	r.Get("/pets/{petID}/weights", listWeightsHandler(svc))
	r.Post("/pets/{petID}/weights", createWeightHandler(svc))
}

type createPetRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Species      string  `json:"species" validate:"required,oneof=dog cat other"`
	Breed        *string `json:"breed" validate:"omitempty,max=100"`
	Gender       *string `json:"gender" validate:"omitempty,oneof=M F N"`
	Coat         *string `json:"coat" validate:"omitempty,max=100"`
	Microchip    *string `json:"microchip" validate:"omitempty,max=50"`
	BirthDate    *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	AdoptionDate *string `json:"adoptionDate" validate:"omitempty,datetime=2006-01-02"`
	ThemeColor   *string `json:"themeColor" validate:"omitempty,hexcolor6"`
}

// updatePetRequest: mismo shape que create pero todo opcional (COALESCE).
type updatePetRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	Species      *string `json:"species" validate:"omitempty,oneof=dog cat other"`
	Breed        *string `json:"breed" validate:"omitempty,max=100"`
	Gender       *string `json:"gender" validate:"omitempty,oneof=M F N"`
	Coat         *string `json:"coat" validate:"omitempty,max=100"`
	Microchip    *string `json:"microchip" validate:"omitempty,max=50"`
	BirthDate    *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	AdoptionDate *string `json:"adoptionDate" validate:"omitempty,datetime=2006-01-02"`
	ThemeColor   *string `json:"themeColor" validate:"omitempty,hexcolor6"`
	IsActive     *bool   `json:"isActive"`
}

type listPetsQuery struct {
	Q       string `query:"q" validate:"max=100"`
	Species string `query:"species" validate:"omitempty,oneof=dog cat other"`
	Gender  string `query:"gender" validate:"omitempty,oneof=M F N"`
	SortBy  string `query:"sortBy" validate:"omitempty,oneof=name birth_date adoption_date"`
	SortDir string `query:"sortDir" validate:"omitempty,oneof=asc desc"`
	Limit   int    `query:"limit" validate:"min=0,max=200"`
	Offset  int    `query:"offset" validate:"min=0"`
}

type createWeightRequest struct {
	WeightKg   *float64 `json:"weightKg" validate:"required,gte=0"`
	MeasuredAt string   `json:"measuredAt" validate:"required,datetime=2006-01-02"`
}

type pageQuery struct {
	Limit  int `query:"limit" validate:"min=0,max=500"`
	Offset int `query:"offset" validate:"min=0"`
}

type PetResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Species      Species   `json:"species"`
	Breed        string    `json:"breed"`
	Gender       Gender    `json:"gender"`
	Coat         string    `json:"coat"`
	Microchip    string    `json:"microchip"`
	BirthDate    *string   `json:"birth_date"`
	AdoptionDate *string   `json:"adoption_date"`
	ThemeColor   string    `json:"theme_color"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type WeightResponse struct {
	ID         string    `json:"id"`
	PetID      string    `json:"pet_id"`
	MeasuredAt string    `json:"measured_at"`
	WeightKg   float64   `json:"weight_kg"`
	CreatedAt  time.Time `json:"created_at"`
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Filtra por nombre (contiene, sin distinguir mayúsculas), especie y género. Los nulos van al final del orden.
// @Tags pets
// @Produce json
// @Param q query string false "Texto a buscar en el nombre"
// @Param species query string false "dog|cat|other"
// @Param gender query string false "M|F|N"
// @Param sortBy query string false "name|birth_date|adoption_date"
// @Param sortDir query string false "asc|desc"
// @Param limit query int false "1-200, default 50"
// @Param offset query int false "default 0"
// @Success 200 {array} PetResponse
// @Failure 400 {object} map[string]string "bad_query"
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q listPetsQuery
		if err := httpjson.BindQuery(r, &q); err != nil {
			httpjson.Error(w, err)
			return
		}

		items, err := svc.List(r.Context(), ListFilter{
			Query:   q.Q,
			Species: Species(q.Species),
			Gender:  Gender(q.Gender),
			SortBy:  SortBy(q.SortBy),
			Desc:    q.SortDir == "desc",
			Limit:   q.Limit,
			Offset:  q.Offset,
		})
		if err != nil {
			httpjson.Error(w, err)
			return
		}

		out := make([]PetResponse, 0, len(items))
		for _, p := range items {
			out = append(out, ToResponse(p))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

// createPetHandler godoc
// @Summary Crear mascota
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body createPetRequest true "Datos de la mascota; fechas en YYYY-MM-DD"
// @Success 201 {object} map[string]string "{id}"
// @Failure 400 {object} map[string]string "bad_body"
// @Failure 401 {object} map[string]string "unauthorized"
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPetRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}

		p, err := svc.Create(r.Context(), CreateInput{
			Name:         req.Name,
			Species:      Species(req.Species),
			Breed:        deref(req.Breed),
			Gender:       Gender(deref(req.Gender)),
			Coat:         deref(req.Coat),
			Microchip:    deref(req.Microchip),
			BirthDate:    parseDate(req.BirthDate),
			AdoptionDate: parseDate(req.AdoptionDate),
			ThemeColor:   deref(req.ThemeColor),
		})
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusCreated, map[string]string{"id": p.ID})
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, ToResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description Actualización parcial: los campos ausentes conservan su valor.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a cambiar"
// @Success 200 {object} map[string]bool "{updated}"
// @Failure 404 {object} map[string]string "not_found"
// @Router /pets/{petID} [put]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updatePetRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}

		in := UpdateInput{
			Name:         req.Name,
			Breed:        req.Breed,
			Coat:         req.Coat,
			Microchip:    req.Microchip,
			BirthDate:    parseDate(req.BirthDate),
			AdoptionDate: parseDate(req.AdoptionDate),
			ThemeColor:   req.ThemeColor,
			IsActive:     req.IsActive,
		}
		if req.Species != nil {
			sp := Species(*req.Species)
			in.Species = &sp
		}
		if req.Gender != nil {
			g := Gender(*req.Gender)
			in.Gender = &g
		}

		if _, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), in); err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]bool{"updated": true})
	}
}

// deletePetHandler godoc
// @Summary Borrar mascota
// @Description Borra la mascota junto con pesos, vacunas, análisis, glucemias, tratamientos, visitas y condiciones.
// @Tags pets
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} map[string]bool "{deleted}"
// @Failure 404 {object} map[string]string "not_found"
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID")); err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func listWeightsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q pageQuery
		if err := httpjson.BindQuery(r, &q); err != nil {
			httpjson.Error(w, err)
			return
		}

		items, err := svc.ListWeights(r.Context(), chi.URLParam(r, "petID"), q.Limit, q.Offset)
		if err != nil {
			httpjson.Error(w, err)
			return
		}

		out := make([]WeightResponse, 0, len(items))
		for _, wt := range items {
			out = append(out, WeightResponse{
				ID:         wt.ID,
				PetID:      wt.PetID,
				MeasuredAt: wt.MeasuredAt.Format(localtime.DateLayout),
				WeightKg:   wt.WeightKg,
				CreatedAt:  wt.CreatedAt,
			})
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

func createWeightHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createWeightRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}

		d, err := validation.Time("bad_body", "measuredAt", req.MeasuredAt, localtime.ParseDate)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		wt, err := svc.AddWeight(r.Context(), chi.URLParam(r, "petID"), d, *req.WeightKg)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusCreated, map[string]string{"id": wt.ID})
	}
}

func ToResponse(p Pet) PetResponse {
	return PetResponse{
		ID:           p.ID,
		Name:         p.Name,
		Species:      p.Species,
		Breed:        p.Breed,
		Gender:       p.Gender,
		Coat:         p.Coat,
		Microchip:    p.Microchip,
		BirthDate:    localtime.FormatDate(p.BirthDate),
		AdoptionDate: localtime.FormatDate(p.AdoptionDate),
		ThemeColor:   p.ThemeColor,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// parseDate asume que el valor ya pasó validación.
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

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
