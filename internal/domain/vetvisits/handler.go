package vetvisits

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-health-log/internal/domain/vaccines"
	"pet-health-log/internal/platform/httpjson"
	"pet-health-log/internal/platform/localtime"
)

// RegisterRoutes monta el módulo en /vet-visits y en /vet/visits (ruta vieja).
func RegisterRoutes(r chi.Router, svc *Service) {
	for _, base := range []string{"/vet-visits", "/vet/visits"} {
		r.Get(base, listHandler(svc))
		r.Post(base, createHandler(svc))
		r.Get(base+"/{visitID}", getHandler(svc))
		r.Put(base+"/{visitID}", updateHandler(svc))
	}
}

type visitFields struct {
	VisitedAt   *string `json:"visitedAt" validate:"omitempty,dateordt"`
	IsEmergency *bool   `json:"isEmergency"`
	VisitType   *string `json:"visitType" validate:"omitempty,oneof=routine return emergency tele"`
	Reason      *string `json:"reason" validate:"omitempty,max=1000"`

	WeightKg           *float64 `json:"weightKg" validate:"omitempty,gt=0"`
	TempC              *float64 `json:"tempC" validate:"omitempty,gt=0"`
	HeartRateBpm       *int     `json:"heartRateBpm" validate:"omitempty,gt=0"`
	RespRateBpm        *int     `json:"respRateBpm" validate:"omitempty,gt=0"`
	CapillaryRefillSec *float64 `json:"capillaryRefillSec" validate:"omitempty,gt=0"`
	PainScore          *int     `json:"painScore" validate:"omitempty,min=0,max=10"`

	ExamSummary      *string `json:"examSummary" validate:"omitempty,max=4000"`
	Findings         *string `json:"findings" validate:"omitempty,max=4000"`
	Diagnosis        *string `json:"diagnosis" validate:"omitempty,max=4000"`
	DifferentialDx   *string `json:"differentialDx" validate:"omitempty,max=4000"`
	ProceduresDone   *string `json:"proceduresDone" validate:"omitempty,max=4000"`
	MedsAdministered *string `json:"medsAdministered" validate:"omitempty,max=4000"`
	Prescriptions    *string `json:"prescriptions" validate:"omitempty,max=4000"`
	Allergies        *string `json:"allergies" validate:"omitempty,max=1000"`
	ReproStatus      *string `json:"reproStatus" validate:"omitempty,max=100"`

	NextVisitAt   *string  `json:"nextVisitAt" validate:"omitempty,dateordt"`
	Clinic        *string  `json:"clinic" validate:"omitempty,max=200"`
	VetName       *string  `json:"vetName" validate:"omitempty,max=200"`
	CostTotal     *float64 `json:"costTotal" validate:"omitempty,gte=0"`
	PaidTotal     *float64 `json:"paidTotal" validate:"omitempty,gte=0"`
	PaymentMethod *string  `json:"paymentMethod" validate:"omitempty,max=50"`
	Notes         *string  `json:"notes" validate:"omitempty,max=4000"`
}

type vaccineAppRequest struct {
	VaccineTypeID  string  `json:"vaccineTypeId" validate:"required"`
	DoseNumber     int     `json:"doseNumber" validate:"required,min=1"`
	AdministeredAt *string `json:"administeredAt" validate:"omitempty,dateordt"`
	AdministeredBy *string `json:"administeredBy" validate:"omitempty,max=200"`
	Clinic         *string `json:"clinic" validate:"omitempty,max=200"`
	NextDoseAt     *string `json:"nextDoseAt" validate:"omitempty,dateordt"`
	Notes          *string `json:"notes" validate:"omitempty,max=1000"`
	Brand          *string `json:"brand" validate:"omitempty,max=100"`
}

type labOrderRequest struct {
	LabTypeID string  `json:"labTypeId" validate:"required"`
	Notes     *string `json:"notes" validate:"omitempty,max=1000"`
}

type createRequest struct {
	PetID string `json:"petId" validate:"required"`
	visitFields
	VaccineApps []vaccineAppRequest `json:"vaccineApps" validate:"omitempty,dive"`
	LabOrders   []labOrderRequest   `json:"labOrders" validate:"omitempty,dive"`
}

type listQuery struct {
	PetID string `query:"petId"`
}

type Response struct {
	ID          string    `json:"id"`
	PetID       string    `json:"pet_id"`
	VisitedAt   time.Time `json:"visited_at"`
	IsEmergency bool      `json:"is_emergency"`
	VisitType   VisitType `json:"visit_type"`
	Reason      string    `json:"reason"`

	WeightKg           *float64 `json:"weight_kg"`
	TempC              *float64 `json:"temp_c"`
	HeartRateBpm       *int     `json:"heart_rate_bpm"`
	RespRateBpm        *int     `json:"resp_rate_bpm"`
	CapillaryRefillSec *float64 `json:"capillary_refill_sec"`
	PainScore          *int     `json:"pain_score"`

	ExamSummary      string `json:"exam_summary"`
	Findings         string `json:"findings"`
	Diagnosis        string `json:"diagnosis"`
	DifferentialDx   string `json:"differential_dx"`
	ProceduresDone   string `json:"procedures_done"`
	MedsAdministered string `json:"meds_administered"`
	Prescriptions    string `json:"prescriptions"`
	Allergies        string `json:"allergies"`
	ReproStatus      string `json:"repro_status"`

	NextVisitAt   *time.Time `json:"next_visit_at"`
	Clinic        string     `json:"clinic"`
	VetName       string     `json:"vet_name"`
	CostTotal     *float64   `json:"cost_total"`
	PaidTotal     *float64   `json:"paid_total"`
	PaymentMethod string     `json:"payment_method"`
	Notes         string     `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LabItemResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	LabTypeID   string    `json:"lab_type_id"`
	LabTypeName string    `json:"lab_type_name"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

type DetailResponse struct {
	Response
	Vaccines []vaccines.ApplicationResponse `json:"vaccines"`
	LabItems []LabItemResponse              `json:"lab_items"`
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
		for _, v := range items {
			out = append(out, Response(v))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

// createHandler godoc
// @Summary Registrar visita veterinaria
// @Description Crea en una transacción la visita, el peso del día (si no había uno), las vacunas aplicadas y la orden de laboratorio.
// @Tags vet-visits
// @Accept json
// @Produce json
// @Param payload body createRequest true "Visita"
// @Success 201 {object} map[string]string "{id}"
// @Failure 404 {object} map[string]string "mascota, vacuna o examen inexistente"
// @Router /vet-visits [post]
func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}

		in := CreateInput{PetID: req.PetID, Fields: req.fields()}
		for _, va := range req.VaccineApps {
			in.VaccineApps = append(in.VaccineApps, VaccineAppInput{
				VaccineTypeID:  va.VaccineTypeID,
				DoseNumber:     va.DoseNumber,
				AdministeredAt: parseDate(va.AdministeredAt),
				AdministeredBy: deref(va.AdministeredBy),
				Clinic:         deref(va.Clinic),
				NextDoseAt:     parseDate(va.NextDoseAt),
				Notes:          deref(va.Notes),
				Brand:          deref(va.Brand),
			})
		}
		for _, lo := range req.LabOrders {
			in.LabOrders = append(in.LabOrders, LabOrderInput{LabTypeID: lo.LabTypeID, Notes: deref(lo.Notes)})
		}

		v, err := svc.Create(r.Context(), in)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusCreated, map[string]string{"id": v.ID})
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.Get(r.Context(), chi.URLParam(r, "visitID"))
		if err != nil {
			httpjson.Error(w, err)
			return
		}

		out := DetailResponse{
			Response: Response(d.Visit),
			Vaccines: make([]vaccines.ApplicationResponse, 0, len(d.Applications)),
			LabItems: make([]LabItemResponse, 0, len(d.LabItems)),
		}
		for _, a := range d.Applications {
			out.Vaccines = append(out.Vaccines, vaccines.ToApplicationResponse(a))
		}
		for _, it := range d.LabItems {
			out.LabItems = append(out.LabItems, LabItemResponse(it))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

func updateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req visitFields
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}
		if _, err := svc.Update(r.Context(), chi.URLParam(r, "visitID"), req.fields()); err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]bool{"updated": true})
	}
}

func (f visitFields) fields() Fields {
	out := Fields{
		VisitedAt:          parseDate(f.VisitedAt),
		IsEmergency:        f.IsEmergency,
		Reason:             f.Reason,
		WeightKg:           f.WeightKg,
		TempC:              f.TempC,
		HeartRateBpm:       f.HeartRateBpm,
		RespRateBpm:        f.RespRateBpm,
		CapillaryRefillSec: f.CapillaryRefillSec,
		PainScore:          f.PainScore,
		ExamSummary:        f.ExamSummary,
		Findings:           f.Findings,
		Diagnosis:          f.Diagnosis,
		DifferentialDx:     f.DifferentialDx,
		ProceduresDone:     f.ProceduresDone,
		MedsAdministered:   f.MedsAdministered,
		Prescriptions:      f.Prescriptions,
		Allergies:          f.Allergies,
		ReproStatus:        f.ReproStatus,
		NextVisitAt:        parseDate(f.NextVisitAt),
		Clinic:             f.Clinic,
		VetName:            f.VetName,
		CostTotal:          f.CostTotal,
		PaidTotal:          f.PaidTotal,
		PaymentMethod:      f.PaymentMethod,
		Notes:              f.Notes,
	}
	if f.VisitType != nil {
		vt := VisitType(*f.VisitType)
		out.VisitType = &vt
	}
	return out
}

// parseDate acepta fecha o fecha-hora; ya validado por dateordt.
func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := localtime.ParseDateOrDateTime(*s)
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
