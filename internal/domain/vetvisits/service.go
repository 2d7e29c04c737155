package vetvisits

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-health-log/internal/domain/pets"
	"pet-health-log/internal/domain/vaccines"
	"pet-health-log/internal/platform/apperr"
)

type Service struct {
	repo Repository
	pets PetLookup
	now  func() time.Time
}

func NewService(repo Repository, pets PetLookup) *Service {
	return &Service{repo: repo, pets: pets, now: time.Now}
}

// Fields son los campos editables de una visita; nil = no se toca.
type Fields struct {
	VisitedAt   *time.Time
	IsEmergency *bool
	VisitType   *VisitType
	Reason      *string

	WeightKg           *float64
	TempC              *float64
	HeartRateBpm       *int
	RespRateBpm        *int
	CapillaryRefillSec *float64
	PainScore          *int

	ExamSummary      *string
	Findings         *string
	Diagnosis        *string
	DifferentialDx   *string
	ProceduresDone   *string
	MedsAdministered *string
	Prescriptions    *string
	Allergies        *string
	ReproStatus      *string

	NextVisitAt   *time.Time
	Clinic        *string
	VetName       *string
	CostTotal     *float64
	PaidTotal     *float64
	PaymentMethod *string
	Notes         *string
}

type VaccineAppInput struct {
	VaccineTypeID  string
	DoseNumber     int
	AdministeredAt *time.Time // default: fecha de la visita
	AdministeredBy string
	Clinic         string // default: clínica de la visita
	NextDoseAt     *time.Time
	Notes          string
	Brand          string
}

type LabOrderInput struct {
	LabTypeID string
	Notes     string
}

type CreateInput struct {
	PetID string
	Fields
	VaccineApps []VaccineAppInput
	LabOrders   []LabOrderInput
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Visit, error) {
	if in.VisitedAt == nil {
		return Visit{}, apperr.Invalid("bad_body", "visitedAt is required")
	}
	if ok, err := s.pets.Exists(ctx, in.PetID); err != nil {
		return Visit{}, err
	} else if !ok {
		return Visit{}, apperr.ErrNotFound
	}

	now := s.now().UTC()
	v := Visit{ID: uuid.NewString(), PetID: in.PetID, VisitType: VisitRoutine, CreatedAt: now, UpdatedAt: now}
	apply(&v, in.Fields)
	if in.VisitType == nil && v.IsEmergency {
		v.VisitType = VisitEmergency
	}

	visitDay := v.VisitedAt.Truncate(24 * time.Hour)
	b := Bundle{Visit: v}

	if v.WeightKg != nil {
		b.Weight = &pets.Weight{
			ID:         uuid.NewString(),
			PetID:      v.PetID,
			MeasuredAt: visitDay,
			WeightKg:   *v.WeightKg,
			CreatedAt:  now,
		}
	}

	for _, va := range in.VaccineApps {
		if va.DoseNumber < 1 || va.VaccineTypeID == "" {
			return Visit{}, apperr.Invalid("bad_body", "vaccineApps: vaccineTypeId and doseNumber are required")
		}
		administered := visitDay
		if va.AdministeredAt != nil {
			administered = *va.AdministeredAt
		}
		clinic := va.Clinic
		if clinic == "" {
			clinic = v.Clinic
		}
		app := vaccines.NewApplication(vaccines.ApplicationInput{
			PetID:          v.PetID,
			VaccineTypeID:  va.VaccineTypeID,
			DoseNumber:     va.DoseNumber,
			AdministeredAt: administered,
			AdministeredBy: va.AdministeredBy,
			Clinic:         clinic,
			NextDoseAt:     va.NextDoseAt,
			Notes:          va.Notes,
			Brand:          va.Brand,
		}, now)
		app.VetVisitID = v.ID
		b.Applications = append(b.Applications, app)
	}

	if len(in.LabOrders) > 0 {
		order := &LabOrder{ID: uuid.NewString(), VisitID: v.ID, CreatedAt: now}
		for _, lo := range in.LabOrders {
			if lo.LabTypeID == "" {
				return Visit{}, apperr.Invalid("bad_body", "labOrders: labTypeId is required")
			}
			order.Items = append(order.Items, LabOrderItem{
				ID:        uuid.NewString(),
				OrderID:   order.ID,
				LabTypeID: lo.LabTypeID,
				Notes:     strings.TrimSpace(lo.Notes),
				CreatedAt: now,
			})
		}
		b.LabOrder = order
	}

	if err := s.repo.CreateBundle(ctx, b); err != nil {
		return Visit{}, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	apps, err := s.repo.ListApplications(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	items, err := s.repo.ListLabItems(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Visit: v, Applications: apps, LabItems: items}, nil
}

func (s *Service) List(ctx context.Context, petID string) ([]Visit, error) {
	return s.repo.List(ctx, petID)
}

func (s *Service) Update(ctx context.Context, id string, f Fields) (Visit, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Visit{}, err
	}
	apply(&v, f)
	v.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, v); err != nil {
		return Visit{}, err
	}
	return v, nil
}

func apply(v *Visit, f Fields) {
	if f.VisitedAt != nil {
		v.VisitedAt = f.VisitedAt.UTC()
	}
	set(&v.IsEmergency, f.IsEmergency)
	set(&v.VisitType, f.VisitType)
	setText(&v.Reason, f.Reason)

	setPtr(&v.WeightKg, f.WeightKg)
	setPtr(&v.TempC, f.TempC)
	setPtr(&v.HeartRateBpm, f.HeartRateBpm)
	setPtr(&v.RespRateBpm, f.RespRateBpm)
	setPtr(&v.CapillaryRefillSec, f.CapillaryRefillSec)
	setPtr(&v.PainScore, f.PainScore)

	setText(&v.ExamSummary, f.ExamSummary)
	setText(&v.Findings, f.Findings)
	setText(&v.Diagnosis, f.Diagnosis)
	setText(&v.DifferentialDx, f.DifferentialDx)
	setText(&v.ProceduresDone, f.ProceduresDone)
	setText(&v.MedsAdministered, f.MedsAdministered)
	setText(&v.Prescriptions, f.Prescriptions)
	setText(&v.Allergies, f.Allergies)
	setText(&v.ReproStatus, f.ReproStatus)

	setPtr(&v.NextVisitAt, f.NextVisitAt)
	setText(&v.Clinic, f.Clinic)
	setText(&v.VetName, f.VetName)
	setPtr(&v.CostTotal, f.CostTotal)
	setPtr(&v.PaidTotal, f.PaidTotal)
	setText(&v.PaymentMethod, f.PaymentMethod)
	setText(&v.Notes, f.Notes)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setPtr[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func setText(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
