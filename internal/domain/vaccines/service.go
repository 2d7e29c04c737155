package vaccines

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-health-log/internal/platform/apperr"
	"pet-health-log/internal/platform/localtime"
)

// DefaultDueWindow: sin "to", /vaccines/due mira 30 días hacia adelante.
const DefaultDueWindow = 30 * 24 * time.Hour

type Service struct {
	repo Repository
	pets PetLookup
	now  func() time.Time
}

func NewService(repo Repository, pets PetLookup) *Service {
	return &Service{repo: repo, pets: pets, now: time.Now}
}

type TypeInput struct {
	Name        *string
	Species     *string
	TotalDoses  *int
	Description *string
	Brand       *string
	Notes       *string
}

func (s *Service) CreateType(ctx context.Context, in TypeInput) (Type, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" || in.TotalDoses == nil || *in.TotalDoses < 1 {
		return Type{}, apperr.ErrInvalidInput
	}
	now := s.now().UTC()
	t := Type{ID: uuid.NewString(), Species: "other", CreatedAt: now, UpdatedAt: now}
	applyType(&t, in)

	if err := s.repo.CreateType(ctx, t); err != nil {
		return Type{}, duplicate(err)
	}
	return t, nil
}

func (s *Service) UpdateType(ctx context.Context, id string, in TypeInput) (Type, error) {
	if in == (TypeInput{}) {
		return Type{}, apperr.Invalid("bad_body", "empty")
	}
	t, err := s.repo.GetType(ctx, id)
	if err != nil {
		return Type{}, err
	}
	applyType(&t, in)
	t.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateType(ctx, t); err != nil {
		return Type{}, duplicate(err)
	}
	return t, nil
}

func applyType(t *Type, in TypeInput) {
	if in.Name != nil {
		t.Name = strings.TrimSpace(*in.Name)
	}
	if in.Species != nil {
		t.Species = *in.Species
	}
	if in.TotalDoses != nil {
		t.TotalDoses = *in.TotalDoses
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Brand != nil {
		t.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Notes != nil {
		t.Notes = strings.TrimSpace(*in.Notes)
	}
}

func duplicate(err error) error {
	if errors.Is(err, apperr.ErrDuplicate) {
		return apperr.Conflict("duplicate_name_brand", nil)
	}
	return err
}

func (s *Service) ListTypes(ctx context.Context, f TypeFilter) ([]Type, error) {
	return s.repo.ListTypes(ctx, f)
}

type ApplicationInput struct {
	PetID          string
	VaccineTypeID  string
	DoseNumber     int
	AdministeredAt time.Time
	AdministeredBy string
	Clinic         string
	NextDoseAt     *time.Time
	Notes          string
	Brand          string
}

func (s *Service) CreateApplication(ctx context.Context, in ApplicationInput) (Application, error) {
	if in.DoseNumber < 1 {
		return Application{}, apperr.ErrInvalidInput
	}
	if ok, err := s.pets.Exists(ctx, in.PetID); err != nil {
		return Application{}, err
	} else if !ok {
		return Application{}, apperr.ErrNotFound
	}
	if _, err := s.repo.GetType(ctx, in.VaccineTypeID); err != nil {
		return Application{}, err
	}

	a := NewApplication(in, s.now().UTC())
	if err := s.repo.CreateApplication(ctx, a); err != nil {
		return Application{}, err
	}
	return a, nil
}

// NewApplication arma la aplicación con id nuevo; la usa también vetvisits.
func NewApplication(in ApplicationInput, now time.Time) Application {
	return Application{
		ID:             uuid.NewString(),
		PetID:          in.PetID,
		VaccineTypeID:  in.VaccineTypeID,
		DoseNumber:     in.DoseNumber,
		AdministeredAt: in.AdministeredAt.UTC(),
		AdministeredBy: strings.TrimSpace(in.AdministeredBy),
		Clinic:         strings.TrimSpace(in.Clinic),
		NextDoseAt:     in.NextDoseAt,
		Notes:          strings.TrimSpace(in.Notes),
		Brand:          strings.TrimSpace(in.Brand),
		CreatedAt:      now,
	}
}

func (s *Service) ListApplications(ctx context.Context, petID string, limit, offset int) ([]Application, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.repo.ListApplications(ctx, petID, limit, offset)
}

type DueQuery struct {
	PetID          string
	From           *time.Time // fecha local; default hoy
	To             *time.Time // fecha local inclusive; default From + 30 días
	IncludeOverdue *bool      // default true
	OffsetMinutes  *int
	Limit          int
	Offset         int
}

// Due lista próximas dosis (dentro de [From, To]) y, si se pide, las
// vencidas (antes de hoy local). Vencidas primero, después por fecha.
func (s *Service) Due(ctx context.Context, q DueQuery) ([]DueDose, error) {
	off := localtime.OffsetOrDefault(q.OffsetMinutes)
	today := localtime.Today(s.now(), off)
	from := today
	if q.From != nil {
		from = *q.From
	}
	to := from.Add(DefaultDueWindow)
	if q.To != nil {
		to = *q.To
	}
	if to.Before(from) {
		return nil, apperr.Invalid("bad_query", "to must not be before from")
	}
	includeOverdue := q.IncludeOverdue == nil || *q.IncludeOverdue

	doses, err := s.repo.LatestDoses(ctx, q.PetID)
	if err != nil {
		return nil, err
	}

	// fechas locales a instantes: 00:00 local de cada día
	overdueBefore := localtime.ToUTC(today, 0, 0, off)
	start := localtime.ToUTC(from, 0, 0, off)
	end := localtime.ToUTC(to.AddDate(0, 0, 1), 0, 0, off)

	out := make([]DueDose, 0, len(doses))
	for _, d := range doses {
		switch {
		case d.NextDoseAt.Before(overdueBefore):
			if !includeOverdue {
				continue
			}
			d.Overdue = true
		case d.NextDoseAt.Before(start) || !d.NextDoseAt.Before(end):
			continue
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Overdue != out[j].Overdue {
			return out[i].Overdue
		}
		if !out[i].NextDoseAt.Equal(out[j].NextDoseAt) {
			return out[i].NextDoseAt.Before(out[j].NextDoseAt)
		}
		return out[i].ApplicationID < out[j].ApplicationID
	})

	return paginate(out, q.Limit, q.Offset), nil
}

func paginate(items []DueDose, limit, offset int) []DueDose {
	if limit <= 0 {
		limit = 100
	}
	if offset >= len(items) {
		return []DueDose{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
