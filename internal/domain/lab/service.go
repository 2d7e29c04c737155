package lab

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-health-log/internal/platform/apperr"
)

const DefaultSpecies = "other"

type Service struct {
	repo Repository
	pets PetLookup
	now  func() time.Time
}

func NewService(repo Repository, pets PetLookup) *Service {
	return &Service{repo: repo, pets: pets, now: time.Now}
}

type TestTypeInput struct {
	Name     *string
	Species  *string
	Unit     *string
	RefLow   *float64
	RefHigh  *float64
	Category *string
}

func (s *Service) CreateTestType(ctx context.Context, in TestTypeInput) (TestType, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return TestType{}, apperr.ErrInvalidInput
	}
	now := s.now().UTC()
	t := TestType{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(*in.Name),
		Species:   DefaultSpecies,
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(&t, in)

	if err := s.repo.CreateTestType(ctx, t); err != nil {
		return TestType{}, duplicateName(err, t.Species)
	}
	return t, nil
}

func (s *Service) UpdateTestType(ctx context.Context, id string, in TestTypeInput) (TestType, error) {
	t, err := s.repo.GetTestType(ctx, id)
	if err != nil {
		return TestType{}, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return TestType{}, apperr.ErrInvalidInput
	}
	apply(&t, in)
	t.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateTestType(ctx, t); err != nil {
		return TestType{}, duplicateName(err, t.Species)
	}
	return t, nil
}

func apply(t *TestType, in TestTypeInput) {
	if in.Name != nil {
		t.Name = strings.TrimSpace(*in.Name)
	}
	if in.Species != nil {
		t.Species = *in.Species
	}
	if in.Unit != nil {
		t.Unit = *in.Unit
	}
	if in.RefLow != nil {
		t.RefLow = in.RefLow
	}
	if in.RefHigh != nil {
		t.RefHigh = in.RefHigh
	}
	if in.Category != nil {
		t.Category = *in.Category
	}
}

func duplicateName(err error, species string) error {
	if errors.Is(err, apperr.ErrDuplicate) {
		return apperr.Conflict("duplicate", map[string]any{"field": "name", "species": species})
	}
	return err
}

func (s *Service) ListTestTypes(ctx context.Context, f TypeFilter) ([]TestType, error) {
	return s.repo.ListTestTypes(ctx, f)
}

// ValueInput referencia el analito por id o por nombre.
type ValueInput struct {
	TestTypeID string
	Name       string
	Value      float64
	Unit       *string
}

type ResultInput struct {
	PetID       string
	CollectedAt time.Time
	LabName     string
	VetName     string
	Notes       string
	Values      []ValueInput
}

// CreateResult resuelve cada valor a un tipo existente (por id o nombre);
// los nombres desconocidos crean el tipo en la misma transacción.
func (s *Service) CreateResult(ctx context.Context, in ResultInput) (Result, error) {
	if len(in.Values) == 0 {
		return Result{}, apperr.Invalid("bad_body", "values required")
	}
	if ok, err := s.pets.Exists(ctx, in.PetID); err != nil {
		return Result{}, err
	} else if !ok {
		return Result{}, apperr.ErrNotFound
	}

	now := s.now().UTC()
	res := Result{
		ID:          uuid.NewString(),
		PetID:       in.PetID,
		CollectedAt: in.CollectedAt.UTC(),
		LabName:     in.LabName,
		VetName:     in.VetName,
		Notes:       in.Notes,
		CreatedAt:   now,
	}

	var newTypes []TestType
	created := map[string]TestType{}
	for _, v := range in.Values {
		t, err := s.resolveType(ctx, v)
		switch {
		case errors.Is(err, apperr.ErrNotFound) && v.TestTypeID == "" && v.Name != "":
			key := strings.ToLower(strings.TrimSpace(v.Name))
			nt, ok := created[key]
			if !ok {
				nt = TestType{
					ID:        uuid.NewString(),
					Name:      strings.TrimSpace(v.Name),
					Species:   DefaultSpecies,
					Unit:      deref(v.Unit),
					CreatedAt: now,
					UpdatedAt: now,
				}
				created[key] = nt
				newTypes = append(newTypes, nt)
			}
			t = nt
		case err != nil:
			return Result{}, err
		}

		unit := t.Unit
		if v.Unit != nil {
			unit = *v.Unit
		}
		res.Values = append(res.Values, Value{
			ID:         uuid.NewString(),
			ResultID:   res.ID,
			TestTypeID: t.ID,
			TestName:   t.Name,
			Value:      v.Value,
			Unit:       unit,
		})
	}

	if err := s.repo.CreateResult(ctx, res, newTypes); err != nil {
		return Result{}, err
	}
	return res, nil
}

func (s *Service) resolveType(ctx context.Context, v ValueInput) (TestType, error) {
	if v.TestTypeID != "" {
		return s.repo.GetTestType(ctx, v.TestTypeID)
	}
	if strings.TrimSpace(v.Name) == "" {
		return TestType{}, apperr.Invalid("bad_body", "testTypeId or name required")
	}
	return s.repo.FindTestTypeByName(ctx, strings.TrimSpace(v.Name))
}

func (s *Service) ListResults(ctx context.Context, petID string, limit, offset int) ([]Result, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.repo.ListResults(ctx, petID, limit, offset)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
