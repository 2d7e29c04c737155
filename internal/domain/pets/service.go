package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-health-log/internal/platform/apperr"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name         string
	Species      Species
	Breed        string
	Gender       Gender
	Coat         string
	Microchip    string
	BirthDate    *time.Time
	AdoptionDate *time.Time
	ThemeColor   string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	if strings.TrimSpace(in.Name) == "" || in.Species == "" {
		return Pet{}, apperr.ErrInvalidInput
	}

	now := s.now().UTC()
	p := Pet{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Species:      in.Species,
		Breed:        strings.TrimSpace(in.Breed),
		Gender:       in.Gender,
		Coat:         strings.TrimSpace(in.Coat),
		Microchip:    strings.TrimSpace(in.Microchip),
		BirthDate:    in.BirthDate,
		AdoptionDate: in.AdoptionDate,
		ThemeColor:   in.ThemeColor,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	return s.repo.GetByID(ctx, id)
}

// Exists implementa PetLookup para los demás módulos.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Pet, error) {
	if f.SortBy == "" {
		f.SortBy = SortByName
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

// UpdateInput: nil = no tocar.
type UpdateInput struct {
	Name         *string
	Species      *Species
	Breed        *string
	Gender       *Gender
	Coat         *string
	Microchip    *string
	BirthDate    *time.Time
	AdoptionDate *time.Time
	ThemeColor   *string
	IsActive     *bool
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Pet, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Pet{}, apperr.ErrInvalidInput
		}
		p.Name = name
	}
	if in.Species != nil {
		p.Species = *in.Species
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.Coat != nil {
		p.Coat = strings.TrimSpace(*in.Coat)
	}
	if in.Microchip != nil {
		p.Microchip = strings.TrimSpace(*in.Microchip)
	}
	if in.BirthDate != nil {
		p.BirthDate = in.BirthDate
	}
	if in.AdoptionDate != nil {
		p.AdoptionDate = in.AdoptionDate
	}
	if in.ThemeColor != nil {
		p.ThemeColor = *in.ThemeColor
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) AddWeight(ctx context.Context, petID string, measuredAt time.Time, kg float64) (Weight, error) {
	if kg < 0 {
		return Weight{}, apperr.ErrInvalidInput
	}
	if ok, err := s.Exists(ctx, petID); err != nil {
		return Weight{}, err
	} else if !ok {
		return Weight{}, apperr.ErrNotFound
	}

	w := Weight{
		ID:         uuid.NewString(),
		PetID:      petID,
		MeasuredAt: measuredAt.UTC().Truncate(24 * time.Hour),
		WeightKg:   kg,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.CreateWeight(ctx, w); err != nil {
		return Weight{}, err
	}
	return w, nil
}

func (s *Service) ListWeights(ctx context.Context, petID string, limit, offset int) ([]Weight, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListWeights(ctx, petID, limit, offset)
}
