package treatments

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

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

type CreateInput struct {
	PetID          string
	Type           string
	TypeLabel      string
	ProductName    string
	AdministeredAt time.Time
	NextDueAt      *time.Time
	DoseInfo       string
	Notes          string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Treatment, error) {
	if strings.TrimSpace(in.Type) == "" || in.AdministeredAt.IsZero() {
		return Treatment{}, apperr.ErrInvalidInput
	}
	if ok, err := s.pets.Exists(ctx, in.PetID); err != nil {
		return Treatment{}, err
	} else if !ok {
		return Treatment{}, apperr.ErrNotFound
	}

	t := Treatment{
		ID:             uuid.NewString(),
		PetID:          in.PetID,
		Type:           strings.TrimSpace(in.Type),
		TypeLabel:      strings.TrimSpace(in.TypeLabel),
		ProductName:    strings.TrimSpace(in.ProductName),
		AdministeredAt: in.AdministeredAt.UTC(),
		DoseInfo:       strings.TrimSpace(in.DoseInfo),
		Notes:          strings.TrimSpace(in.Notes),
		CreatedAt:      s.now().UTC(),
	}
	if in.NextDueAt != nil {
		next := in.NextDueAt.UTC()
		t.NextDueAt = &next
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return Treatment{}, err
	}
	return t, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Treatment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, petID string) ([]Treatment, error) {
	return s.repo.List(ctx, petID)
}
