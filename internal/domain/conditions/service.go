package conditions

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-health-log/internal/domain/lab"
	"pet-health-log/internal/domain/treatments"
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

// Input sirve para crear y para actualizar; nil = sin cambio (o default).
type Input struct {
	Name        *string
	Curability  *Curability
	Status      *Status
	Severity    *Severity
	DiagnosedAt *time.Time
	ResolvedAt  *time.Time
	Notes       *string
}

func (s *Service) Create(ctx context.Context, petID string, in Input) (Condition, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return Condition{}, apperr.Invalid("bad_body", "name is required")
	}
	if ok, err := s.pets.Exists(ctx, petID); err != nil {
		return Condition{}, err
	} else if !ok {
		return Condition{}, apperr.ErrNotFound
	}

	now := s.now().UTC()
	c := Condition{
		ID:         uuid.NewString(),
		PetID:      petID,
		Curability: CurabilityNA,
		Status:     StatusActive,
		Severity:   SeverityModerate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	apply(&c, in)

	if err := s.repo.Create(ctx, c); err != nil {
		return Condition{}, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (Condition, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]Condition, error) {
	return s.repo.ListByPet(ctx, petID)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Condition, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Condition{}, err
	}
	apply(&c, in)
	c.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		return Condition{}, err
	}
	return c, nil
}

func apply(c *Condition, in Input) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Curability != nil {
		c.Curability = *in.Curability
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	if in.Severity != nil {
		c.Severity = *in.Severity
	}
	if in.DiagnosedAt != nil {
		d := *in.DiagnosedAt
		c.DiagnosedAt = &d
	}
	if in.ResolvedAt != nil {
		d := *in.ResolvedAt
		c.ResolvedAt = &d
	}
	if in.Notes != nil {
		c.Notes = strings.TrimSpace(*in.Notes)
	}
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Link(ctx context.Context, id string, kind LinkKind, targetID string) error {
	if targetID == "" {
		return apperr.Invalid("bad_body", "target id is required")
	}
	return s.repo.Link(ctx, id, kind, targetID)
}

func (s *Service) Unlink(ctx context.Context, id string, kind LinkKind, targetID string) error {
	return s.repo.Unlink(ctx, id, kind, targetID)
}

func (s *Service) LinkedLabTypes(ctx context.Context, id string) ([]lab.TestType, error) {
	return s.repo.LinkedLabTypes(ctx, id)
}

func (s *Service) LinkedLabResults(ctx context.Context, id string) ([]lab.Result, error) {
	return s.repo.LinkedLabResults(ctx, id)
}

func (s *Service) LinkedTreatments(ctx context.Context, id string) ([]treatments.Treatment, error) {
	return s.repo.LinkedTreatments(ctx, id)
}

type NoteInput struct {
	Content          *string
	StatusSnapshot   *Status
	SeveritySnapshot *Severity
}

func (s *Service) AddNote(ctx context.Context, conditionID string, in NoteInput) (Note, error) {
	if in.Content == nil || strings.TrimSpace(*in.Content) == "" {
		return Note{}, apperr.Invalid("bad_body", "content is required")
	}
	if _, err := s.repo.GetByID(ctx, conditionID); err != nil {
		return Note{}, err
	}

	now := s.now().UTC()
	n := Note{ID: uuid.NewString(), ConditionID: conditionID, CreatedAt: now, UpdatedAt: now}
	applyNote(&n, in)

	if err := s.repo.CreateNote(ctx, n); err != nil {
		return Note{}, err
	}
	return n, nil
}

func (s *Service) ListNotes(ctx context.Context, conditionID string) ([]Note, error) {
	return s.repo.ListNotes(ctx, conditionID)
}

func (s *Service) UpdateNote(ctx context.Context, id string, in NoteInput) (Note, error) {
	n, err := s.repo.GetNote(ctx, id)
	if err != nil {
		return Note{}, err
	}
	applyNote(&n, in)
	n.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateNote(ctx, n); err != nil {
		return Note{}, err
	}
	return n, nil
}

func applyNote(n *Note, in NoteInput) {
	if in.Content != nil {
		n.Content = strings.TrimSpace(*in.Content)
	}
	if in.StatusSnapshot != nil {
		st := *in.StatusSnapshot
		n.StatusSnapshot = &st
	}
	if in.SeveritySnapshot != nil {
		sv := *in.SeveritySnapshot
		n.SeveritySnapshot = &sv
	}
}

func (s *Service) DeleteNote(ctx context.Context, id string) error {
	return s.repo.DeleteNote(ctx, id)
}
