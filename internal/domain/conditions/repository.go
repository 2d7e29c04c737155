package conditions

import (
	"context"

	"pet-health-log/internal/domain/lab"
	"pet-health-log/internal/domain/treatments"
)

type Repository interface {
	Create(ctx context.Context, c Condition) error
	GetByID(ctx context.Context, id string) (Condition, error)
	ListByPet(ctx context.Context, petID string) ([]Condition, error)
	Update(ctx context.Context, c Condition) error
	// Delete borra la condición con sus notas y vínculos.
	Delete(ctx context.Context, id string) error

	// Link es idempotente. ErrNotFound si no existe la condición o el destino.
	Link(ctx context.Context, conditionID string, kind LinkKind, targetID string) error
	Unlink(ctx context.Context, conditionID string, kind LinkKind, targetID string) error
	LinkedLabTypes(ctx context.Context, conditionID string) ([]lab.TestType, error)
	LinkedLabResults(ctx context.Context, conditionID string) ([]lab.Result, error)
	LinkedTreatments(ctx context.Context, conditionID string) ([]treatments.Treatment, error)

	CreateNote(ctx context.Context, n Note) error
	GetNote(ctx context.Context, id string) (Note, error)
	ListNotes(ctx context.Context, conditionID string) ([]Note, error)
	UpdateNote(ctx context.Context, n Note) error
	DeleteNote(ctx context.Context, id string) error
}

type PetLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}
