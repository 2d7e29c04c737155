package vetvisits

import (
	"context"

	"pet-health-log/internal/domain/vaccines"
)

type Repository interface {
	// CreateBundle guarda visita, peso, vacunas y orden de laboratorio en
	// una sola transacción.
	CreateBundle(ctx context.Context, b Bundle) error
	GetByID(ctx context.Context, id string) (Visit, error)
	List(ctx context.Context, petID string) ([]Visit, error)
	Update(ctx context.Context, v Visit) error

	ListApplications(ctx context.Context, visitID string) ([]vaccines.Application, error)
	ListLabItems(ctx context.Context, visitID string) ([]LabOrderItem, error)
}

type PetLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}
