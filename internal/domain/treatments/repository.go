package treatments

import "context"

type Repository interface {
	Create(ctx context.Context, t Treatment) error
	GetByID(ctx context.Context, id string) (Treatment, error)
	// List ordena por administered_at descendente. petID vacío = todas.
	List(ctx context.Context, petID string) ([]Treatment, error)
}

type PetLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}
