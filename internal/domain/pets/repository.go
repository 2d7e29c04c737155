package pets

import "context"

type Repository interface {
	Create(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	List(ctx context.Context, filter ListFilter) ([]Pet, error)
	Update(ctx context.Context, p Pet) error
	// Delete borra la mascota y todo lo que cuelga de ella.
	Delete(ctx context.Context, id string) error

	CreateWeight(ctx context.Context, w Weight) error
	ListWeights(ctx context.Context, petID string, limit, offset int) ([]Weight, error)
}
