package vaccines

import "context"

type Repository interface {
	CreateType(ctx context.Context, t Type) error
	GetType(ctx context.Context, id string) (Type, error)
	UpdateType(ctx context.Context, t Type) error
	ListTypes(ctx context.Context, f TypeFilter) ([]Type, error)

	CreateApplication(ctx context.Context, a Application) error
	ListApplications(ctx context.Context, petID string, limit, offset int) ([]Application, error)

	// LatestDoses devuelve, por par (mascota, vacuna), la aplicación más
	// reciente si tiene next_dose_at. petID vacío = todas las mascotas.
	LatestDoses(ctx context.Context, petID string) ([]DueDose, error)
}

type PetLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}
