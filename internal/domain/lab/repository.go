package lab

import "context"

type Repository interface {
	CreateTestType(ctx context.Context, t TestType) error
	GetTestType(ctx context.Context, id string) (TestType, error)
	UpdateTestType(ctx context.Context, t TestType) error
	ListTestTypes(ctx context.Context, f TypeFilter) ([]TestType, error)
	// FindTestTypeByName busca sin distinguir mayúsculas, en cualquier especie.
	FindTestTypeByName(ctx context.Context, name string) (TestType, error)

	// CreateResult guarda tipos nuevos, resultado y valores en una transacción.
	CreateResult(ctx context.Context, r Result, newTypes []TestType) error
	ListResults(ctx context.Context, petID string, limit, offset int) ([]Result, error)
}

type PetLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}
