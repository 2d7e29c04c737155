package glycemia

import "context"

type Repository interface {
	// CreateSession guarda sesión y puntos en una sola transacción.
	CreateSession(ctx context.Context, s Session, points []Point) error
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context, petID string, limit, offset int) ([]Session, error)
	ListPoints(ctx context.Context, sessionID string) ([]Point, error)
	// UpdateSession guarda la sesión y los puntos recibidos, atómicamente.
	UpdateSession(ctx context.Context, s Session, points []Point) error
	GetPoint(ctx context.Context, sessionID string, idx int) (Point, error)
	UpdatePoint(ctx context.Context, p Point) error
	DeleteSession(ctx context.Context, id string) (DeleteResult, error)
}

type PetLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}
