package settings

import "context"

type Repository interface {
	Get(ctx context.Context, userID string) (Settings, error)
	// Save inserta o reemplaza la fila del usuario.
	Save(ctx context.Context, s Settings) error
}
