package alerts

import (
	"context"
	"time"
)

// Source es la lectura que necesita el feed. petID vacío = todas las mascotas.
type Source interface {
	PetsWithBirthDate(ctx context.Context, petID string) ([]PetBirth, error)
	// LatestVaccineDoses: última aplicación por (mascota, vacuna), solo si
	// su next_dose_at es <= until.
	LatestVaccineDoses(ctx context.Context, petID string, until time.Time) ([]VaccineDose, error)
	// PendingGlycemiaPoints: puntos sin medir con expected_at <= until.
	PendingGlycemiaPoints(ctx context.Context, petID string, until time.Time) ([]GlycemiaCandidate, error)
	// LatestTreatments: último tratamiento por (mascota, tipo) con next_due_at <= until.
	LatestTreatments(ctx context.Context, petID string, until time.Time) ([]TreatmentDue, error)
}
