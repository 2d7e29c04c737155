package postgres

import (
	"context"
	"database/sql"

	"pet-health-log/internal/domain/treatments"
)

type TreatmentsRepo struct {
	db *sql.DB
}

func NewTreatmentsRepo(db *sql.DB) *TreatmentsRepo {
	return &TreatmentsRepo{db: db}
}

const treatmentColumns = `
	id, pet_id, type, type_label, product_name, administered_at,
	next_due_at, dose_info, notes, created_at`

func (r *TreatmentsRepo) Create(ctx context.Context, t treatments.Treatment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO treatments (`+treatmentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		t.ID,
		t.PetID,
		t.Type,
		t.TypeLabel,
		t.ProductName,
		t.AdministeredAt,
		nullTime(t.NextDueAt),
		t.DoseInfo,
		t.Notes,
		t.CreatedAt,
	)
	return mapErr(err)
}

func (r *TreatmentsRepo) GetByID(ctx context.Context, id string) (treatments.Treatment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+treatmentColumns+` FROM treatments WHERE id = $1`, id)
	t, err := scanTreatment(row)
	if err != nil {
		return treatments.Treatment{}, mapErr(err)
	}
	return t, nil
}

func (r *TreatmentsRepo) List(ctx context.Context, petID string) ([]treatments.Treatment, error) {
	return queryTreatments(ctx, r.db, `
		SELECT `+treatmentColumns+`
		FROM treatments
		WHERE ($1 = '' OR pet_id = $1)
		ORDER BY administered_at DESC, id
	`, petID)
}

func queryTreatments(ctx context.Context, db querier, query string, args ...any) ([]treatments.Treatment, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]treatments.Treatment, 0)
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTreatment(s scanner) (treatments.Treatment, error) {
	var (
		t    treatments.Treatment
		next sql.NullTime
	)
	if err := s.Scan(
		&t.ID,
		&t.PetID,
		&t.Type,
		&t.TypeLabel,
		&t.ProductName,
		&t.AdministeredAt,
		&next,
		&t.DoseInfo,
		&t.Notes,
		&t.CreatedAt,
	); err != nil {
		return treatments.Treatment{}, err
	}
	t.AdministeredAt = t.AdministeredAt.UTC()
	t.NextDueAt = timePtr(next)
	return t, nil
}

var _ treatments.Repository = (*TreatmentsRepo)(nil)
