package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-health-log/internal/domain/vaccines"
)

type VaccinesRepo struct {
	db *sql.DB
}

func NewVaccinesRepo(db *sql.DB) *VaccinesRepo {
	return &VaccinesRepo{db: db}
}

const (
	vaccineTypeColumns = `id, name, species, total_doses, description, brand, notes, created_at, updated_at`

	applicationColumns = `
	id, pet_id, vaccine_type_id, dose_number, administered_at, administered_by,
	clinic, next_dose_at, notes, brand, vet_visit_id, created_at`
)

func (r *VaccinesRepo) CreateType(ctx context.Context, t vaccines.Type) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vaccine_types (`+vaccineTypeColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, t.ID, t.Name, t.Species, t.TotalDoses, t.Description, t.Brand, t.Notes, t.CreatedAt, t.UpdatedAt)
	return mapErr(err)
}

func (r *VaccinesRepo) GetType(ctx context.Context, id string) (vaccines.Type, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+vaccineTypeColumns+` FROM vaccine_types WHERE id = $1`, id)
	t, err := scanVaccineType(row)
	if err != nil {
		return vaccines.Type{}, mapErr(err)
	}
	return t, nil
}

func (r *VaccinesRepo) UpdateType(ctx context.Context, t vaccines.Type) error {
	return mustAffect(r.db.ExecContext(ctx, `
		UPDATE vaccine_types
		SET name = $2, species = $3, total_doses = $4, description = $5, brand = $6, notes = $7, updated_at = $8
		WHERE id = $1
	`, t.ID, t.Name, t.Species, t.TotalDoses, t.Description, t.Brand, t.Notes, t.UpdatedAt))
}

func (r *VaccinesRepo) ListTypes(ctx context.Context, f vaccines.TypeFilter) ([]vaccines.Type, error) {
	var (
		where []string
		args  []any
	)
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, likePattern(q))
		where = append(where, fmt.Sprintf("lower(name) LIKE $%d", len(args)))
	}
	if f.Species != "" {
		args = append(args, f.Species)
		where = append(where, fmt.Sprintf("species = $%d", len(args)))
	}
	query := `SELECT ` + vaccineTypeColumns + ` FROM vaccine_types`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY lower(name), lower(brand), id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]vaccines.Type, 0)
	for rows.Next() {
		t, err := scanVaccineType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func insertApplication(ctx context.Context, db execer, a vaccines.Application) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO vaccine_applications (`+applicationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		a.ID,
		a.PetID,
		a.VaccineTypeID,
		a.DoseNumber,
		a.AdministeredAt,
		a.AdministeredBy,
		a.Clinic,
		nullTime(a.NextDoseAt),
		a.Notes,
		a.Brand,
		nullEmpty(a.VetVisitID),
		a.CreatedAt,
	)
	return err
}

func (r *VaccinesRepo) CreateApplication(ctx context.Context, a vaccines.Application) error {
	return mapErr(insertApplication(ctx, r.db, a))
}

func (r *VaccinesRepo) ListApplications(ctx context.Context, petID string, limit, offset int) ([]vaccines.Application, error) {
	return queryApplications(ctx, r.db, `
		SELECT `+applicationColumns+`
		FROM vaccine_applications
		WHERE ($1 = '' OR pet_id = $1)
		ORDER BY administered_at DESC, created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, petID, limitOrAll(limit), offset)
}

// latestDosesSQL deja, por par (mascota, vacuna), solo la aplicación más
// reciente, y de esas solo las que tienen next_dose_at.
const latestDosesSQL = `
	SELECT l.id, l.pet_id, p.name, l.vaccine_type_id, t.name, l.dose_number, l.administered_at, l.next_dose_at
	FROM (
		SELECT DISTINCT ON (pet_id, vaccine_type_id)
			id, pet_id, vaccine_type_id, dose_number, administered_at, next_dose_at
		FROM vaccine_applications
		WHERE ($1 = '' OR pet_id = $1)
		ORDER BY pet_id, vaccine_type_id, administered_at DESC, created_at DESC, id DESC
	) l
	JOIN pets p ON p.id = l.pet_id
	JOIN vaccine_types t ON t.id = l.vaccine_type_id
	WHERE l.next_dose_at IS NOT NULL`

func (r *VaccinesRepo) LatestDoses(ctx context.Context, petID string) ([]vaccines.DueDose, error) {
	rows, err := r.db.QueryContext(ctx, latestDosesSQL+` ORDER BY l.pet_id, l.vaccine_type_id`, petID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]vaccines.DueDose, 0)
	for rows.Next() {
		var d vaccines.DueDose
		if err := rows.Scan(
			&d.ApplicationID,
			&d.PetID,
			&d.PetName,
			&d.VaccineTypeID,
			&d.VaccineName,
			&d.DoseNumber,
			&d.AdministeredAt,
			&d.NextDoseAt,
		); err != nil {
			return nil, err
		}
		d.AdministeredAt = d.AdministeredAt.UTC()
		d.NextDoseAt = d.NextDoseAt.UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryApplications(ctx context.Context, db querier, query string, args ...any) ([]vaccines.Application, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]vaccines.Application, 0)
	for rows.Next() {
		var (
			a     vaccines.Application
			next  sql.NullTime
			visit sql.NullString
		)
		if err := rows.Scan(
			&a.ID,
			&a.PetID,
			&a.VaccineTypeID,
			&a.DoseNumber,
			&a.AdministeredAt,
			&a.AdministeredBy,
			&a.Clinic,
			&next,
			&a.Notes,
			&a.Brand,
			&visit,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.AdministeredAt = a.AdministeredAt.UTC()
		a.NextDoseAt = timePtr(next)
		a.VetVisitID = visit.String
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanVaccineType(s scanner) (vaccines.Type, error) {
	var t vaccines.Type
	if err := s.Scan(&t.ID, &t.Name, &t.Species, &t.TotalDoses, &t.Description, &t.Brand, &t.Notes, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return vaccines.Type{}, err
	}
	return t, nil
}

var _ vaccines.Repository = (*VaccinesRepo)(nil)
