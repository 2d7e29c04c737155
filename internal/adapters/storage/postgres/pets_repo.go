package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-health-log/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, name, species, breed, gender, coat, microchip,
	birth_date, adoption_date, theme_color, is_active,
	created_at, updated_at`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		p.ID,
		p.Name,
		string(p.Species),
		p.Breed,
		string(p.Gender),
		p.Coat,
		p.Microchip,
		nullTime(p.BirthDate),
		nullTime(p.AdoptionDate),
		p.ThemeColor,
		p.IsActive,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapErr(err)
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	return mustAffect(r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			species = $3,
			breed = $4,
			gender = $5,
			coat = $6,
			microchip = $7,
			birth_date = $8,
			adoption_date = $9,
			theme_color = $10,
			is_active = $11,
			updated_at = $12
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		string(p.Species),
		p.Breed,
		string(p.Gender),
		p.Coat,
		p.Microchip,
		nullTime(p.BirthDate),
		nullTime(p.AdoptionDate),
		p.ThemeColor,
		p.IsActive,
		p.UpdatedAt,
	))
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, strings.TrimSpace(id))
	p, err := scanPet(row)
	if err != nil {
		return pets.Pet{}, mapErr(err)
	}
	return p, nil
}

// petOrder arma el ORDER BY desde valores cerrados, nunca desde input crudo.
func petOrder(by pets.SortBy, desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	switch by {
	case pets.SortByBirthDate:
		return fmt.Sprintf("birth_date %s NULLS LAST, id", dir)
	case pets.SortByAdoptionDate:
		return fmt.Sprintf("adoption_date %s NULLS LAST, id", dir)
	default:
		return fmt.Sprintf("lower(name) %s, id", dir)
	}
}

func (r *PetsRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	var (
		where []string
		args  []any
	)
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, likePattern(q))
		where = append(where, fmt.Sprintf("lower(name) LIKE $%d", len(args)))
	}
	if f.Species != "" {
		args = append(args, string(f.Species))
		where = append(where, fmt.Sprintf("species = $%d", len(args)))
	}
	if f.Gender != "" {
		args = append(args, string(f.Gender))
		where = append(where, fmt.Sprintf("gender = $%d", len(args)))
	}

	query := `SELECT ` + petColumns + ` FROM pets`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limitOrAll(f.Limit), f.Offset)
	query += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d", petOrder(f.SortBy, f.Desc), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete: los ON DELETE CASCADE del esquema se llevan todo lo dependiente.
func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id))
}

func (r *PetsRepo) CreateWeight(ctx context.Context, w pets.Weight) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pet_weights (id, pet_id, measured_at, weight_kg, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, w.ID, w.PetID, w.MeasuredAt, w.WeightKg, w.CreatedAt)
	return mapErr(err)
}

func (r *PetsRepo) ListWeights(ctx context.Context, petID string, limit, offset int) ([]pets.Weight, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, measured_at, weight_kg, created_at
		FROM pet_weights
		WHERE pet_id = $1
		ORDER BY measured_at DESC, id
		LIMIT $2 OFFSET $3
	`, petID, limitOrAll(limit), offset)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]pets.Weight, 0)
	for rows.Next() {
		var w pets.Weight
		if err := rows.Scan(&w.ID, &w.PetID, &w.MeasuredAt, &w.WeightKg, &w.CreatedAt); err != nil {
			return nil, err
		}
		w.MeasuredAt = w.MeasuredAt.UTC()
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanPet(s scanner) (pets.Pet, error) {
	var (
		p               pets.Pet
		species, gender string
		birth, adoption sql.NullTime
	)
	if err := s.Scan(
		&p.ID,
		&p.Name,
		&species,
		&p.Breed,
		&gender,
		&p.Coat,
		&p.Microchip,
		&birth,
		&adoption,
		&p.ThemeColor,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}
	p.Species = pets.Species(species)
	p.Gender = pets.Gender(gender)
	// birth_date es DATE; pgx lo devuelve como medianoche UTC
	p.BirthDate = timePtr(birth)
	p.AdoptionDate = timePtr(adoption)
	return p, nil
}
var _ pets.Repository = (*PetsRepo)(nil)
