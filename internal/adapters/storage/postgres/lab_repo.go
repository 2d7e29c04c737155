package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-health-log/internal/domain/lab"
)

type LabRepo struct {
	db *sql.DB
}

func NewLabRepo(db *sql.DB) *LabRepo {
	return &LabRepo{db: db}
}

const testTypeColumns = `id, name, species, unit, ref_low, ref_high, category, created_at, updated_at`

func insertTestType(ctx context.Context, db execer, t lab.TestType) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO lab_test_types (`+testTypeColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		t.ID,
		t.Name,
		t.Species,
		t.Unit,
		nullFloat(t.RefLow),
		nullFloat(t.RefHigh),
		t.Category,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

func (r *LabRepo) CreateTestType(ctx context.Context, t lab.TestType) error {
	return mapErr(insertTestType(ctx, r.db, t))
}

func (r *LabRepo) GetTestType(ctx context.Context, id string) (lab.TestType, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+testTypeColumns+` FROM lab_test_types WHERE id = $1`, id)
	t, err := scanTestType(row)
	if err != nil {
		return lab.TestType{}, mapErr(err)
	}
	return t, nil
}

func (r *LabRepo) UpdateTestType(ctx context.Context, t lab.TestType) error {
	return mustAffect(r.db.ExecContext(ctx, `
		UPDATE lab_test_types
		SET name = $2, species = $3, unit = $4, ref_low = $5, ref_high = $6, category = $7, updated_at = $8
		WHERE id = $1
	`,
		t.ID,
		t.Name,
		t.Species,
		t.Unit,
		nullFloat(t.RefLow),
		nullFloat(t.RefHigh),
		t.Category,
		t.UpdatedAt,
	))
}

func (r *LabRepo) ListTestTypes(ctx context.Context, f lab.TypeFilter) ([]lab.TestType, error) {
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
	query := `SELECT ` + testTypeColumns + ` FROM lab_test_types`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY lower(name), id"

	return r.queryTestTypes(ctx, query, args...)
}

func (r *LabRepo) queryTestTypes(ctx context.Context, query string, args ...any) ([]lab.TestType, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]lab.TestType, 0)
	for rows.Next() {
		t, err := scanTestType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *LabRepo) FindTestTypeByName(ctx context.Context, name string) (lab.TestType, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+testTypeColumns+`
		FROM lab_test_types
		WHERE lower(name) = lower($1)
		ORDER BY lower(name), id
		LIMIT 1
	`, strings.TrimSpace(name))
	t, err := scanTestType(row)
	if err != nil {
		return lab.TestType{}, mapErr(err)
	}
	return t, nil
}

func (r *LabRepo) CreateResult(ctx context.Context, res lab.Result, newTypes []lab.TestType) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, t := range newTypes {
			if err := insertTestType(ctx, tx, t); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO lab_results (id, pet_id, collected_at, lab_name, vet_name, notes, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, res.ID, res.PetID, res.CollectedAt, res.LabName, res.VetName, res.Notes, res.CreatedAt); err != nil {
			return err
		}
		for _, v := range res.Values {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO lab_result_values (id, result_id, test_type_id, value, unit)
				VALUES ($1,$2,$3,$4,$5)
			`, v.ID, res.ID, v.TestTypeID, v.Value, v.Unit); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *LabRepo) ListResults(ctx context.Context, petID string, limit, offset int) ([]lab.Result, error) {
	return r.queryResults(ctx, `
		SELECT id, pet_id, collected_at, lab_name, vet_name, notes, created_at
		FROM lab_results
		WHERE ($1 = '' OR pet_id = $1)
		ORDER BY collected_at DESC, id
		LIMIT $2 OFFSET $3
	`, petID, limitOrAll(limit), offset)
}

// queryResults lee los resultados y después sus valores en una sola consulta.
func (r *LabRepo) queryResults(ctx context.Context, query string, args ...any) ([]lab.Result, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}

	out := make([]lab.Result, 0)
	index := make(map[string]int)
	for rows.Next() {
		var res lab.Result
		if err := rows.Scan(&res.ID, &res.PetID, &res.CollectedAt, &res.LabName, &res.VetName, &res.Notes, &res.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		res.Values = make([]lab.Value, 0)
		index[res.ID] = len(out)
		out = append(out, res)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, res := range out {
		ids = append(ids, res.ID)
	}
	vrows, err := r.db.QueryContext(ctx, `
		SELECT v.id, v.result_id, v.test_type_id, t.name, v.value, v.unit
		FROM lab_result_values v
		JOIN lab_test_types t ON t.id = v.test_type_id
		WHERE v.result_id = ANY($1)
		ORDER BY v.result_id, lower(t.name), v.id
	`, ids)
	if err != nil {
		return nil, mapErr(err)
	}
	defer vrows.Close()

	for vrows.Next() {
		var v lab.Value
		if err := vrows.Scan(&v.ID, &v.ResultID, &v.TestTypeID, &v.TestName, &v.Value, &v.Unit); err != nil {
			return nil, err
		}
		i := index[v.ResultID]
		out[i].Values = append(out[i].Values, v)
	}
	return out, vrows.Err()
}

func scanTestType(s scanner) (lab.TestType, error) {
	var (
		t         lab.TestType
		low, high sql.NullFloat64
	)
	if err := s.Scan(&t.ID, &t.Name, &t.Species, &t.Unit, &low, &high, &t.Category, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return lab.TestType{}, err
	}
	t.RefLow = floatPtr(low)
	t.RefHigh = floatPtr(high)
	return t, nil
}

var _ lab.Repository = (*LabRepo)(nil)
