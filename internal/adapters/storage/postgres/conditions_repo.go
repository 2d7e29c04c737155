package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"pet-health-log/internal/domain/conditions"
	"pet-health-log/internal/domain/lab"
	"pet-health-log/internal/domain/treatments"
	"pet-health-log/internal/platform/apperr"
)

type ConditionsRepo struct {
	db *sql.DB
}

func NewConditionsRepo(db *sql.DB) *ConditionsRepo {
	return &ConditionsRepo{db: db}
}

const (
	conditionColumns = `
	id, pet_id, name, curability, status, severity,
	diagnosed_at, resolved_at, notes, created_at, updated_at`

	noteColumns = `id, condition_id, content, status_snapshot, severity_snapshot, created_at, updated_at`
)

var linkTables = map[conditions.LinkKind]string{
	conditions.LinkLabType:   "condition_lab_types",
	conditions.LinkLabResult: "condition_lab_results",
	conditions.LinkTreatment: "condition_treatments",
}

func (r *ConditionsRepo) Create(ctx context.Context, c conditions.Condition) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conditions (`+conditionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		c.ID,
		c.PetID,
		c.Name,
		string(c.Curability),
		string(c.Status),
		string(c.Severity),
		nullTime(c.DiagnosedAt),
		nullTime(c.ResolvedAt),
		c.Notes,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return mapErr(err)
}

func (r *ConditionsRepo) GetByID(ctx context.Context, id string) (conditions.Condition, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+conditionColumns+` FROM conditions WHERE id = $1`, id)
	c, err := scanCondition(row)
	if err != nil {
		return conditions.Condition{}, mapErr(err)
	}
	return c, nil
}

func (r *ConditionsRepo) ListByPet(ctx context.Context, petID string) ([]conditions.Condition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+conditionColumns+`
		FROM conditions
		WHERE pet_id = $1
		ORDER BY created_at DESC, id
	`, petID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]conditions.Condition, 0)
	for rows.Next() {
		c, err := scanCondition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ConditionsRepo) Update(ctx context.Context, c conditions.Condition) error {
	return mustAffect(r.db.ExecContext(ctx, `
		UPDATE conditions
		SET
			name = $2,
			curability = $3,
			status = $4,
			severity = $5,
			diagnosed_at = $6,
			resolved_at = $7,
			notes = $8,
			updated_at = $9
		WHERE id = $1
	`,
		c.ID,
		c.Name,
		string(c.Curability),
		string(c.Status),
		string(c.Severity),
		nullTime(c.DiagnosedAt),
		nullTime(c.ResolvedAt),
		c.Notes,
		c.UpdatedAt,
	))
}

// Delete: notas y vínculos caen por ON DELETE CASCADE.
func (r *ConditionsRepo) Delete(ctx context.Context, id string) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM conditions WHERE id = $1`, id))
}

func linkTable(kind conditions.LinkKind) (string, error) {
	table, ok := linkTables[kind]
	if !ok {
		return "", apperr.Invalid("bad_link_kind", string(kind))
	}
	return table, nil
}

// Link es idempotente; una FK rota (condición o destino inexistente) es 404.
func (r *ConditionsRepo) Link(ctx context.Context, conditionID string, kind conditions.LinkKind, targetID string) error {
	table, err := linkTable(kind)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (condition_id, target_id) VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, table), conditionID, targetID)
	return mapErr(err)
}

func (r *ConditionsRepo) Unlink(ctx context.Context, conditionID string, kind conditions.LinkKind, targetID string) error {
	table, err := linkTable(kind)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE condition_id = $1 AND target_id = $2`, table), conditionID, targetID)
	return mapErr(err)
}

func (r *ConditionsRepo) LinkedLabTypes(ctx context.Context, conditionID string) ([]lab.TestType, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.species, t.unit, t.ref_low, t.ref_high, t.category, t.created_at, t.updated_at
		FROM condition_lab_types l
		JOIN lab_test_types t ON t.id = l.target_id
		WHERE l.condition_id = $1
		ORDER BY lower(t.name), t.id
	`, conditionID)
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

func (r *ConditionsRepo) LinkedLabResults(ctx context.Context, conditionID string) ([]lab.Result, error) {
	labRepo := &LabRepo{db: r.db}
	return labRepo.queryResults(ctx, `
		SELECT res.id, res.pet_id, res.collected_at, res.lab_name, res.vet_name, res.notes, res.created_at
		FROM condition_lab_results l
		JOIN lab_results res ON res.id = l.target_id
		WHERE l.condition_id = $1
		ORDER BY res.collected_at DESC, res.id
	`, conditionID)
}

func (r *ConditionsRepo) LinkedTreatments(ctx context.Context, conditionID string) ([]treatments.Treatment, error) {
	return queryTreatments(ctx, r.db, `
		SELECT t.id, t.pet_id, t.type, t.type_label, t.product_name, t.administered_at,
			t.next_due_at, t.dose_info, t.notes, t.created_at
		FROM condition_treatments l
		JOIN treatments t ON t.id = l.target_id
		WHERE l.condition_id = $1
		ORDER BY t.administered_at DESC, t.id
	`, conditionID)
}

func (r *ConditionsRepo) CreateNote(ctx context.Context, n conditions.Note) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO condition_notes (`+noteColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		n.ID,
		n.ConditionID,
		n.Content,
		nullString((*string)(n.StatusSnapshot)),
		nullString((*string)(n.SeveritySnapshot)),
		n.CreatedAt,
		n.UpdatedAt,
	)
	return mapErr(err)
}

func (r *ConditionsRepo) GetNote(ctx context.Context, id string) (conditions.Note, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM condition_notes WHERE id = $1`, id)
	n, err := scanNote(row)
	if err != nil {
		return conditions.Note{}, mapErr(err)
	}
	return n, nil
}

func (r *ConditionsRepo) ListNotes(ctx context.Context, conditionID string) ([]conditions.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+noteColumns+`
		FROM condition_notes
		WHERE condition_id = $1
		ORDER BY created_at DESC, id
	`, conditionID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]conditions.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *ConditionsRepo) UpdateNote(ctx context.Context, n conditions.Note) error {
	return mustAffect(r.db.ExecContext(ctx, `
		UPDATE condition_notes
		SET content = $2, status_snapshot = $3, severity_snapshot = $4, updated_at = $5
		WHERE id = $1
	`,
		n.ID,
		n.Content,
		nullString((*string)(n.StatusSnapshot)),
		nullString((*string)(n.SeveritySnapshot)),
		n.UpdatedAt,
	))
}

func (r *ConditionsRepo) DeleteNote(ctx context.Context, id string) error {
	return mustAffect(r.db.ExecContext(ctx, `DELETE FROM condition_notes WHERE id = $1`, id))
}

func scanCondition(s scanner) (conditions.Condition, error) {
	var (
		c                       conditions.Condition
		curability, status, sev string
		diagnosed, resolved     sql.NullTime
	)
	if err := s.Scan(
		&c.ID,
		&c.PetID,
		&c.Name,
		&curability,
		&status,
		&sev,
		&diagnosed,
		&resolved,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return conditions.Condition{}, err
	}
	c.Curability = conditions.Curability(curability)
	c.Status = conditions.Status(status)
	c.Severity = conditions.Severity(sev)
	c.DiagnosedAt = timePtr(diagnosed)
	c.ResolvedAt = timePtr(resolved)
	return c, nil
}

func scanNote(s scanner) (conditions.Note, error) {
	var (
		n           conditions.Note
		status, sev sql.NullString
	)
	if err := s.Scan(&n.ID, &n.ConditionID, &n.Content, &status, &sev, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return conditions.Note{}, err
	}
	if status.Valid {
		st := conditions.Status(status.String)
		n.StatusSnapshot = &st
	}
	if sev.Valid {
		sv := conditions.Severity(sev.String)
		n.SeveritySnapshot = &sv
	}
	return n, nil
}

var _ conditions.Repository = (*ConditionsRepo)(nil)
