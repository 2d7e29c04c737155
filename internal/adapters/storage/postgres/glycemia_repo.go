package postgres

import (
	"context"
	"database/sql"

	"pet-health-log/internal/domain/glycemia"
)

type GlycemiaRepo struct {
	db *sql.DB
}

func NewGlycemiaRepo(db *sql.DB) *GlycemiaRepo {
	return &GlycemiaRepo{db: db}
}

const pointColumns = `
	id, session_id, idx, expected_at, warn_minutes_before,
	glucose_mgdl, glucose_str, measured_at, dosage_clicks, notes,
	created_at, updated_at`

func (r *GlycemiaRepo) CreateSession(ctx context.Context, s glycemia.Session, points []glycemia.Point) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO glycemia_sessions (id, pet_id, session_date, notes, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, s.ID, s.PetID, s.SessionDate, s.Notes, s.CreatedAt, s.UpdatedAt); err != nil {
			return err
		}
		for _, p := range points {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO glycemia_points (`+pointColumns+`)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			`,
				p.ID,
				p.SessionID,
				p.Idx,
				p.ExpectedAt,
				nullInt(p.WarnMinutesBefore),
				nullFloat(p.GlucoseMgDl),
				p.GlucoseStr,
				nullTime(p.MeasuredAt),
				nullInt(p.DosageClicks),
				p.Notes,
				p.CreatedAt,
				p.UpdatedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GlycemiaRepo) GetSession(ctx context.Context, id string) (glycemia.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, pet_id, session_date, notes, created_at, updated_at
		FROM glycemia_sessions
		WHERE id = $1
	`, id)
	s, err := scanSession(row)
	if err != nil {
		return glycemia.Session{}, mapErr(err)
	}
	return s, nil
}

func (r *GlycemiaRepo) ListSessions(ctx context.Context, petID string, limit, offset int) ([]glycemia.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, session_date, notes, created_at, updated_at
		FROM glycemia_sessions
		WHERE pet_id = $1
		ORDER BY session_date DESC, created_at DESC, id
		LIMIT $2 OFFSET $3
	`, petID, limitOrAll(limit), offset)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]glycemia.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *GlycemiaRepo) ListPoints(ctx context.Context, sessionID string) ([]glycemia.Point, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+pointColumns+`
		FROM glycemia_points
		WHERE session_id = $1
		ORDER BY idx
	`, sessionID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]glycemia.Point, 0, glycemia.PointsPerSession)
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *GlycemiaRepo) UpdateSession(ctx context.Context, s glycemia.Session, points []glycemia.Point) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := mustAffect(tx.ExecContext(ctx, `
			UPDATE glycemia_sessions
			SET session_date = $2, notes = $3, updated_at = $4
			WHERE id = $1
		`, s.ID, s.SessionDate, s.Notes, s.UpdatedAt)); err != nil {
			return err
		}
		for _, p := range points {
			if err := updatePoint(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GlycemiaRepo) GetPoint(ctx context.Context, sessionID string, idx int) (glycemia.Point, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+pointColumns+`
		FROM glycemia_points
		WHERE session_id = $1 AND idx = $2
	`, sessionID, idx)
	p, err := scanPoint(row)
	if err != nil {
		return glycemia.Point{}, mapErr(err)
	}
	return p, nil
}

func (r *GlycemiaRepo) UpdatePoint(ctx context.Context, p glycemia.Point) error {
	return updatePoint(ctx, r.db, p)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updatePoint(ctx context.Context, db execer, p glycemia.Point) error {
	return mustAffect(db.ExecContext(ctx, `
		UPDATE glycemia_points
		SET
			expected_at = $3,
			warn_minutes_before = $4,
			glucose_mgdl = $5,
			glucose_str = $6,
			measured_at = $7,
			dosage_clicks = $8,
			notes = $9,
			updated_at = $10
		WHERE session_id = $1 AND idx = $2
	`,
		p.SessionID,
		p.Idx,
		p.ExpectedAt,
		nullInt(p.WarnMinutesBefore),
		nullFloat(p.GlucoseMgDl),
		p.GlucoseStr,
		nullTime(p.MeasuredAt),
		nullInt(p.DosageClicks),
		p.Notes,
		p.UpdatedAt,
	))
}

// DeleteSession borra puntos y sesión en una transacción e informa cuánto
// borró de cada uno.
func (r *GlycemiaRepo) DeleteSession(ctx context.Context, id string) (glycemia.DeleteResult, error) {
	var res glycemia.DeleteResult
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		pr, err := tx.ExecContext(ctx, `DELETE FROM glycemia_points WHERE session_id = $1`, id)
		if err != nil {
			return err
		}
		n, _ := pr.RowsAffected()
		res.PointsDeleted = int(n)

		sr, err := tx.ExecContext(ctx, `DELETE FROM glycemia_sessions WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, _ = sr.RowsAffected()
		res.SessionDeleted = n > 0
		return nil
	})
	if err != nil {
		return glycemia.DeleteResult{}, err
	}
	return res, nil
}

func scanSession(s scanner) (glycemia.Session, error) {
	var out glycemia.Session
	if err := s.Scan(&out.ID, &out.PetID, &out.SessionDate, &out.Notes, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return glycemia.Session{}, err
	}
	out.SessionDate = out.SessionDate.UTC()
	return out, nil
}

func scanPoint(s scanner) (glycemia.Point, error) {
	var (
		p            glycemia.Point
		warn, clicks sql.NullInt64
		glucose      sql.NullFloat64
		measured     sql.NullTime
	)
	if err := s.Scan(
		&p.ID,
		&p.SessionID,
		&p.Idx,
		&p.ExpectedAt,
		&warn,
		&glucose,
		&p.GlucoseStr,
		&measured,
		&clicks,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return glycemia.Point{}, err
	}
	p.ExpectedAt = p.ExpectedAt.UTC()
	p.WarnMinutesBefore = intPtr(warn)
	p.GlucoseMgDl = floatPtr(glucose)
	p.MeasuredAt = timePtr(measured)
	p.DosageClicks = intPtr(clicks)
	return p, nil
}

var _ glycemia.Repository = (*GlycemiaRepo)(nil)
