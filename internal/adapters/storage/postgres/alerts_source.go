package postgres

import (
	"context"
	"database/sql"
	"time"

	"pet-health-log/internal/domain/alerts"
)

// AlertsSource lee las filas crudas del feed de alertas. Cada método es una
// sola consulta para que las secciones puedan correr en paralelo.
type AlertsSource struct {
	db *sql.DB
}

func NewAlertsSource(db *sql.DB) *AlertsSource {
	return &AlertsSource{db: db}
}

func (a *AlertsSource) PetsWithBirthDate(ctx context.Context, petID string) ([]alerts.PetBirth, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, name, birth_date
		FROM pets
		WHERE birth_date IS NOT NULL AND ($1 = '' OR id = $1)
	`, petID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]alerts.PetBirth, 0)
	for rows.Next() {
		var b alerts.PetBirth
		if err := rows.Scan(&b.PetID, &b.PetName, &b.BirthDate); err != nil {
			return nil, err
		}
		b.BirthDate = b.BirthDate.UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

func (a *AlertsSource) LatestVaccineDoses(ctx context.Context, petID string, until time.Time) ([]alerts.VaccineDose, error) {
	rows, err := a.db.QueryContext(ctx, latestDosesSQL+` AND l.next_dose_at <= $2`, petID, until)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]alerts.VaccineDose, 0)
	for rows.Next() {
		var (
			d            alerts.VaccineDose
			administered time.Time
		)
		if err := rows.Scan(
			&d.ApplicationID,
			&d.PetID,
			&d.PetName,
			&d.VaccineTypeID,
			&d.VaccineName,
			&d.DoseNumber,
			&administered,
			&d.NextDoseAt,
		); err != nil {
			return nil, err
		}
		d.NextDoseAt = d.NextDoseAt.UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

func (a *AlertsSource) PendingGlycemiaPoints(ctx context.Context, petID string, until time.Time) ([]alerts.GlycemiaCandidate, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT s.pet_id, p.name,
			g.id, g.session_id, g.idx, g.expected_at, g.warn_minutes_before,
			g.glucose_mgdl, g.glucose_str, g.measured_at, g.dosage_clicks, g.notes,
			g.created_at, g.updated_at
		FROM glycemia_points g
		JOIN glycemia_sessions s ON s.id = g.session_id
		JOIN pets p ON p.id = s.pet_id
		WHERE g.measured_at IS NULL
			AND g.expected_at <= $2
			AND ($1 = '' OR s.pet_id = $1)
	`, petID, until)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]alerts.GlycemiaCandidate, 0)
	for rows.Next() {
		var c alerts.GlycemiaCandidate
		p, err := scanPoint(prefixed{rows, []any{&c.PetID, &c.PetName}})
		if err != nil {
			return nil, err
		}
		c.Point = p
		out = append(out, c)
	}
	return out, rows.Err()
}

// prefixed antepone destinos extra a un scan compartido.
type prefixed struct {
	s    scanner
	head []any
}

func (p prefixed) Scan(dest ...any) error {
	return p.s.Scan(append(p.head, dest...)...)
}

func (a *AlertsSource) LatestTreatments(ctx context.Context, petID string, until time.Time) ([]alerts.TreatmentDue, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT l.id, l.pet_id, p.name, l.type, l.type_label, l.product_name, l.next_due_at
		FROM (
			SELECT DISTINCT ON (pet_id, type)
				id, pet_id, type, type_label, product_name, next_due_at
			FROM treatments
			WHERE ($1 = '' OR pet_id = $1)
			ORDER BY pet_id, type, administered_at DESC, created_at DESC, id DESC
		) l
		JOIN pets p ON p.id = l.pet_id
		WHERE l.next_due_at IS NOT NULL AND l.next_due_at <= $2
	`, petID, until)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]alerts.TreatmentDue, 0)
	for rows.Next() {
		var t alerts.TreatmentDue
		if err := rows.Scan(&t.TreatmentID, &t.PetID, &t.PetName, &t.Type, &t.TypeLabel, &t.ProductName, &t.NextDueAt); err != nil {
			return nil, err
		}
		t.NextDueAt = t.NextDueAt.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

var _ alerts.Source = (*AlertsSource)(nil)
