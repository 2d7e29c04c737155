package postgres

import (
	"context"
	"database/sql"

	"pet-health-log/internal/domain/vaccines"
	"pet-health-log/internal/domain/vetvisits"
)

type VetVisitsRepo struct {
	db *sql.DB
}

func NewVetVisitsRepo(db *sql.DB) *VetVisitsRepo {
	return &VetVisitsRepo{db: db}
}

const visitColumns = `
	id, pet_id, visited_at, is_emergency, visit_type, reason,
	weight_kg, temp_c, heart_rate_bpm, resp_rate_bpm, capillary_refill_sec, pain_score,
	exam_summary, findings, diagnosis, differential_dx, procedures_done,
	meds_administered, prescriptions, allergies, repro_status,
	next_visit_at, clinic, vet_name, cost_total, paid_total, payment_method, notes,
	created_at, updated_at`

func visitArgs(v vetvisits.Visit) []any {
	return []any{
		v.ID,
		v.PetID,
		v.VisitedAt,
		v.IsEmergency,
		string(v.VisitType),
		v.Reason,
		nullFloat(v.WeightKg),
		nullFloat(v.TempC),
		nullInt(v.HeartRateBpm),
		nullInt(v.RespRateBpm),
		nullFloat(v.CapillaryRefillSec),
		nullInt(v.PainScore),
		v.ExamSummary,
		v.Findings,
		v.Diagnosis,
		v.DifferentialDx,
		v.ProceduresDone,
		v.MedsAdministered,
		v.Prescriptions,
		v.Allergies,
		v.ReproStatus,
		nullTime(v.NextVisitAt),
		v.Clinic,
		v.VetName,
		nullFloat(v.CostTotal),
		nullFloat(v.PaidTotal),
		v.PaymentMethod,
		v.Notes,
		v.CreatedAt,
		v.UpdatedAt,
	}
}

// CreateBundle: visita, peso del día, vacunas y orden de laboratorio en una
// sola transacción. Si ya hay peso ese día se respeta el existente.
func (r *VetVisitsRepo) CreateBundle(ctx context.Context, b vetvisits.Bundle) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO vet_visits (`+visitColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,
				$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30)
		`, visitArgs(b.Visit)...); err != nil {
			return err
		}

		if w := b.Weight; w != nil {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO pet_weights (id, pet_id, measured_at, weight_kg, created_at)
				VALUES ($1,$2,$3,$4,$5)
				ON CONFLICT (pet_id, measured_at) DO NOTHING
			`, w.ID, w.PetID, w.MeasuredAt, w.WeightKg, w.CreatedAt); err != nil {
				return err
			}
		}

		for _, a := range b.Applications {
			if err := insertApplication(ctx, tx, a); err != nil {
				return err
			}
		}

		if o := b.LabOrder; o != nil {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO vet_lab_orders (id, visit_id, created_at) VALUES ($1,$2,$3)
			`, o.ID, o.VisitID, o.CreatedAt); err != nil {
				return err
			}
			for _, it := range o.Items {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO vet_lab_order_items (id, order_id, lab_type_id, notes, created_at)
					VALUES ($1,$2,$3,$4,$5)
				`, it.ID, o.ID, it.LabTypeID, it.Notes, it.CreatedAt); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *VetVisitsRepo) GetByID(ctx context.Context, id string) (vetvisits.Visit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+visitColumns+` FROM vet_visits WHERE id = $1`, id)
	v, err := scanVisit(row)
	if err != nil {
		return vetvisits.Visit{}, mapErr(err)
	}
	return v, nil
}

func (r *VetVisitsRepo) List(ctx context.Context, petID string) ([]vetvisits.Visit, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+visitColumns+`
		FROM vet_visits
		WHERE ($1 = '' OR pet_id = $1)
		ORDER BY visited_at DESC, id
	`, petID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]vetvisits.Visit, 0)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *VetVisitsRepo) Update(ctx context.Context, v vetvisits.Visit) error {
	return mustAffect(r.db.ExecContext(ctx, `
		UPDATE vet_visits
		SET
			pet_id = $2, visited_at = $3, is_emergency = $4, visit_type = $5, reason = $6,
			weight_kg = $7, temp_c = $8, heart_rate_bpm = $9, resp_rate_bpm = $10,
			capillary_refill_sec = $11, pain_score = $12,
			exam_summary = $13, findings = $14, diagnosis = $15, differential_dx = $16,
			procedures_done = $17, meds_administered = $18, prescriptions = $19,
			allergies = $20, repro_status = $21,
			next_visit_at = $22, clinic = $23, vet_name = $24, cost_total = $25,
			paid_total = $26, payment_method = $27, notes = $28,
			created_at = $29, updated_at = $30
		WHERE id = $1
	`, visitArgs(v)...))
}

func (r *VetVisitsRepo) ListApplications(ctx context.Context, visitID string) ([]vaccines.Application, error) {
	return queryApplications(ctx, r.db, `
		SELECT `+applicationColumns+`
		FROM vaccine_applications
		WHERE vet_visit_id = $1
		ORDER BY administered_at DESC, created_at DESC, id DESC
	`, visitID)
}

func (r *VetVisitsRepo) ListLabItems(ctx context.Context, visitID string) ([]vetvisits.LabOrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.order_id, i.lab_type_id, t.name, i.notes, i.created_at
		FROM vet_lab_order_items i
		JOIN vet_lab_orders o ON o.id = i.order_id
		JOIN lab_test_types t ON t.id = i.lab_type_id
		WHERE o.visit_id = $1
		ORDER BY i.created_at, i.id
	`, visitID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]vetvisits.LabOrderItem, 0)
	for rows.Next() {
		var it vetvisits.LabOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.LabTypeID, &it.LabTypeName, &it.Notes, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanVisit(s scanner) (vetvisits.Visit, error) {
	var (
		v                    vetvisits.Visit
		visitType            string
		weight, temp, refill sql.NullFloat64
		cost, paid           sql.NullFloat64
		heart, resp, pain    sql.NullInt64
		next                 sql.NullTime
	)
	if err := s.Scan(
		&v.ID,
		&v.PetID,
		&v.VisitedAt,
		&v.IsEmergency,
		&visitType,
		&v.Reason,
		&weight,
		&temp,
		&heart,
		&resp,
		&refill,
		&pain,
		&v.ExamSummary,
		&v.Findings,
		&v.Diagnosis,
		&v.DifferentialDx,
		&v.ProceduresDone,
		&v.MedsAdministered,
		&v.Prescriptions,
		&v.Allergies,
		&v.ReproStatus,
		&next,
		&v.Clinic,
		&v.VetName,
		&cost,
		&paid,
		&v.PaymentMethod,
		&v.Notes,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return vetvisits.Visit{}, err
	}
	v.VisitedAt = v.VisitedAt.UTC()
	v.VisitType = vetvisits.VisitType(visitType)
	v.WeightKg = floatPtr(weight)
	v.TempC = floatPtr(temp)
	v.HeartRateBpm = intPtr(heart)
	v.RespRateBpm = intPtr(resp)
	v.CapillaryRefillSec = floatPtr(refill)
	v.PainScore = intPtr(pain)
	v.NextVisitAt = timePtr(next)
	v.CostTotal = floatPtr(cost)
	v.PaidTotal = floatPtr(paid)
	return v, nil
}

var _ vetvisits.Repository = (*VetVisitsRepo)(nil)
