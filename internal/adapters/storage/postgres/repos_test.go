package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-health-log/internal/domain/conditions"
	"pet-health-log/internal/domain/glycemia"
	"pet-health-log/internal/domain/pets"
	"pet-health-log/internal/domain/vaccines"
	"pet-health-log/internal/domain/vetvisits"
	"pet-health-log/internal/platform/apperr"
)

var petRowColumns = []string{
	"id", "name", "species", "breed", "gender", "coat", "microchip",
	"birth_date", "adoption_date", "theme_color", "is_active", "created_at", "updated_at",
}

func TestPetsRepo_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPetsRepo(db)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	birth := time.Date(2020, 5, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM pets WHERE id = \$1`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(petRowColumns).
			AddRow("p1", "Luna", "dog", "", "F", "", "", birth, nil, "#aabbcc", true, now, now))

	p, err := repo.GetByID(context.Background(), " p1 ")
	require.NoError(t, err)
	assert.Equal(t, "Luna", p.Name)
	assert.Equal(t, pets.SpeciesDog, p.Species)
	require.NotNil(t, p.BirthDate)
	assert.True(t, birth.Equal(*p.BirthDate))
	assert.Nil(t, p.AdoptionDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPetsRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM pets`).WithArgs("nope").WillReturnRows(sqlmock.NewRows(petRowColumns))

	_, err := NewPetsRepo(db).GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPetsRepo_ListBuildsFilters(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE lower(name) LIKE $1 AND species = $2 ORDER BY birth_date DESC NULLS LAST, id LIMIT $3 OFFSET $4`)).
		WithArgs("%lu%", "cat", int64(10), 5).
		WillReturnRows(sqlmock.NewRows(petRowColumns))

	out, err := NewPetsRepo(db).List(context.Background(), pets.ListFilter{
		Query: "Lu", Species: pets.SpeciesCat, SortBy: pets.SortByBirthDate, Desc: true, Limit: 10, Offset: 5,
	})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPetsRepo_DuplicateWeight(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO pet_weights`).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := NewPetsRepo(db).CreateWeight(context.Background(), pets.Weight{ID: "w1", PetID: "p1", MeasuredAt: time.Now(), WeightKg: 4})
	assert.ErrorIs(t, err, apperr.ErrDuplicate)
}

func TestPetsRepo_DeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM pets`).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, NewPetsRepo(db).Delete(context.Background(), "p1"), apperr.ErrNotFound)
}

func TestGlycemiaRepo_CreateSessionIsAtomic(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO glycemia_sessions`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO glycemia_points`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO glycemia_points`).WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	points := []glycemia.Point{
		{ID: "g1", SessionID: "s1", Idx: 1, ExpectedAt: now, CreatedAt: now, UpdatedAt: now},
		{ID: "g2", SessionID: "s1", Idx: 1, ExpectedAt: now, CreatedAt: now, UpdatedAt: now},
	}
	err := NewGlycemiaRepo(db).CreateSession(context.Background(), glycemia.Session{ID: "s1", PetID: "p1", SessionDate: now}, points)
	assert.ErrorIs(t, err, apperr.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGlycemiaRepo_DeleteSessionReportsCounts(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM glycemia_points`).WithArgs("s1").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`DELETE FROM glycemia_sessions`).WithArgs("s1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := NewGlycemiaRepo(db).DeleteSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, glycemia.DeleteResult{PointsDeleted: 5, SessionDeleted: true}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVaccinesRepo_LatestDoses(t *testing.T) {
	db, mock := newMock(t)
	adm := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	next := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT DISTINCT ON \(pet_id, vaccine_type_id\)`).
		WithArgs("").
		WillReturnRows(sqlmock.NewRows([]string{"id", "pet_id", "name", "vaccine_type_id", "name", "dose_number", "administered_at", "next_dose_at"}).
			AddRow("a2", "p1", "Luna", "v1", "V10", 2, adm, next))

	out, err := NewVaccinesRepo(db).LatestDoses(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, vaccines.DueDose{
		ApplicationID: "a2", PetID: "p1", PetName: "Luna", VaccineTypeID: "v1", VaccineName: "V10",
		DoseNumber: 2, AdministeredAt: adm, NextDoseAt: next,
	}, out[0])
}

func TestVetVisitsRepo_CreateBundle(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2025, 5, 1, 15, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO vet_visits`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO pet_weights .* ON CONFLICT \(pet_id, measured_at\) DO NOTHING`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO vaccine_applications`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO vet_lab_orders`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO vet_lab_order_items`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewVetVisitsRepo(db).CreateBundle(context.Background(), vetvisits.Bundle{
		Visit:        vetvisits.Visit{ID: "vv1", PetID: "p1", VisitedAt: now, VisitType: vetvisits.VisitRoutine, CreatedAt: now, UpdatedAt: now},
		Weight:       &pets.Weight{ID: "w1", PetID: "p1", MeasuredAt: now.Truncate(24 * time.Hour), WeightKg: 5, CreatedAt: now},
		Applications: []vaccines.Application{{ID: "a1", PetID: "p1", VaccineTypeID: "v1", DoseNumber: 1, AdministeredAt: now, VetVisitID: "vv1", CreatedAt: now}},
		LabOrder: &vetvisits.LabOrder{ID: "o1", VisitID: "vv1", CreatedAt: now, Items: []vetvisits.LabOrderItem{
			{ID: "i1", OrderID: "o1", LabTypeID: "lt1", CreatedAt: now},
		}},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConditionsRepo_LinkMissingTarget(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`INSERT INTO condition_treatments .* ON CONFLICT DO NOTHING`).
		WithArgs("c1", "t9").
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := NewConditionsRepo(db).Link(context.Background(), "c1", conditions.LinkTreatment, "t9")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, NewConditionsRepo(db).Link(context.Background(), "c1", "bogus", "t9"), apperr.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}
