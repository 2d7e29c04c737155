package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-health-log/internal/domain/conditions"
	"pet-health-log/internal/domain/glycemia"
	"pet-health-log/internal/domain/pets"
	"pet-health-log/internal/domain/treatments"
	"pet-health-log/internal/domain/vaccines"
	"pet-health-log/internal/platform/apperr"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func seedPet(t *testing.T, st *Store, id, name string, birth *time.Time) {
	t.Helper()
	require.NoError(t, NewPetRepo(st).Create(context.Background(), pets.Pet{
		ID: id, Name: name, Species: pets.SpeciesDog, BirthDate: birth, IsActive: true,
	}))
}

func TestPetRepo_WeightOnePerDay(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	seedPet(t, st, "p1", "Luna", nil)
	repo := NewPetRepo(st)

	require.NoError(t, repo.CreateWeight(ctx, pets.Weight{ID: "w1", PetID: "p1", MeasuredAt: day("2025-05-01"), WeightKg: 10}))
	err := repo.CreateWeight(ctx, pets.Weight{ID: "w2", PetID: "p1", MeasuredAt: day("2025-05-01"), WeightKg: 11})
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	err = repo.CreateWeight(ctx, pets.Weight{ID: "w3", PetID: "nope", MeasuredAt: day("2025-05-01"), WeightKg: 11})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPetRepo_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	seedPet(t, st, "p1", "Luna", nil)
	seedPet(t, st, "p2", "Milo", nil)

	require.NoError(t, NewPetRepo(st).CreateWeight(ctx, pets.Weight{ID: "w1", PetID: "p1", MeasuredAt: day("2025-05-01"), WeightKg: 10}))
	require.NoError(t, NewTreatmentRepo(st).Create(ctx, treatments.Treatment{ID: "t1", PetID: "p1", Type: "deworming", AdministeredAt: day("2025-05-01")}))
	require.NoError(t, NewTreatmentRepo(st).Create(ctx, treatments.Treatment{ID: "t2", PetID: "p2", Type: "deworming", AdministeredAt: day("2025-05-01")}))

	condRepo := NewConditionRepo(st)
	require.NoError(t, condRepo.Create(ctx, conditions.Condition{ID: "c1", PetID: "p1", Name: "Diabetes"}))
	require.NoError(t, condRepo.CreateNote(ctx, conditions.Note{ID: "n1", ConditionID: "c1", Content: "control"}))
	require.NoError(t, condRepo.Link(ctx, "c1", conditions.LinkTreatment, "t1"))

	require.NoError(t, NewPetRepo(st).Delete(ctx, "p1"))

	assert.Empty(t, st.weights)
	assert.Len(t, st.treatments, 1)
	assert.Empty(t, st.conditions)
	assert.Empty(t, st.conditionNotes)
	assert.Empty(t, st.conditionLinks)

	_, err := NewTreatmentRepo(st).GetByID(ctx, "t2")
	assert.NoError(t, err)
}

func TestConditionRepo_LinkIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	seedPet(t, st, "p1", "Luna", nil)
	repo := NewConditionRepo(st)

	require.NoError(t, NewTreatmentRepo(st).Create(ctx, treatments.Treatment{ID: "t1", PetID: "p1", Type: "insulin", AdministeredAt: day("2025-05-01")}))
	require.NoError(t, repo.Create(ctx, conditions.Condition{ID: "c1", PetID: "p1", Name: "Diabetes"}))

	require.NoError(t, repo.Link(ctx, "c1", conditions.LinkTreatment, "t1"))
	require.NoError(t, repo.Link(ctx, "c1", conditions.LinkTreatment, "t1"))

	linked, err := repo.LinkedTreatments(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, linked, 1)

	assert.ErrorIs(t, repo.Link(ctx, "c1", conditions.LinkLabType, "missing"), apperr.ErrNotFound)
	assert.ErrorIs(t, repo.Link(ctx, "missing", conditions.LinkTreatment, "t1"), apperr.ErrNotFound)

	require.NoError(t, repo.Unlink(ctx, "c1", conditions.LinkTreatment, "t1"))
	linked, err = repo.LinkedTreatments(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, linked)
}

func TestAlertsSource_LatestOnly(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	birth := day("2020-05-03")
	seedPet(t, st, "p1", "Luna", &birth)
	seedPet(t, st, "p2", "Milo", nil)

	vrepo := NewVaccineRepo(st)
	require.NoError(t, vrepo.CreateType(ctx, vaccines.Type{ID: "v1", Name: "V10", Species: "dog", TotalDoses: 3}))

	first := day("2025-05-10")
	second := day("2025-06-10")
	require.NoError(t, vrepo.CreateApplication(ctx, vaccines.Application{
		ID: "a1", PetID: "p1", VaccineTypeID: "v1", DoseNumber: 1,
		AdministeredAt: day("2025-04-10"), NextDoseAt: &first,
	}))
	require.NoError(t, vrepo.CreateApplication(ctx, vaccines.Application{
		ID: "a2", PetID: "p1", VaccineTypeID: "v1", DoseNumber: 2,
		AdministeredAt: day("2025-05-10"), NextDoseAt: &second,
	}))

	src := NewAlertsSource(st)

	births, err := src.PetsWithBirthDate(ctx, "")
	require.NoError(t, err)
	require.Len(t, births, 1)
	assert.Equal(t, "Luna", births[0].PetName)

	doses, err := src.LatestVaccineDoses(ctx, "", day("2025-12-31"))
	require.NoError(t, err)
	require.Len(t, doses, 1)
	assert.Equal(t, "a2", doses[0].ApplicationID)
	assert.Equal(t, "V10", doses[0].VaccineName)

	// la dosis vieja (05-10) no reaparece aunque entre en el horizonte
	doses, err = src.LatestVaccineDoses(ctx, "", day("2025-05-31"))
	require.NoError(t, err)
	assert.Empty(t, doses)
}

func TestAlertsSource_PendingGlycemiaPoints(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	seedPet(t, st, "p1", "Luna", nil)

	base := time.Date(2025, 5, 1, 11, 0, 0, 0, time.UTC)
	measured := base
	points := make([]glycemia.Point, 0, glycemia.PointsPerSession)
	for i := 1; i <= glycemia.PointsPerSession; i++ {
		p := glycemia.Point{ID: "gp" + string(rune('0'+i)), SessionID: "s1", Idx: i, ExpectedAt: base.Add(time.Duration(i-1) * 2 * time.Hour)}
		if i == 1 {
			p.MeasuredAt = &measured
		}
		points = append(points, p)
	}
	require.NoError(t, NewGlycemiaRepo(st).CreateSession(ctx, glycemia.Session{ID: "s1", PetID: "p1", SessionDate: day("2025-05-01")}, points))

	got, err := NewAlertsSource(st).PendingGlycemiaPoints(ctx, "p1", base.Add(5*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, c := range got {
		assert.Equal(t, "Luna", c.PetName)
		assert.Nil(t, c.Point.MeasuredAt)
	}
}
