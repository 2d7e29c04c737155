package vaccines

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-health-log/internal/platform/apperr"
)

type testRepo struct {
	types map[string]Type
	apps  []Application
	due   []DueDose
}

func newTestRepo() *testRepo { return &testRepo{types: map[string]Type{}} }

func (r *testRepo) CreateType(_ context.Context, t Type) error {
	for _, cur := range r.types {
		if strings.EqualFold(cur.Name, t.Name) && cur.Species == t.Species && strings.EqualFold(cur.Brand, t.Brand) {
			return apperr.ErrDuplicate
		}
	}
	r.types[t.ID] = t
	return nil
}

func (r *testRepo) GetType(_ context.Context, id string) (Type, error) {
	t, ok := r.types[id]
	if !ok {
		return Type{}, apperr.ErrNotFound
	}
	return t, nil
}

func (r *testRepo) UpdateType(_ context.Context, t Type) error {
	r.types[t.ID] = t
	return nil
}

func (r *testRepo) ListTypes(context.Context, TypeFilter) ([]Type, error) {
	out := make([]Type, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	return out, nil
}

func (r *testRepo) CreateApplication(_ context.Context, a Application) error {
	r.apps = append(r.apps, a)
	return nil
}

func (r *testRepo) ListApplications(context.Context, string, int, int) ([]Application, error) {
	return r.apps, nil
}

func (r *testRepo) LatestDoses(context.Context, string) ([]DueDose, error) {
	return r.due, nil
}

type fakePets map[string]bool

func (f fakePets) Exists(_ context.Context, id string) (bool, error) { return f[id], nil }

func newTestService(now time.Time) (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, fakePets{"pet-1": true})
	svc.now = func() time.Time { return now }
	return svc, repo
}

func ptr[T any](v T) *T { return &v }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestLatestPerPair_UsesNewestApplicationNotEarliestNextDose(t *testing.T) {
	t1 := day(2024, 1, 10)
	t2 := day(2024, 3, 10)
	early := day(2024, 2, 1)
	late := day(2025, 3, 10)

	got := LatestPerPair([]Application{
		{ID: "a", PetID: "p", VaccineTypeID: "v", AdministeredAt: t1, NextDoseAt: &early},
		{ID: "b", PetID: "p", VaccineTypeID: "v", AdministeredAt: t2, NextDoseAt: &late},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestLatestPerPair_TieBreaks(t *testing.T) {
	at := day(2024, 1, 10)
	created := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	got := LatestPerPair([]Application{
		{ID: "a", PetID: "p", VaccineTypeID: "v", AdministeredAt: at, CreatedAt: created.Add(time.Minute)},
		{ID: "b", PetID: "p", VaccineTypeID: "v", AdministeredAt: at, CreatedAt: created},
		{ID: "c", PetID: "p", VaccineTypeID: "w", AdministeredAt: at, CreatedAt: created},
		{ID: "d", PetID: "p", VaccineTypeID: "w", AdministeredAt: at, CreatedAt: created},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "d", got[1].ID)
}

func TestCreateType(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()

	vt, err := svc.CreateType(ctx, TypeInput{Name: ptr(" Rabia "), TotalDoses: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, "Rabia", vt.Name)
	assert.Equal(t, "other", vt.Species)

	_, err = svc.CreateType(ctx, TypeInput{Name: ptr("rabia"), TotalDoses: ptr(2)})
	var e *apperr.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "duplicate_name_brand", e.Code)
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	_, err = svc.CreateType(ctx, TypeInput{Name: ptr("Séxtuple")})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.UpdateType(ctx, vt.ID, TypeInput{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestCreateApplication_ChecksReferences(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()
	vt, err := svc.CreateType(ctx, TypeInput{Name: ptr("Rabia"), TotalDoses: ptr(1)})
	require.NoError(t, err)

	_, err = svc.CreateApplication(ctx, ApplicationInput{PetID: "ghost", VaccineTypeID: vt.ID, DoseNumber: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.CreateApplication(ctx, ApplicationInput{PetID: "pet-1", VaccineTypeID: "nope", DoseNumber: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	a, err := svc.CreateApplication(ctx, ApplicationInput{PetID: "pet-1", VaccineTypeID: vt.ID, DoseNumber: 1, AdministeredAt: day(2024, 1, 1)})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
}

func TestDue_OverdueFirstThenUpcoming(t *testing.T) {
	// 2024-05-10 09:00 UTC = 06:00 en UTC-3
	svc, repo := newTestService(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	repo.due = []DueDose{
		{ApplicationID: "later", NextDoseAt: day(2024, 6, 1)},
		{ApplicationID: "overdue", NextDoseAt: day(2024, 4, 1)},
		{ApplicationID: "soon", NextDoseAt: day(2024, 5, 12)},
		{ApplicationID: "far", NextDoseAt: day(2024, 8, 1)},
		{ApplicationID: "today", NextDoseAt: time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)},
	}

	got, err := svc.Due(context.Background(), DueQuery{})
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, d := range got {
		ids = append(ids, d.ApplicationID)
	}
	assert.Equal(t, []string{"overdue", "today", "soon", "later"}, ids)
	assert.True(t, got[0].Overdue)
	assert.False(t, got[1].Overdue)

	got, err = svc.Due(context.Background(), DueQuery{IncludeOverdue: ptr(false), To: ptr(day(2024, 5, 12))})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "soon", got[1].ApplicationID)
}

func TestDue_RejectsInvertedRange(t *testing.T) {
	svc, _ := newTestService(time.Now())
	_, err := svc.Due(context.Background(), DueQuery{From: ptr(day(2024, 5, 10)), To: ptr(day(2024, 5, 1))})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestDue_LocalMidnightBoundaries(t *testing.T) {
	// 2024-05-10 02:00 UTC = 09/05 23:00 en UTC-3
	svc, repo := newTestService(time.Date(2024, 5, 10, 2, 0, 0, 0, time.UTC))
	repo.due = []DueDose{
		// 08/05 22:00 local: ayer
		{ApplicationID: "yesterday", NextDoseAt: time.Date(2024, 5, 9, 1, 0, 0, 0, time.UTC)},
		// 09/05 00:30 local: hoy
		{ApplicationID: "today", NextDoseAt: time.Date(2024, 5, 9, 3, 30, 0, 0, time.UTC)},
		// 12/05 23:30 local: último día del rango
		{ApplicationID: "last-day", NextDoseAt: time.Date(2024, 5, 13, 2, 30, 0, 0, time.UTC)},
		// 13/05 00:30 local: fuera
		{ApplicationID: "after", NextDoseAt: time.Date(2024, 5, 13, 3, 30, 0, 0, time.UTC)},
	}

	got, err := svc.Due(context.Background(), DueQuery{To: ptr(day(2024, 5, 12))})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "yesterday", got[0].ApplicationID)
	assert.True(t, got[0].Overdue)
	assert.Equal(t, "today", got[1].ApplicationID)
	assert.False(t, got[1].Overdue)
	assert.Equal(t, "last-day", got[2].ApplicationID)

	// en UTC ya es 10/05: las dos del 09/05 vencieron y el 13/05 02:30 queda fuera
	got, err = svc.Due(context.Background(), DueQuery{OffsetMinutes: ptr(0), To: ptr(day(2024, 5, 12))})
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, d := range got {
		ids = append(ids, d.ApplicationID)
		assert.True(t, d.Overdue)
	}
	assert.Equal(t, []string{"yesterday", "today"}, ids)
}
