package vetvisits

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-health-log/internal/domain/vaccines"
	"pet-health-log/internal/platform/apperr"
)

type testRepo struct {
	visits  map[string]Visit
	bundles []Bundle
}

func (r *testRepo) CreateBundle(_ context.Context, b Bundle) error {
	r.visits[b.Visit.ID] = b.Visit
	r.bundles = append(r.bundles, b)
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Visit, error) {
	v, ok := r.visits[id]
	if !ok {
		return Visit{}, apperr.ErrNotFound
	}
	return v, nil
}

func (r *testRepo) List(context.Context, string) ([]Visit, error) { return nil, nil }

func (r *testRepo) Update(_ context.Context, v Visit) error {
	r.visits[v.ID] = v
	return nil
}

func (r *testRepo) ListApplications(_ context.Context, visitID string) ([]vaccines.Application, error) {
	for _, b := range r.bundles {
		if b.Visit.ID == visitID {
			return b.Applications, nil
		}
	}
	return nil, nil
}

func (r *testRepo) ListLabItems(context.Context, string) ([]LabOrderItem, error) { return nil, nil }

type fakePets map[string]bool

func (f fakePets) Exists(_ context.Context, id string) (bool, error) { return f[id], nil }

func ptr[T any](v T) *T { return &v }

func newTestService(now time.Time) (*Service, *testRepo) {
	repo := &testRepo{visits: map[string]Visit{}}
	svc := NewService(repo, fakePets{"pet-1": true})
	svc.now = func() time.Time { return now }
	return svc, repo
}

func TestCreate_BuildsBundle(t *testing.T) {
	now := time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)
	svc, repo := newTestService(now)

	visited := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	v, err := svc.Create(context.Background(), CreateInput{
		PetID: "pet-1",
		Fields: Fields{
			VisitedAt:   &visited,
			IsEmergency: ptr(true),
			WeightKg:    ptr(12.5),
			Clinic:      ptr(" Vet Centro "),
		},
		VaccineApps: []VaccineAppInput{{VaccineTypeID: "vt-1", DoseNumber: 2}},
		LabOrders:   []LabOrderInput{{LabTypeID: "lt-1"}, {LabTypeID: "lt-2", Notes: "ayuno"}},
	})
	require.NoError(t, err)
	assert.Equal(t, VisitEmergency, v.VisitType)
	assert.Equal(t, "Vet Centro", v.Clinic)

	require.Len(t, repo.bundles, 1)
	b := repo.bundles[0]

	require.NotNil(t, b.Weight)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), b.Weight.MeasuredAt)
	assert.Equal(t, 12.5, b.Weight.WeightKg)

	require.Len(t, b.Applications, 1)
	app := b.Applications[0]
	assert.Equal(t, v.ID, app.VetVisitID)
	assert.Equal(t, "Vet Centro", app.Clinic)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), app.AdministeredAt)

	require.NotNil(t, b.LabOrder)
	require.Len(t, b.LabOrder.Items, 2)
	assert.Equal(t, b.LabOrder.ID, b.LabOrder.Items[1].OrderID)
}

func TestCreate_Rejects(t *testing.T) {
	svc, repo := newTestService(time.Now())
	ctx := context.Background()
	visited := time.Now()

	_, err := svc.Create(ctx, CreateInput{PetID: "pet-1"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.Create(ctx, CreateInput{PetID: "ghost", Fields: Fields{VisitedAt: &visited}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Create(ctx, CreateInput{
		PetID:       "pet-1",
		Fields:      Fields{VisitedAt: &visited},
		VaccineApps: []VaccineAppInput{{VaccineTypeID: "vt-1"}},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Empty(t, repo.bundles)
}

func TestUpdate_KeepsMissingFields(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()
	visited := time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)

	v, err := svc.Create(ctx, CreateInput{PetID: "pet-1", Fields: Fields{VisitedAt: &visited, Diagnosis: ptr("otitis"), PainScore: ptr(3)}})
	require.NoError(t, err)

	_, err = svc.Update(ctx, v.ID, Fields{Notes: ptr("control en 15 días")})
	require.NoError(t, err)

	d, err := svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "otitis", d.Visit.Diagnosis)
	assert.Equal(t, 3, *d.Visit.PainScore)
	assert.Equal(t, "control en 15 días", d.Visit.Notes)

	_, err = svc.Update(ctx, "nope", Fields{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
