package lab

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-health-log/internal/platform/apperr"
)

type testRepo struct {
	types   map[string]TestType
	results []Result
	created [][]TestType
}

func newTestRepo() *testRepo {
	return &testRepo{types: map[string]TestType{}}
}

func (r *testRepo) taken(t TestType) bool {
	for _, cur := range r.types {
		if cur.ID != t.ID && strings.EqualFold(cur.Name, t.Name) && cur.Species == t.Species {
			return true
		}
	}
	return false
}

func (r *testRepo) CreateTestType(_ context.Context, t TestType) error {
	if r.taken(t) {
		return apperr.ErrDuplicate
	}
	r.types[t.ID] = t
	return nil
}

func (r *testRepo) GetTestType(_ context.Context, id string) (TestType, error) {
	t, ok := r.types[id]
	if !ok {
		return TestType{}, apperr.ErrNotFound
	}
	return t, nil
}

func (r *testRepo) UpdateTestType(_ context.Context, t TestType) error {
	if r.taken(t) {
		return apperr.ErrDuplicate
	}
	r.types[t.ID] = t
	return nil
}

func (r *testRepo) ListTestTypes(context.Context, TypeFilter) ([]TestType, error) {
	out := make([]TestType, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	return out, nil
}

func (r *testRepo) FindTestTypeByName(_ context.Context, name string) (TestType, error) {
	for _, t := range r.types {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return TestType{}, apperr.ErrNotFound
}

func (r *testRepo) CreateResult(_ context.Context, res Result, newTypes []TestType) error {
	for _, t := range newTypes {
		r.types[t.ID] = t
	}
	r.created = append(r.created, newTypes)
	r.results = append(r.results, res)
	return nil
}

func (r *testRepo) ListResults(_ context.Context, _ string, limit, _ int) ([]Result, error) {
	if limit < len(r.results) {
		return r.results[:limit], nil
	}
	return r.results, nil
}

type fakePets map[string]bool

func (f fakePets) Exists(_ context.Context, id string) (bool, error) { return f[id], nil }

func ptr[T any](v T) *T { return &v }

func TestCreateTestType(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestRepo(), fakePets{})

	tt, err := svc.CreateTestType(ctx, TestTypeInput{Name: ptr(" Glucose "), Unit: ptr("mg/dL"), RefLow: ptr(70.0), RefHigh: ptr(143.0)})
	require.NoError(t, err)
	assert.Equal(t, "Glucose", tt.Name)
	assert.Equal(t, DefaultSpecies, tt.Species)

	_, err = svc.CreateTestType(ctx, TestTypeInput{Name: ptr("glucose")})
	require.ErrorIs(t, err, apperr.ErrDuplicate)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "duplicate", ae.Code)

	// misma prueba en otra especie es válida
	_, err = svc.CreateTestType(ctx, TestTypeInput{Name: ptr("glucose"), Species: ptr("cat")})
	assert.NoError(t, err)

	_, err = svc.CreateTestType(ctx, TestTypeInput{Name: ptr("  ")})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestUpdateTestType_Partial(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestRepo(), fakePets{})
	later := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	tt, err := svc.CreateTestType(ctx, TestTypeInput{Name: ptr("Creatinine"), Unit: ptr("mg/dL")})
	require.NoError(t, err)

	svc.now = func() time.Time { return later }
	got, err := svc.UpdateTestType(ctx, tt.ID, TestTypeInput{RefHigh: ptr(1.6)})
	require.NoError(t, err)
	assert.Equal(t, "mg/dL", got.Unit)
	assert.Equal(t, 1.6, *got.RefHigh)
	assert.Equal(t, later, got.UpdatedAt)

	_, err = svc.UpdateTestType(ctx, "missing", TestTypeInput{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateResult_ResolvesAndCreatesTypes(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	svc := NewService(repo, fakePets{"pet-1": true})

	glucose, err := svc.CreateTestType(ctx, TestTypeInput{Name: ptr("Glucose"), Unit: ptr("mg/dL")})
	require.NoError(t, err)

	res, err := svc.CreateResult(ctx, ResultInput{
		PetID:       "pet-1",
		CollectedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
		Values: []ValueInput{
			{TestTypeID: glucose.ID, Value: 98},
			{Name: "fructosamine", Value: 310, Unit: ptr("µmol/L")},
			{Name: "FRUCTOSAMINE ", Value: 305},
			{Name: "glucose", Value: 101},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Values, 4)

	assert.Equal(t, "mg/dL", res.Values[0].Unit)
	assert.Equal(t, glucose.ID, res.Values[3].TestTypeID)

	// el nombre repetido crea un solo tipo
	require.Len(t, repo.created, 1)
	require.Len(t, repo.created[0], 1)
	assert.Equal(t, "fructosamine", repo.created[0][0].Name)
	assert.Equal(t, res.Values[1].TestTypeID, res.Values[2].TestTypeID)
	assert.Equal(t, "µmol/L", res.Values[2].Unit)
}

func TestCreateResult_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestRepo(), fakePets{"pet-1": true})

	_, err := svc.CreateResult(ctx, ResultInput{PetID: "pet-1"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.CreateResult(ctx, ResultInput{PetID: "ghost", Values: []ValueInput{{Name: "x", Value: 1}}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.CreateResult(ctx, ResultInput{PetID: "pet-1", Values: []ValueInput{{TestTypeID: "missing", Value: 1}}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.CreateResult(ctx, ResultInput{PetID: "pet-1", Values: []ValueInput{{Value: 1}}})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestListResults_ClampsLimit(t *testing.T) {
	repo := newTestRepo()
	for i := 0; i < 250; i++ {
		repo.results = append(repo.results, Result{})
	}
	svc := NewService(repo, fakePets{})

	got, err := svc.ListResults(context.Background(), "", 1000, 0)
	require.NoError(t, err)
	assert.Len(t, got, 200)
}
