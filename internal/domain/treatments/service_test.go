package treatments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-health-log/internal/platform/apperr"
)

type testRepo struct{ items map[string]Treatment }

func (r *testRepo) Create(_ context.Context, t Treatment) error {
	r.items[t.ID] = t
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Treatment, error) {
	t, ok := r.items[id]
	if !ok {
		return Treatment{}, apperr.ErrNotFound
	}
	return t, nil
}

func (r *testRepo) List(context.Context, string) ([]Treatment, error) {
	out := make([]Treatment, 0, len(r.items))
	for _, t := range r.items {
		out = append(out, t)
	}
	return out, nil
}

type fakePets map[string]bool

func (f fakePets) Exists(_ context.Context, id string) (bool, error) { return f[id], nil }

func TestCreate(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc := NewService(&testRepo{items: map[string]Treatment{}}, fakePets{"pet-1": true})
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	next := now.AddDate(0, 3, 0)
	tr, err := svc.Create(ctx, CreateInput{PetID: "pet-1", Type: " deworming ", AdministeredAt: now, NextDueAt: &next})
	require.NoError(t, err)
	assert.Equal(t, "deworming", tr.Type)
	assert.Equal(t, now, tr.CreatedAt)

	got, err := svc.GetByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, next, *got.NextDueAt)

	_, err = svc.Create(ctx, CreateInput{PetID: "ghost", Type: "x", AdministeredAt: now})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Create(ctx, CreateInput{PetID: "pet-1", AdministeredAt: now})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestLatestPerType(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	got := LatestPerType([]Treatment{
		{ID: "1", PetID: "p", Type: "deworming", AdministeredAt: jan},
		{ID: "2", PetID: "p", Type: "deworming", AdministeredAt: mar},
		{ID: "3", PetID: "p", Type: "flea", AdministeredAt: jan},
		{ID: "4", PetID: "q", Type: "deworming", AdministeredAt: jan},
	})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"2", "3", "4"}, []string{got[0].ID, got[1].ID, got[2].ID})
}
