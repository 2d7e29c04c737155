package settings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-health-log/internal/platform/apperr"
)

type testRepo struct {
	rows  map[string]Settings
	saves int
}

func (r *testRepo) Get(_ context.Context, id string) (Settings, error) {
	s, ok := r.rows[id]
	if !ok {
		return Settings{}, apperr.ErrNotFound
	}
	return s, nil
}

func (r *testRepo) Save(_ context.Context, s Settings) error {
	r.rows[s.UserID] = s
	r.saves++
	return nil
}

func ptr(s string) *string { return &s }

func TestGet_CreatesDefaultRowOnce(t *testing.T) {
	repo := &testRepo{rows: map[string]Settings{}}
	svc := NewService(repo)
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	s, err := svc.Get(context.Background(), DefaultUserID)
	require.NoError(t, err)
	assert.Nil(t, s.Email)
	assert.Equal(t, now, s.CreatedAt)

	_, err = svc.Get(context.Background(), DefaultUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.saves)
}

func TestUpdate_Coalesces(t *testing.T) {
	repo := &testRepo{rows: map[string]Settings{}}
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Update(ctx, DefaultUserID, UpdateInput{Email: ptr("ana@example.com"), ThemeColor: ptr("#A1B2C3")})
	require.NoError(t, err)

	s, err := svc.Update(ctx, DefaultUserID, UpdateInput{Phone: ptr(" 555-1234 ")})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", *s.Email)
	assert.Equal(t, "555-1234", *s.Phone)
	assert.Equal(t, "#A1B2C3", *s.ThemeColor)
}
