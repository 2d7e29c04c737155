package glycemia

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-health-log/internal/platform/apperr"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	sessions map[string]Session
	points   map[string][]Point
}

func newTestRepo() *testRepo {
	return &testRepo{sessions: map[string]Session{}, points: map[string][]Point{}}
}

func (r *testRepo) CreateSession(_ context.Context, s Session, points []Point) error {
	r.sessions[s.ID] = s
	r.points[s.ID] = append([]Point(nil), points...)
	return nil
}

func (r *testRepo) GetSession(_ context.Context, id string) (Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, apperr.ErrNotFound
	}
	return s, nil
}

func (r *testRepo) ListSessions(_ context.Context, petID string, _, _ int) ([]Session, error) {
	out := []Session{}
	for _, s := range r.sessions {
		if s.PetID == petID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *testRepo) ListPoints(_ context.Context, sessionID string) ([]Point, error) {
	out := append([]Point(nil), r.points[sessionID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Idx < out[j].Idx })
	return out, nil
}

func (r *testRepo) UpdateSession(ctx context.Context, s Session, points []Point) error {
	r.sessions[s.ID] = s
	for _, p := range points {
		if err := r.UpdatePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *testRepo) GetPoint(_ context.Context, sessionID string, idx int) (Point, error) {
	for _, p := range r.points[sessionID] {
		if p.Idx == idx {
			return p, nil
		}
	}
	return Point{}, apperr.ErrNotFound
}

func (r *testRepo) UpdatePoint(_ context.Context, p Point) error {
	list := r.points[p.SessionID]
	for i := range list {
		if list[i].Idx == p.Idx {
			list[i] = p
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (r *testRepo) DeleteSession(_ context.Context, id string) (DeleteResult, error) {
	res := DeleteResult{PointsDeleted: len(r.points[id])}
	delete(r.points, id)
	if _, ok := r.sessions[id]; ok {
		delete(r.sessions, id)
		res.SessionDeleted = true
	}
	return res, nil
}

type fakePets map[string]bool

func (f fakePets) Exists(_ context.Context, id string) (bool, error) { return f[id], nil }

func newTestService(now time.Time) (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, fakePets{"pet-1": true}, nil)
	svc.now = func() time.Time { return now }
	return svc, repo
}

var fiveTimes = []string{"08:00", "10:00", "12:00", "14:00", "20:00"}

func TestCreate_ByTimesCreatesFivePoints(t *testing.T) {
	svc, _ := newTestService(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	date := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	s, err := svc.Create(ctx, CreateInput{PetID: "pet-1", SessionDate: &date, Times: fiveTimes})
	require.NoError(t, err)

	d, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, d.Points, PointsPerSession)

	for i, p := range d.Points {
		assert.Equal(t, i+1, p.Idx)
		assert.Equal(t, StatusPending, p.Status())
		assert.Equal(t, DefaultWarnMinutes, p.WarnMinutes())
	}
	// 08:00 en UTC-3
	assert.Equal(t, time.Date(2024, 5, 10, 11, 0, 0, 0, time.UTC), d.Points[0].ExpectedAt)
	assert.Equal(t, time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC), d.Points[4].ExpectedAt)
}

func TestCreate_ByPointsTakesDateFromFirstPoint(t *testing.T) {
	svc, _ := newTestService(time.Now())
	warn := 0

	s, err := svc.Create(context.Background(), CreateInput{
		PetID: "pet-1",
		ExpectedAt: []string{
			"2024-05-10T22:00:00-03:00",
			"2024-05-11T00:00:00-03:00",
			"2024-05-11T02:00:00-03:00",
			"2024-05-11T04:00:00-03:00",
			"2024-05-11T06:00:00-03:00",
		},
		WarnMinutesBefore: &warn,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), s.SessionDate)

	d, err := svc.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Points[0].WarnMinutes())
	assert.Equal(t, time.Date(2024, 5, 11, 1, 0, 0, 0, time.UTC), d.Points[0].ExpectedAt)
}

func TestCreate_Rejects(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{PetID: "ghost", ExpectedAt: make([]string, 5)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Create(ctx, CreateInput{PetID: "pet-1", Times: fiveTimes[:3]})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestPointLifecycle(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(now)
	ctx := context.Background()

	date := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	s, err := svc.Create(ctx, CreateInput{PetID: "pet-1", SessionDate: &date, Times: fiveTimes})
	require.NoError(t, err)

	glucose := 180.0
	clock := "08:10"
	p, err := svc.UpdatePoint(ctx, s.ID, 1, PointInput{GlucoseMgDl: &glucose, MeasuredAtTime: &clock})
	require.NoError(t, err)
	assert.Equal(t, StatusRecorded, p.Status())
	assert.Equal(t, time.Date(2024, 5, 10, 11, 10, 0, 0, time.UTC), *p.MeasuredAt)

	// campos no enviados se conservan
	notes := "comió poco"
	p, err = svc.UpdatePoint(ctx, s.ID, 1, PointInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, 180.0, *p.GlucoseMgDl)
	assert.NotNil(t, p.MeasuredAt)

	_, err = svc.UpdatePoint(ctx, "nope", 1, PointInput{})
	var e *apperr.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "session_not_found", e.Code)
}

func TestSetExpected(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()
	date := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	s, err := svc.Create(ctx, CreateInput{PetID: "pet-1", SessionDate: &date, Times: fiveTimes})
	require.NoError(t, err)

	_, err = svc.SetExpected(ctx, s.ID, 2, ExpectedInput{})
	var e *apperr.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "invalid_payload", e.Code)

	clock := "09:30"
	off := 0
	p, err := svc.SetExpected(ctx, s.ID, 2, ExpectedInput{ExpectedTime: &clock, OffsetMinutes: &off})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC), p.ExpectedAt)
}

func TestUpdateSession_RecomputesExpected(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()
	date := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	s, err := svc.Create(ctx, CreateInput{PetID: "pet-1", SessionDate: &date, Times: fiveTimes})
	require.NoError(t, err)

	next := time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC)
	off := 0
	err = svc.UpdateSession(ctx, s.ID, UpdateSessionInput{SessionDate: &next, Times: fiveTimes, OffsetMinutes: &off})
	require.NoError(t, err)

	d, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, next, d.Session.SessionDate)
	assert.Equal(t, time.Date(2024, 5, 12, 8, 0, 0, 0, time.UTC), d.Points[0].ExpectedAt)
}

func TestDelete_ReportsCounts(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()
	date := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	s, err := svc.Create(ctx, CreateInput{PetID: "pet-1", SessionDate: &date, Times: fiveTimes})
	require.NoError(t, err)

	res, err := svc.Delete(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, DeleteResult{PointsDeleted: 5, SessionDeleted: true}, res)

	_, err = svc.Delete(ctx, s.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInPreWarning(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	ten := 10
	zero := 0

	cases := []struct {
		name     string
		expected time.Time
		warn     *int
		measured bool
		want     bool
	}{
		{"inside window", now.Add(5 * time.Minute), &ten, false, true},
		{"window not open yet", now.Add(20 * time.Minute), &ten, false, false},
		{"window opens exactly now", now.Add(10 * time.Minute), &ten, false, true},
		{"expected time passed", now.Add(-time.Minute), &ten, false, false},
		{"expected exactly now", now, &ten, false, false},
		{"nil warn defaults to 10", now.Add(8 * time.Minute), nil, false, true},
		{"zero warn never opens early", now.Add(time.Minute), &zero, false, false},
		{"already measured", now.Add(5 * time.Minute), &ten, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Point{ExpectedAt: tc.expected, WarnMinutesBefore: tc.warn}
			if tc.measured {
				m := now
				p.MeasuredAt = &m
			}
			assert.Equal(t, tc.want, p.InPreWarning(now))
		})
	}
}
