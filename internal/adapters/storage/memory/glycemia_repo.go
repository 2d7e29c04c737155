package memory

import (
	"context"
	"sort"

	"pet-health-log/internal/domain/glycemia"
	"pet-health-log/internal/platform/apperr"
)

type glycemiaRepo struct{ st *Store }

func NewGlycemiaRepo(st *Store) glycemia.Repository {
	return &glycemiaRepo{st: st}
}

func (r *glycemiaRepo) CreateSession(ctx context.Context, s glycemia.Session, points []glycemia.Point) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.pets[s.PetID]; !ok {
		return apperr.ErrNotFound
	}
	if _, exists := r.st.sessions[s.ID]; exists {
		return apperr.ErrDuplicate
	}
	r.st.sessions[s.ID] = s
	r.st.points[s.ID] = append([]glycemia.Point(nil), points...)
	return nil
}

func (r *glycemiaRepo) GetSession(ctx context.Context, id string) (glycemia.Session, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	s, ok := r.st.sessions[id]
	if !ok {
		return glycemia.Session{}, apperr.ErrNotFound
	}
	return s, nil
}

func (r *glycemiaRepo) ListSessions(ctx context.Context, petID string, limit, offset int) ([]glycemia.Session, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]glycemia.Session, 0)
	for _, s := range r.st.sessions {
		if s.PetID == petID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SessionDate.Equal(out[j].SessionDate) {
			return out[i].SessionDate.After(out[j].SessionDate)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), nil
}

func (r *glycemiaRepo) ListPoints(ctx context.Context, sessionID string) ([]glycemia.Point, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := append([]glycemia.Point{}, r.st.points[sessionID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Idx < out[j].Idx })
	return out, nil
}

func (r *glycemiaRepo) UpdateSession(ctx context.Context, s glycemia.Session, points []glycemia.Point) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.sessions[s.ID]; !ok {
		return apperr.ErrNotFound
	}
	for _, p := range points {
		if r.st.pointIndexLocked(p.SessionID, p.Idx) < 0 {
			return apperr.ErrNotFound
		}
	}
	r.st.sessions[s.ID] = s
	for _, p := range points {
		r.st.points[p.SessionID][r.st.pointIndexLocked(p.SessionID, p.Idx)] = p
	}
	return nil
}

func (s *Store) pointIndexLocked(sessionID string, idx int) int {
	for i, p := range s.points[sessionID] {
		if p.Idx == idx {
			return i
		}
	}
	return -1
}

func (r *glycemiaRepo) GetPoint(ctx context.Context, sessionID string, idx int) (glycemia.Point, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	i := r.st.pointIndexLocked(sessionID, idx)
	if i < 0 {
		return glycemia.Point{}, apperr.ErrNotFound
	}
	return r.st.points[sessionID][i], nil
}

func (r *glycemiaRepo) UpdatePoint(ctx context.Context, p glycemia.Point) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	i := r.st.pointIndexLocked(p.SessionID, p.Idx)
	if i < 0 {
		return apperr.ErrNotFound
	}
	r.st.points[p.SessionID][i] = p
	return nil
}

func (r *glycemiaRepo) DeleteSession(ctx context.Context, id string) (glycemia.DeleteResult, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	res := glycemia.DeleteResult{PointsDeleted: len(r.st.points[id])}
	delete(r.st.points, id)
	if _, ok := r.st.sessions[id]; ok {
		delete(r.st.sessions, id)
		res.SessionDeleted = true
	}
	return res, nil
}
