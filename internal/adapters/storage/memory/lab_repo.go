package memory

import (
	"context"
	"sort"
	"strings"

	"pet-health-log/internal/domain/lab"
	"pet-health-log/internal/platform/apperr"
)

type labRepo struct{ st *Store }

func NewLabRepo(st *Store) lab.Repository {
	return &labRepo{st: st}
}

// (nombre sin mayúsculas, especie) es único.
func (s *Store) labTypeTakenLocked(t lab.TestType) bool {
	for _, cur := range s.labTypes {
		if cur.ID != t.ID && strings.EqualFold(cur.Name, t.Name) && cur.Species == t.Species {
			return true
		}
	}
	return false
}

func (r *labRepo) CreateTestType(ctx context.Context, t lab.TestType) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if r.st.labTypeTakenLocked(t) {
		return apperr.ErrDuplicate
	}
	r.st.labTypes[t.ID] = t
	return nil
}

func (r *labRepo) GetTestType(ctx context.Context, id string) (lab.TestType, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	t, ok := r.st.labTypes[id]
	if !ok {
		return lab.TestType{}, apperr.ErrNotFound
	}
	return t, nil
}

func (r *labRepo) UpdateTestType(ctx context.Context, t lab.TestType) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.labTypes[t.ID]; !ok {
		return apperr.ErrNotFound
	}
	if r.st.labTypeTakenLocked(t) {
		return apperr.ErrDuplicate
	}
	r.st.labTypes[t.ID] = t
	return nil
}

func (r *labRepo) ListTestTypes(ctx context.Context, f lab.TypeFilter) ([]lab.TestType, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]lab.TestType, 0)
	for _, t := range r.st.labTypes {
		if q != "" && !strings.Contains(strings.ToLower(t.Name), q) {
			continue
		}
		if f.Species != "" && t.Species != f.Species {
			continue
		}
		out = append(out, t)
	}
	sortTestTypes(out)
	return out, nil
}

func sortTestTypes(out []lab.TestType) {
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
}

func (r *labRepo) FindTestTypeByName(ctx context.Context, name string) (lab.TestType, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	var found []lab.TestType
	for _, t := range r.st.labTypes {
		if strings.EqualFold(t.Name, name) {
			found = append(found, t)
		}
	}
	if len(found) == 0 {
		return lab.TestType{}, apperr.ErrNotFound
	}
	sortTestTypes(found)
	return found[0], nil
}

func (r *labRepo) CreateResult(ctx context.Context, res lab.Result, newTypes []lab.TestType) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.pets[res.PetID]; !ok {
		return apperr.ErrNotFound
	}
	for _, t := range newTypes {
		if r.st.labTypeTakenLocked(t) {
			return apperr.ErrDuplicate
		}
	}
	fresh := make(map[string]bool, len(newTypes))
	for _, t := range newTypes {
		fresh[t.ID] = true
	}
	for _, v := range res.Values {
		if _, ok := r.st.labTypes[v.TestTypeID]; !ok && !fresh[v.TestTypeID] {
			return apperr.ErrNotFound
		}
	}

	for _, t := range newTypes {
		r.st.labTypes[t.ID] = t
	}
	res.Values = append([]lab.Value(nil), res.Values...)
	r.st.labResults[res.ID] = res
	return nil
}

func (r *labRepo) ListResults(ctx context.Context, petID string, limit, offset int) ([]lab.Result, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]lab.Result, 0)
	for _, res := range r.st.labResults {
		if petID == "" || res.PetID == petID {
			out = append(out, r.st.withTestNamesLocked(res))
		}
	}
	sortResults(out)
	return page(out, limit, offset), nil
}

func sortResults(out []lab.Result) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CollectedAt.Equal(out[j].CollectedAt) {
			return out[i].CollectedAt.After(out[j].CollectedAt)
		}
		return out[i].ID < out[j].ID
	})
}

// withTestNamesLocked copia el resultado con el nombre actual de cada tipo.
func (s *Store) withTestNamesLocked(res lab.Result) lab.Result {
	vals := make([]lab.Value, len(res.Values))
	for i, v := range res.Values {
		if t, ok := s.labTypes[v.TestTypeID]; ok {
			v.TestName = t.Name
		}
		vals[i] = v
	}
	res.Values = vals
	return res
}
