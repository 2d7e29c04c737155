package memory

import (
	"context"
	"sort"

	"pet-health-log/internal/domain/conditions"
	"pet-health-log/internal/domain/lab"
	"pet-health-log/internal/domain/treatments"
	"pet-health-log/internal/platform/apperr"
)

type conditionRepo struct{ st *Store }

func NewConditionRepo(st *Store) conditions.Repository {
	return &conditionRepo{st: st}
}

func (r *conditionRepo) Create(ctx context.Context, c conditions.Condition) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.pets[c.PetID]; !ok {
		return apperr.ErrNotFound
	}
	r.st.conditions[c.ID] = c
	return nil
}

func (r *conditionRepo) GetByID(ctx context.Context, id string) (conditions.Condition, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	c, ok := r.st.conditions[id]
	if !ok {
		return conditions.Condition{}, apperr.ErrNotFound
	}
	return c, nil
}

func (r *conditionRepo) ListByPet(ctx context.Context, petID string) ([]conditions.Condition, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]conditions.Condition, 0)
	for _, c := range r.st.conditions {
		if c.PetID == petID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *conditionRepo) Update(ctx context.Context, c conditions.Condition) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.conditions[c.ID]; !ok {
		return apperr.ErrNotFound
	}
	r.st.conditions[c.ID] = c
	return nil
}

func (r *conditionRepo) Delete(ctx context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.conditions[id]; !ok {
		return apperr.ErrNotFound
	}
	r.st.deleteConditionLocked(id)
	return nil
}

func (r *conditionRepo) Link(ctx context.Context, conditionID string, kind conditions.LinkKind, targetID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.conditions[conditionID]; !ok {
		return apperr.ErrNotFound
	}
	var exists bool
	switch kind {
	case conditions.LinkLabType:
		_, exists = r.st.labTypes[targetID]
	case conditions.LinkLabResult:
		_, exists = r.st.labResults[targetID]
	case conditions.LinkTreatment:
		_, exists = r.st.treatments[targetID]
	}
	if !exists {
		return apperr.ErrNotFound
	}
	r.st.conditionLinks[conditionLink{conditionID, kind, targetID}] = struct{}{}
	return nil
}

func (r *conditionRepo) Unlink(ctx context.Context, conditionID string, kind conditions.LinkKind, targetID string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	delete(r.st.conditionLinks, conditionLink{conditionID, kind, targetID})
	return nil
}

func (s *Store) linkedLocked(conditionID string, kind conditions.LinkKind) []string {
	var ids []string
	for l := range s.conditionLinks {
		if l.conditionID == conditionID && l.kind == kind {
			ids = append(ids, l.targetID)
		}
	}
	return ids
}

func (r *conditionRepo) LinkedLabTypes(ctx context.Context, conditionID string) ([]lab.TestType, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]lab.TestType, 0)
	for _, id := range r.st.linkedLocked(conditionID, conditions.LinkLabType) {
		if t, ok := r.st.labTypes[id]; ok {
			out = append(out, t)
		}
	}
	sortTestTypes(out)
	return out, nil
}

func (r *conditionRepo) LinkedLabResults(ctx context.Context, conditionID string) ([]lab.Result, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]lab.Result, 0)
	for _, id := range r.st.linkedLocked(conditionID, conditions.LinkLabResult) {
		if res, ok := r.st.labResults[id]; ok {
			out = append(out, r.st.withTestNamesLocked(res))
		}
	}
	sortResults(out)
	return out, nil
}

func (r *conditionRepo) LinkedTreatments(ctx context.Context, conditionID string) ([]treatments.Treatment, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]treatments.Treatment, 0)
	for _, id := range r.st.linkedLocked(conditionID, conditions.LinkTreatment) {
		if t, ok := r.st.treatments[id]; ok {
			out = append(out, t)
		}
	}
	sortTreatments(out)
	return out, nil
}

func (r *conditionRepo) CreateNote(ctx context.Context, n conditions.Note) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.conditions[n.ConditionID]; !ok {
		return apperr.ErrNotFound
	}
	r.st.conditionNotes[n.ID] = n
	return nil
}

func (r *conditionRepo) GetNote(ctx context.Context, id string) (conditions.Note, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	n, ok := r.st.conditionNotes[id]
	if !ok {
		return conditions.Note{}, apperr.ErrNotFound
	}
	return n, nil
}

func (r *conditionRepo) ListNotes(ctx context.Context, conditionID string) ([]conditions.Note, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]conditions.Note, 0)
	for _, n := range r.st.conditionNotes {
		if n.ConditionID == conditionID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *conditionRepo) UpdateNote(ctx context.Context, n conditions.Note) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.conditionNotes[n.ID]; !ok {
		return apperr.ErrNotFound
	}
	r.st.conditionNotes[n.ID] = n
	return nil
}

func (r *conditionRepo) DeleteNote(ctx context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.conditionNotes[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(r.st.conditionNotes, id)
	return nil
}
