package memory

import (
	"context"
	"sort"

	"pet-health-log/internal/domain/treatments"
	"pet-health-log/internal/platform/apperr"
)

type treatmentRepo struct{ st *Store }

func NewTreatmentRepo(st *Store) treatments.Repository {
	return &treatmentRepo{st: st}
}

func (r *treatmentRepo) Create(ctx context.Context, t treatments.Treatment) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.pets[t.PetID]; !ok {
		return apperr.ErrNotFound
	}
	r.st.treatments[t.ID] = t
	return nil
}

func (r *treatmentRepo) GetByID(ctx context.Context, id string) (treatments.Treatment, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	t, ok := r.st.treatments[id]
	if !ok {
		return treatments.Treatment{}, apperr.ErrNotFound
	}
	return t, nil
}

func (r *treatmentRepo) List(ctx context.Context, petID string) ([]treatments.Treatment, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]treatments.Treatment, 0)
	for _, t := range r.st.treatments {
		if petID == "" || t.PetID == petID {
			out = append(out, t)
		}
	}
	sortTreatments(out)
	return out, nil
}

func sortTreatments(out []treatments.Treatment) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AdministeredAt.Equal(out[j].AdministeredAt) {
			return out[i].AdministeredAt.After(out[j].AdministeredAt)
		}
		return out[i].ID < out[j].ID
	})
}
