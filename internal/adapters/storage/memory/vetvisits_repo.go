package memory

import (
	"context"
	"sort"

	"pet-health-log/internal/domain/vaccines"
	"pet-health-log/internal/domain/vetvisits"
	"pet-health-log/internal/platform/apperr"
)

type vetVisitRepo struct{ st *Store }

func NewVetVisitRepo(st *Store) vetvisits.Repository {
	return &vetVisitRepo{st: st}
}

// CreateBundle valida todas las referencias antes de escribir: o entra todo
// o no entra nada.
func (r *vetVisitRepo) CreateBundle(ctx context.Context, b vetvisits.Bundle) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.pets[b.Visit.PetID]; !ok {
		return apperr.ErrNotFound
	}
	for _, a := range b.Applications {
		if _, ok := r.st.vaccineTypes[a.VaccineTypeID]; !ok {
			return apperr.ErrNotFound
		}
	}
	if b.LabOrder != nil {
		for _, it := range b.LabOrder.Items {
			if _, ok := r.st.labTypes[it.LabTypeID]; !ok {
				return apperr.ErrNotFound
			}
		}
	}

	r.st.visits[b.Visit.ID] = b.Visit
	if b.Weight != nil && !r.st.hasWeightLocked(b.Weight.PetID, b.Weight.MeasuredAt) {
		r.st.weights[b.Weight.ID] = *b.Weight
	}
	for _, a := range b.Applications {
		r.st.vaccineApps[a.ID] = a
	}
	if b.LabOrder != nil {
		order := *b.LabOrder
		order.Items = append([]vetvisits.LabOrderItem(nil), order.Items...)
		r.st.labOrders[order.ID] = order
	}
	return nil
}

func (r *vetVisitRepo) GetByID(ctx context.Context, id string) (vetvisits.Visit, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	v, ok := r.st.visits[id]
	if !ok {
		return vetvisits.Visit{}, apperr.ErrNotFound
	}
	return v, nil
}

func (r *vetVisitRepo) List(ctx context.Context, petID string) ([]vetvisits.Visit, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]vetvisits.Visit, 0)
	for _, v := range r.st.visits {
		if petID == "" || v.PetID == petID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].VisitedAt.Equal(out[j].VisitedAt) {
			return out[i].VisitedAt.After(out[j].VisitedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *vetVisitRepo) Update(ctx context.Context, v vetvisits.Visit) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.visits[v.ID]; !ok {
		return apperr.ErrNotFound
	}
	r.st.visits[v.ID] = v
	return nil
}

func (r *vetVisitRepo) ListApplications(ctx context.Context, visitID string) ([]vaccines.Application, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]vaccines.Application, 0)
	for _, a := range r.st.vaccineApps {
		if a.VetVisitID == visitID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return vaccines.Newer(out[i], out[j]) })
	return out, nil
}

func (r *vetVisitRepo) ListLabItems(ctx context.Context, visitID string) ([]vetvisits.LabOrderItem, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]vetvisits.LabOrderItem, 0)
	for _, o := range r.st.labOrders {
		if o.VisitID != visitID {
			continue
		}
		for _, it := range o.Items {
			it.LabTypeName = r.st.labTypes[it.LabTypeID].Name
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
