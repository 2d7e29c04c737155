package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"pet-health-log/internal/domain/pets"
	"pet-health-log/internal/platform/apperr"
)

type petRepo struct{ st *Store }

func NewPetRepo(st *Store) pets.Repository {
	return &petRepo{st: st}
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, exists := r.st.pets[p.ID]; exists {
		return apperr.ErrDuplicate
	}
	r.st.pets[p.ID] = p
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	p, ok := r.st.pets[id]
	if !ok {
		return pets.Pet{}, apperr.ErrNotFound
	}
	return p, nil
}

func (r *petRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]pets.Pet, 0)
	for _, p := range r.st.pets {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		if f.Species != "" && p.Species != f.Species {
			continue
		}
		if f.Gender != "" && p.Gender != f.Gender {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return lessPet(out[i], out[j], f.SortBy, f.Desc) })
	return page(out, f.Limit, f.Offset), nil
}

// lessPet ordena por la columna pedida con nulos al final; desempata por id.
func lessPet(a, b pets.Pet, by pets.SortBy, desc bool) bool {
	var c int
	switch by {
	case pets.SortByBirthDate:
		c = compareDates(a.BirthDate, b.BirthDate, desc)
	case pets.SortByAdoptionDate:
		c = compareDates(a.AdoptionDate, b.AdoptionDate, desc)
	default:
		c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		if desc {
			c = -c
		}
	}
	if c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

func compareDates(a, b *time.Time, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	c := a.Compare(*b)
	if desc {
		c = -c
	}
	return c
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, exists := r.st.pets[p.ID]; !exists {
		return apperr.ErrNotFound
	}
	r.st.pets[p.ID] = p
	return nil
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, exists := r.st.pets[id]; !exists {
		return apperr.ErrNotFound
	}
	r.st.deletePetLocked(id)
	return nil
}

func (r *petRepo) CreateWeight(ctx context.Context, w pets.Weight) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.pets[w.PetID]; !ok {
		return apperr.ErrNotFound
	}
	if r.st.hasWeightLocked(w.PetID, w.MeasuredAt) {
		return apperr.ErrDuplicate
	}
	r.st.weights[w.ID] = w
	return nil
}

func (s *Store) hasWeightLocked(petID string, day time.Time) bool {
	for _, cur := range s.weights {
		if cur.PetID == petID && cur.MeasuredAt.Equal(day) {
			return true
		}
	}
	return false
}

func (r *petRepo) ListWeights(ctx context.Context, petID string, limit, offset int) ([]pets.Weight, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]pets.Weight, 0)
	for _, w := range r.st.weights {
		if w.PetID == petID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MeasuredAt.Equal(out[j].MeasuredAt) {
			return out[i].MeasuredAt.After(out[j].MeasuredAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), nil
}
