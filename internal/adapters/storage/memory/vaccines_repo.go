package memory

import (
	"context"
	"sort"
	"strings"

	"pet-health-log/internal/domain/vaccines"
	"pet-health-log/internal/platform/apperr"
)

type vaccineRepo struct{ st *Store }

func NewVaccineRepo(st *Store) vaccines.Repository {
	return &vaccineRepo{st: st}
}

// (nombre, especie, marca) es único, sin distinguir mayúsculas en nombre y marca.
func (s *Store) vaccineTypeTakenLocked(t vaccines.Type) bool {
	for _, cur := range s.vaccineTypes {
		if cur.ID != t.ID && strings.EqualFold(cur.Name, t.Name) &&
			cur.Species == t.Species && strings.EqualFold(cur.Brand, t.Brand) {
			return true
		}
	}
	return false
}

func (r *vaccineRepo) CreateType(ctx context.Context, t vaccines.Type) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if r.st.vaccineTypeTakenLocked(t) {
		return apperr.ErrDuplicate
	}
	r.st.vaccineTypes[t.ID] = t
	return nil
}

func (r *vaccineRepo) GetType(ctx context.Context, id string) (vaccines.Type, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	t, ok := r.st.vaccineTypes[id]
	if !ok {
		return vaccines.Type{}, apperr.ErrNotFound
	}
	return t, nil
}

func (r *vaccineRepo) UpdateType(ctx context.Context, t vaccines.Type) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.vaccineTypes[t.ID]; !ok {
		return apperr.ErrNotFound
	}
	if r.st.vaccineTypeTakenLocked(t) {
		return apperr.ErrDuplicate
	}
	r.st.vaccineTypes[t.ID] = t
	return nil
}

func (r *vaccineRepo) ListTypes(ctx context.Context, f vaccines.TypeFilter) ([]vaccines.Type, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]vaccines.Type, 0)
	for _, t := range r.st.vaccineTypes {
		if q != "" && !strings.Contains(strings.ToLower(t.Name), q) {
			continue
		}
		if f.Species != "" && t.Species != f.Species {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// insertApplicationLocked valida las referencias y guarda la aplicación.
func (s *Store) insertApplicationLocked(a vaccines.Application) error {
	if _, ok := s.pets[a.PetID]; !ok {
		return apperr.ErrNotFound
	}
	if _, ok := s.vaccineTypes[a.VaccineTypeID]; !ok {
		return apperr.ErrNotFound
	}
	s.vaccineApps[a.ID] = a
	return nil
}

func (r *vaccineRepo) CreateApplication(ctx context.Context, a vaccines.Application) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	return r.st.insertApplicationLocked(a)
}

func (r *vaccineRepo) ListApplications(ctx context.Context, petID string, limit, offset int) ([]vaccines.Application, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]vaccines.Application, 0)
	for _, a := range r.st.vaccineApps {
		if petID == "" || a.PetID == petID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return vaccines.Newer(out[i], out[j]) })
	return page(out, limit, offset), nil
}

func (r *vaccineRepo) LatestDoses(ctx context.Context, petID string) ([]vaccines.DueDose, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]vaccines.DueDose, 0)
	for _, a := range r.st.latestApplicationsLocked(petID) {
		if a.NextDoseAt == nil {
			continue
		}
		out = append(out, vaccines.DueDose{
			ApplicationID:  a.ID,
			PetID:          a.PetID,
			PetName:        r.st.pets[a.PetID].Name,
			VaccineTypeID:  a.VaccineTypeID,
			VaccineName:    r.st.vaccineTypes[a.VaccineTypeID].Name,
			DoseNumber:     a.DoseNumber,
			AdministeredAt: a.AdministeredAt,
			NextDoseAt:     *a.NextDoseAt,
		})
	}
	return out, nil
}

func (s *Store) latestApplicationsLocked(petID string) []vaccines.Application {
	apps := make([]vaccines.Application, 0, len(s.vaccineApps))
	for _, a := range s.vaccineApps {
		if petID == "" || a.PetID == petID {
			apps = append(apps, a)
		}
	}
	return vaccines.LatestPerPair(apps)
}
