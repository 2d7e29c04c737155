package vaccines

import (
	"sort"
	"time"
)

// Type es una vacuna del catálogo. Única por (nombre, especie, marca).
type Type struct {
	ID          string
	Name        string
	Species     string
	TotalDoses  int
	Description string
	Brand       string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Application es una dosis aplicada. NextDoseAt nil = sin refuerzo programado.
type Application struct {
	ID             string
	PetID          string
	VaccineTypeID  string
	DoseNumber     int
	AdministeredAt time.Time
	AdministeredBy string
	Clinic         string
	NextDoseAt     *time.Time
	Notes          string
	Brand          string
	VetVisitID     string
	CreatedAt      time.Time
}

// DueDose es la próxima dosis vigente de un par (mascota, vacuna): la
// next_dose_at de la aplicación más reciente.
type DueDose struct {
	ApplicationID  string
	PetID          string
	PetName        string
	VaccineTypeID  string
	VaccineName    string
	DoseNumber     int
	AdministeredAt time.Time
	NextDoseAt     time.Time
	Overdue        bool
}

type TypeFilter struct {
	Query   string
	Species string
}

// Newer ordena aplicaciones del mismo par: administered_at, luego
// created_at, luego id, todo descendente.
func Newer(a, b Application) bool {
	if !a.AdministeredAt.Equal(b.AdministeredAt) {
		return a.AdministeredAt.After(b.AdministeredAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

type pairKey struct{ pet, vaccine string }

// LatestPerPair devuelve la aplicación más reciente de cada par
// (mascota, vacuna), ordenadas por mascota y vacuna.
func LatestPerPair(apps []Application) []Application {
	latest := make(map[pairKey]Application, len(apps))
	for _, a := range apps {
		k := pairKey{a.PetID, a.VaccineTypeID}
		if cur, ok := latest[k]; !ok || Newer(a, cur) {
			latest[k] = a
		}
	}

	out := make([]Application, 0, len(latest))
	for _, a := range latest {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PetID != out[j].PetID {
			return out[i].PetID < out[j].PetID
		}
		return out[i].VaccineTypeID < out[j].VaccineTypeID
	})
	return out
}
