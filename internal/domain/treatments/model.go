package treatments

import (
	"sort"
	"time"
)

// Treatment es un tratamiento aplicado (antiparasitario, antibiótico, etc.).
// NextDueAt nil = no hay que repetirlo.
type Treatment struct {
	ID             string
	PetID          string
	Type           string
	TypeLabel      string
	ProductName    string
	AdministeredAt time.Time
	NextDueAt      *time.Time
	DoseInfo       string
	Notes          string
	CreatedAt      time.Time
}

func newer(a, b Treatment) bool {
	if !a.AdministeredAt.Equal(b.AdministeredAt) {
		return a.AdministeredAt.After(b.AdministeredAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// LatestPerType deja el tratamiento más reciente de cada (mascota, tipo).
func LatestPerType(items []Treatment) []Treatment {
	type key struct{ pet, typ string }
	latest := make(map[key]Treatment, len(items))
	for _, t := range items {
		k := key{t.PetID, t.Type}
		if cur, ok := latest[k]; !ok || newer(t, cur) {
			latest[k] = t
		}
	}

	out := make([]Treatment, 0, len(latest))
	for _, t := range latest {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PetID != out[j].PetID {
			return out[i].PetID < out[j].PetID
		}
		return out[i].Type < out[j].Type
	})
	return out
}
