// Package memory implementa los repositorios en memoria (dev y tests).
// Todos comparten un Store con un único lock, así las escrituras de varios
// pasos y el borrado en cascada son atómicos.
package memory

import (
	"sync"

	"pet-health-log/internal/domain/conditions"
	"pet-health-log/internal/domain/glycemia"
	"pet-health-log/internal/domain/lab"
	"pet-health-log/internal/domain/pets"
	"pet-health-log/internal/domain/settings"
	"pet-health-log/internal/domain/treatments"
	"pet-health-log/internal/domain/vaccines"
	"pet-health-log/internal/domain/vetvisits"
)

type conditionLink struct {
	conditionID string
	kind        conditions.LinkKind
	targetID    string
}

type Store struct {
	mu sync.RWMutex

	pets    map[string]pets.Pet
	weights map[string]pets.Weight

	sessions map[string]glycemia.Session
	points   map[string][]glycemia.Point // por session_id

	labTypes   map[string]lab.TestType
	labResults map[string]lab.Result

	vaccineTypes map[string]vaccines.Type
	vaccineApps  map[string]vaccines.Application

	treatments map[string]treatments.Treatment

	visits    map[string]vetvisits.Visit
	labOrders map[string]vetvisits.LabOrder

	conditions     map[string]conditions.Condition
	conditionNotes map[string]conditions.Note
	conditionLinks map[conditionLink]struct{}

	settings map[string]settings.Settings
}

func NewStore() *Store {
	return &Store{
		pets:           make(map[string]pets.Pet),
		weights:        make(map[string]pets.Weight),
		sessions:       make(map[string]glycemia.Session),
		points:         make(map[string][]glycemia.Point),
		labTypes:       make(map[string]lab.TestType),
		labResults:     make(map[string]lab.Result),
		vaccineTypes:   make(map[string]vaccines.Type),
		vaccineApps:    make(map[string]vaccines.Application),
		treatments:     make(map[string]treatments.Treatment),
		visits:         make(map[string]vetvisits.Visit),
		labOrders:      make(map[string]vetvisits.LabOrder),
		conditions:     make(map[string]conditions.Condition),
		conditionNotes: make(map[string]conditions.Note),
		conditionLinks: make(map[conditionLink]struct{}),
		settings:       make(map[string]settings.Settings),
	}
}

// deletePetLocked borra la mascota y todo lo que depende de ella, igual que
// los ON DELETE CASCADE del esquema. Requiere s.mu tomado.
func (s *Store) deletePetLocked(petID string) {
	delete(s.pets, petID)

	for id, w := range s.weights {
		if w.PetID == petID {
			delete(s.weights, id)
		}
	}
	for id, sess := range s.sessions {
		if sess.PetID == petID {
			delete(s.sessions, id)
			delete(s.points, id)
		}
	}
	for id, r := range s.labResults {
		if r.PetID == petID {
			delete(s.labResults, id)
			s.dropLinksLocked(conditions.LinkLabResult, id)
		}
	}
	for id, a := range s.vaccineApps {
		if a.PetID == petID {
			delete(s.vaccineApps, id)
		}
	}
	for id, t := range s.treatments {
		if t.PetID == petID {
			delete(s.treatments, id)
			s.dropLinksLocked(conditions.LinkTreatment, id)
		}
	}
	for id, v := range s.visits {
		if v.PetID == petID {
			delete(s.visits, id)
			for oid, o := range s.labOrders {
				if o.VisitID == id {
					delete(s.labOrders, oid)
				}
			}
		}
	}
	for id, c := range s.conditions {
		if c.PetID == petID {
			s.deleteConditionLocked(id)
		}
	}
}

func (s *Store) deleteConditionLocked(id string) {
	delete(s.conditions, id)
	for nid, n := range s.conditionNotes {
		if n.ConditionID == id {
			delete(s.conditionNotes, nid)
		}
	}
	for l := range s.conditionLinks {
		if l.conditionID == id {
			delete(s.conditionLinks, l)
		}
	}
}

func (s *Store) dropLinksLocked(kind conditions.LinkKind, targetID string) {
	for l := range s.conditionLinks {
		if l.kind == kind && l.targetID == targetID {
			delete(s.conditionLinks, l)
		}
	}
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
