package alerts

import (
	"time"

	"pet-health-log/internal/domain/glycemia"
)

type Kind string

const (
	KindBirthdays  Kind = "birthdays"
	KindVaccines   Kind = "vaccines"
	KindGlycemia   Kind = "glycemia"
	KindTreatments Kind = "treatments"
)

var AllKinds = []Kind{KindBirthdays, KindVaccines, KindGlycemia, KindTreatments}

const (
	DefaultDays    = 7
	DefaultMinutes = 15
)

// Query es la ventana pedida. nil = default; Kinds vacío = todos.
type Query struct {
	Days          *int
	Minutes       *int
	OffsetMinutes *int
	PetID         string
	Kinds         []Kind
}

// Filas que entrega el Source.

type PetBirth struct {
	PetID     string
	PetName   string
	BirthDate time.Time
}

type VaccineDose struct {
	ApplicationID string
	PetID         string
	PetName       string
	VaccineTypeID string
	VaccineName   string
	DoseNumber    int
	NextDoseAt    time.Time
}

type GlycemiaCandidate struct {
	PetID   string
	PetName string
	Point   glycemia.Point
}

type TreatmentDue struct {
	TreatmentID string
	PetID       string
	PetName     string
	Type        string
	TypeLabel   string
	ProductName string
	NextDueAt   time.Time
}

// Ítems del feed.

type Birthday struct {
	PetID   string
	PetName string
	At      time.Time
	Turns   int
}

type GlycemiaDue struct {
	SessionID   string
	Idx         int
	ExpectedAt  time.Time
	WarnMinutes int
	PetID       string
	PetName     string
}

// Result trae las cuatro listas. Errors tiene las secciones que fallaron.
type Result struct {
	Birthdays  []Birthday
	Vaccines   []VaccineDose
	Glycemia   []GlycemiaDue
	Treatments []TreatmentDue
	Errors     map[Kind]error
}
