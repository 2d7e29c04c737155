package conditions

import "time"

type Curability string

const (
	Curable      Curability = "CURÁVEL"
	NotCurable   Curability = "NÃO_CURÁVEL"
	CurabilityNA Curability = "INDEFINIDO"
)

type Status string

const (
	StatusActive    Status = "ATIVA"
	StatusResolved  Status = "RESOLVIDA"
	StatusManaged   Status = "EM_MANEJO"
	StatusDiscarded Status = "DESCARTADA"
)

type Severity string

const (
	SeverityLow      Severity = "BAIXA"
	SeverityModerate Severity = "MODERADA"
	SeverityHigh     Severity = "ALTA"
)

// Condition es un diagnóstico que se sigue en el tiempo (crónico o no).
type Condition struct {
	ID          string
	PetID       string
	Name        string
	Curability  Curability
	Status      Status
	Severity    Severity
	DiagnosedAt *time.Time
	ResolvedAt  *time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Note es una entrada de evolución; guarda el estado y la severidad al momento.
type Note struct {
	ID               string
	ConditionID      string
	Content          string
	StatusSnapshot   *Status
	SeveritySnapshot *Severity
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LinkKind identifica con qué se vincula una condición.
type LinkKind string

const (
	LinkLabType   LinkKind = "lab-types"
	LinkLabResult LinkKind = "lab-results"
	LinkTreatment LinkKind = "treatments"
)
