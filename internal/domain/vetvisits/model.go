package vetvisits

import (
	"time"

	"pet-health-log/internal/domain/pets"
	"pet-health-log/internal/domain/vaccines"
)

type VisitType string

const (
	VisitRoutine   VisitType = "routine"
	VisitReturn    VisitType = "return"
	VisitEmergency VisitType = "emergency"
	VisitTele      VisitType = "tele"
)

// Visit es una consulta veterinaria. Los signos vitales son opcionales.
type Visit struct {
	ID          string
	PetID       string
	VisitedAt   time.Time
	IsEmergency bool
	VisitType   VisitType
	Reason      string

	WeightKg           *float64
	TempC              *float64
	HeartRateBpm       *int
	RespRateBpm        *int
	CapillaryRefillSec *float64
	PainScore          *int

	ExamSummary      string
	Findings         string
	Diagnosis        string
	DifferentialDx   string
	ProceduresDone   string
	MedsAdministered string
	Prescriptions    string
	Allergies        string
	ReproStatus      string

	NextVisitAt   *time.Time
	Clinic        string
	VetName       string
	CostTotal     *float64
	PaidTotal     *float64
	PaymentMethod string
	Notes         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type LabOrder struct {
	ID        string
	VisitID   string
	CreatedAt time.Time
	Items     []LabOrderItem
}

type LabOrderItem struct {
	ID          string
	OrderID     string
	LabTypeID   string
	LabTypeName string
	Notes       string
	CreatedAt   time.Time
}

// Bundle es todo lo que crea una visita: se persiste completo o nada.
// Weight se omite si la mascota ya tiene un peso ese día.
type Bundle struct {
	Visit        Visit
	Weight       *pets.Weight
	Applications []vaccines.Application
	LabOrder     *LabOrder
}

type Detail struct {
	Visit        Visit
	Applications []vaccines.Application
	LabItems     []LabOrderItem
}
