package lab

import "time"

// TestType es un analito (glucosa, creatinina...). Único por (nombre, especie).
type TestType struct {
	ID        string
	Name      string
	Species   string
	Unit      string
	RefLow    *float64
	RefHigh   *float64
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Result es un análisis de laboratorio con uno o más valores.
type Result struct {
	ID          string
	PetID       string
	CollectedAt time.Time
	LabName     string
	VetName     string
	Notes       string
	CreatedAt   time.Time
	Values      []Value
}

type Value struct {
	ID         string
	ResultID   string
	TestTypeID string
	TestName   string // solo lectura (join)
	Value      float64
	Unit       string
}

type TypeFilter struct {
	Query   string
	Species string
}
