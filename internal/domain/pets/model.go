package pets

import "time"

// Species define las especies soportadas.
// @Enum dog, cat, other
type Species string

const (
	SpeciesDog   Species = "dog"
	SpeciesCat   Species = "cat"
	SpeciesOther Species = "other"
)

// Gender: M (macho), F (hembra), N (sin dato).
type Gender string

const (
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
	GenderUnknown Gender = "N"
)

// Pet representa el perfil de una mascota.
// BirthDate solo importa por mes/día al proyectar cumpleaños.
type Pet struct {
	ID string

	Name      string
	Species   Species
	Breed     string
	Gender    Gender
	Coat      string
	Microchip string

	BirthDate    *time.Time
	AdoptionDate *time.Time

	ThemeColor string
	IsActive   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Weight es un pesaje; hay a lo sumo uno por mascota y día.
type Weight struct {
	ID         string
	PetID      string
	MeasuredAt time.Time // fecha (00:00 UTC)
	WeightKg   float64
	CreatedAt  time.Time
}

type SortBy string

const (
	SortByName         SortBy = "name"
	SortByBirthDate    SortBy = "birth_date"
	SortByAdoptionDate SortBy = "adoption_date"
)

type ListFilter struct {
	Query   string
	Species Species
	Gender  Gender
	SortBy  SortBy
	Desc    bool
	Limit   int
	Offset  int
}
