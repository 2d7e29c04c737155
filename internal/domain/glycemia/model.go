package glycemia

import "time"

// PointsPerSession: una sesión siempre tiene exactamente cinco controles.
const PointsPerSession = 5

// DefaultWarnMinutes se usa cuando el punto no tiene warn_minutes_before.
const DefaultWarnMinutes = 10

// Session es un día de curva de glucemia para una mascota.
type Session struct {
	ID          string
	PetID       string
	SessionDate time.Time // fecha local (00:00 UTC)
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PointStatus string

const (
	StatusPending  PointStatus = "PENDING"
	StatusRecorded PointStatus = "RECORDED"
)

// Point es un control programado. Pasa de PENDING a RECORDED cuando se
// carga measured_at.
type Point struct {
	ID                string
	SessionID         string
	Idx               int // 1..5
	ExpectedAt        time.Time
	WarnMinutesBefore *int
	GlucoseMgDl       *float64
	GlucoseStr        string // "HI" cuando el glucómetro no mide
	MeasuredAt        *time.Time
	DosageClicks      *int
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (p Point) Status() PointStatus {
	if p.MeasuredAt != nil {
		return StatusRecorded
	}
	return StatusPending
}

// WarnMinutes devuelve el aviso previo efectivo; 0 es un valor válido.
func (p Point) WarnMinutes() int {
	if p.WarnMinutesBefore == nil {
		return DefaultWarnMinutes
	}
	return *p.WarnMinutesBefore
}

// InPreWarning indica si el punto está en su ventana de aviso
// [expected_at - warn, expected_at) y sigue pendiente.
func (p Point) InPreWarning(now time.Time) bool {
	if p.MeasuredAt != nil {
		return false
	}
	pre := p.ExpectedAt.Add(-time.Duration(p.WarnMinutes()) * time.Minute)
	return !now.Before(pre) && now.Before(p.ExpectedAt)
}

type Detail struct {
	Session Session
	Points  []Point
}

// DeleteResult permite detectar un borrado a medias.
type DeleteResult struct {
	PointsDeleted  int
	SessionDeleted bool
}
