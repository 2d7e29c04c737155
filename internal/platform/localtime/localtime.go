// Package localtime convierte entre hora local del usuario (offset fijo en
// minutos, sin base de zonas horarias) e instantes UTC.
package localtime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultOffset es UTC-3, el offset que se asume si el cliente no manda uno.
const DefaultOffset = -180

const DateLayout = "2006-01-02"

var ErrBadFormat = errors.New("localtime: bad format")

func OffsetOrDefault(off *int) int {
	if off == nil {
		return DefaultOffset
	}
	return *off
}

// ToUTC resuelve fecha + HH:MM locales a un instante UTC.
// Horas y minutos del offset se restan por separado (truncando hacia cero),
// así un offset de -150 resta -2h y -30m.
func ToUTC(date time.Time, hh, mm, offsetMinutes int) time.Time {
	utcH := hh - offsetMinutes/60
	utcM := mm - offsetMinutes%60
	y, mo, d := date.Date()
	return time.Date(y, mo, d, utcH, utcM, 0, 0, time.UTC)
}

// FromUTC es la inversa de ToUTC: devuelve la fecha local (00:00 UTC) y HH, MM.
func FromUTC(t time.Time, offsetMinutes int) (time.Time, int, int) {
	local := t.UTC().Add(time.Duration(offsetMinutes) * time.Minute)
	y, mo, d := local.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC), local.Hour(), local.Minute()
}

// Today es la fecha local actual (00:00 UTC) para el offset dado.
func Today(now time.Time, offsetMinutes int) time.Time {
	d, _, _ := FromUTC(now, offsetMinutes)
	return d
}

// NextBirthday proyecta el próximo cumpleaños a las 12:00 locales, en o
// después de now. Devuelve el instante y los años que cumple.
// Un 29/02 en año no bisiesto se festeja el 28/02.
func NextBirthday(birth time.Time, offsetMinutes int, now time.Time) (time.Time, int) {
	year := Today(now, offsetMinutes).Year()

	at := noonLocal(year, birth.Month(), birth.Day(), offsetMinutes)
	if at.Before(now) {
		year++
		at = noonLocal(year, birth.Month(), birth.Day(), offsetMinutes)
	}
	return at, year - birth.Year()
}

func noonLocal(year int, month time.Month, day, offsetMinutes int) time.Time {
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return ToUTC(time.Date(year, month, day, 0, 0, 0, 0, time.UTC), 12, 0, offsetMinutes)
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// ParseDate acepta YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrBadFormat, s)
	}
	return t, nil
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseDateTime acepta RFC3339; sin zona se interpreta como UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: datetime %q", ErrBadFormat, s)
}

// ParseDateOrDateTime acepta tanto YYYY-MM-DD como fecha-hora.
func ParseDateOrDateTime(s string) (time.Time, error) {
	if t, err := ParseDate(s); err == nil {
		return t, nil
	}
	return ParseDateTime(s)
}

// ParseClock parsea HH:MM (24h).
func ParseClock(s string) (int, int, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hs) != 2 || len(ms) != 2 {
		return 0, 0, fmt.Errorf("%w: time %q", ErrBadFormat, s)
	}
	hh, err1 := strconv.Atoi(hs)
	mm, err2 := strconv.Atoi(ms)
	if err1 != nil || err2 != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, 0, fmt.Errorf("%w: time %q", ErrBadFormat, s)
	}
	return hh, mm, nil
}

// At combina una fecha local con HH:MM y devuelve el instante UTC.
func At(date time.Time, clock string, offsetMinutes int) (time.Time, error) {
	hh, mm, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return ToUTC(date, hh, mm, offsetMinutes), nil
}

// FormatDate devuelve YYYY-MM-DD o nil.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(DateLayout)
	return &s
}
