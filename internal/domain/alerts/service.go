package alerts

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pet-health-log/internal/metrics"
	"pet-health-log/internal/platform/apperr"
	"pet-health-log/internal/platform/localtime"
	"pet-health-log/internal/platform/logger"
)

// ErrAllSectionsFailed se devuelve cuando no se pudo armar ninguna sección.
var ErrAllSectionsFailed = errors.New("alerts: every section failed")

type Service struct {
	src Source
	log logger.Logger
	now func() time.Time
}

func NewService(src Source, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{src: src, log: log, now: time.Now}
}

// Due arma el feed de avisos. Cada sección se calcula por separado: si una
// falla, las demás se devuelven igual y el fallo queda en Result.Errors.
func (s *Service) Due(ctx context.Context, q Query) (Result, error) {
	days, minutes := DefaultDays, DefaultMinutes
	if q.Days != nil {
		if *q.Days < 1 {
			return Result{}, apperr.Invalid("bad_query", "days must be >= 1")
		}
		days = *q.Days
	}
	if q.Minutes != nil {
		if *q.Minutes < 1 {
			return Result{}, apperr.Invalid("bad_query", "minutes must be >= 1")
		}
		minutes = *q.Minutes
	}
	kinds := q.Kinds
	if len(kinds) == 0 {
		kinds = AllKinds
	}

	now := s.now().UTC()
	horizon := now.Add(time.Duration(days) * 24 * time.Hour)
	soon := now.Add(time.Duration(minutes) * time.Minute)
	offset := localtime.OffsetOrDefault(q.OffsetMinutes)

	res := Result{
		Birthdays:  []Birthday{},
		Vaccines:   []VaccineDose{},
		Glycemia:   []GlycemiaDue{},
		Treatments: []TreatmentDue{},
	}

	var (
		mu     sync.Mutex
		failed = map[Kind]error{}
	)
	fail := func(k Kind, err error) {
		mu.Lock()
		failed[k] = err
		mu.Unlock()
		metrics.AlertSectionErrors.WithLabelValues(string(k)).Inc()
		s.log.Warn("alert section failed", map[string]any{"kind": string(k), "error": err})
	}

	var g errgroup.Group
	for _, k := range dedupe(kinds) {
		switch k {
		case KindBirthdays:
			g.Go(func() error {
				items, err := s.birthdays(ctx, q.PetID, offset, now, horizon)
				if err != nil {
					fail(k, err)
					return nil
				}
				res.Birthdays = items
				return nil
			})
		case KindVaccines:
			g.Go(func() error {
				items, err := s.vaccines(ctx, q.PetID, horizon)
				if err != nil {
					fail(k, err)
					return nil
				}
				res.Vaccines = items
				return nil
			})
		case KindGlycemia:
			g.Go(func() error {
				items, err := s.glycemia(ctx, q.PetID, now, soon)
				if err != nil {
					fail(k, err)
					return nil
				}
				res.Glycemia = items
				return nil
			})
		case KindTreatments:
			g.Go(func() error {
				items, err := s.treatments(ctx, q.PetID, horizon)
				if err != nil {
					fail(k, err)
					return nil
				}
				res.Treatments = items
				return nil
			})
		}
	}
	_ = g.Wait()

	if len(failed) > 0 {
		res.Errors = failed
		if len(failed) == len(dedupe(kinds)) {
			return res, ErrAllSectionsFailed
		}
	}

	metrics.AlertItems.WithLabelValues(string(KindBirthdays)).Add(float64(len(res.Birthdays)))
	metrics.AlertItems.WithLabelValues(string(KindVaccines)).Add(float64(len(res.Vaccines)))
	metrics.AlertItems.WithLabelValues(string(KindGlycemia)).Add(float64(len(res.Glycemia)))
	metrics.AlertItems.WithLabelValues(string(KindTreatments)).Add(float64(len(res.Treatments)))
	return res, nil
}

// birthdays proyecta el próximo cumpleaños (12:00 local) y deja los que caen
// hasta el horizonte inclusive.
func (s *Service) birthdays(ctx context.Context, petID string, offset int, now, horizon time.Time) ([]Birthday, error) {
	pets, err := s.src.PetsWithBirthDate(ctx, petID)
	if err != nil {
		return nil, err
	}
	out := []Birthday{}
	for _, p := range pets {
		at, turns := localtime.NextBirthday(p.BirthDate, offset, now)
		if at.After(horizon) {
			continue
		}
		out = append(out, Birthday{PetID: p.PetID, PetName: p.PetName, At: at, Turns: turns})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.Before(out[j].At)
		}
		return out[i].PetID < out[j].PetID
	})
	return out, nil
}

func (s *Service) vaccines(ctx context.Context, petID string, horizon time.Time) ([]VaccineDose, error) {
	doses, err := s.src.LatestVaccineDoses(ctx, petID, horizon)
	if err != nil {
		return nil, err
	}
	out := make([]VaccineDose, 0, len(doses))
	for _, d := range doses {
		if !d.NextDoseAt.After(horizon) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextDoseAt.Equal(out[j].NextDoseAt) {
			return out[i].NextDoseAt.Before(out[j].NextDoseAt)
		}
		return out[i].ApplicationID < out[j].ApplicationID
	})
	return out, nil
}

// glycemia trae de más (expected_at <= now+minutes) y filtra por la ventana
// de aviso de cada punto.
func (s *Service) glycemia(ctx context.Context, petID string, now, soon time.Time) ([]GlycemiaDue, error) {
	cands, err := s.src.PendingGlycemiaPoints(ctx, petID, soon)
	if err != nil {
		return nil, err
	}
	out := []GlycemiaDue{}
	for _, c := range cands {
		if !c.Point.InPreWarning(now) {
			continue
		}
		out = append(out, GlycemiaDue{
			SessionID:   c.Point.SessionID,
			Idx:         c.Point.Idx,
			ExpectedAt:  c.Point.ExpectedAt,
			WarnMinutes: c.Point.WarnMinutes(),
			PetID:       c.PetID,
			PetName:     c.PetName,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpectedAt.Equal(out[j].ExpectedAt) {
			return out[i].ExpectedAt.Before(out[j].ExpectedAt)
		}
		if out[i].SessionID != out[j].SessionID {
			return out[i].SessionID < out[j].SessionID
		}
		return out[i].Idx < out[j].Idx
	})
	return out, nil
}

func (s *Service) treatments(ctx context.Context, petID string, horizon time.Time) ([]TreatmentDue, error) {
	items, err := s.src.LatestTreatments(ctx, petID, horizon)
	if err != nil {
		return nil, err
	}
	out := make([]TreatmentDue, 0, len(items))
	for _, t := range items {
		if !t.NextDueAt.After(horizon) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextDueAt.Equal(out[j].NextDueAt) {
			return out[i].NextDueAt.Before(out[j].NextDueAt)
		}
		return out[i].TreatmentID < out[j].TreatmentID
	})
	return out, nil
}

func dedupe(kinds []Kind) []Kind {
	seen := make(map[Kind]bool, len(kinds))
	out := make([]Kind, 0, len(kinds))
	for _, k := range kinds {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
