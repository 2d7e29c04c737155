package glycemia

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"pet-health-log/internal/metrics"
	"pet-health-log/internal/platform/apperr"
	"pet-health-log/internal/platform/localtime"
	"pet-health-log/internal/platform/logger"
)

type Service struct {
	repo Repository
	pets PetLookup
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, pets PetLookup, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		pets: pets,
		log:  log,
		now:  time.Now,
	}
}

// CreateInput admite dos formas: SessionDate + Times (HH:MM locales) o
// ExpectedAt (cinco fecha-hora ISO).
type CreateInput struct {
	PetID             string
	SessionDate       *time.Time
	Times             []string
	ExpectedAt        []string
	WarnMinutesBefore *int
	OffsetMinutes     *int
	Notes             string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Session, error) {
	if ok, err := s.pets.Exists(ctx, in.PetID); err != nil {
		return Session{}, err
	} else if !ok {
		return Session{}, apperr.ErrNotFound
	}

	var (
		date     time.Time
		expected []time.Time
		err      error
	)
	switch {
	case in.SessionDate != nil && len(in.Times) == PointsPerSession:
		date = *in.SessionDate
		expected, err = expectedFromTimes(date, in.Times, localtime.OffsetOrDefault(in.OffsetMinutes))
	case len(in.ExpectedAt) == PointsPerSession:
		date, expected, err = expectedFromInstants(in.ExpectedAt)
	default:
		return Session{}, apperr.Invalid("bad_body", "sessionDate + 5 times or 5 points required")
	}
	if err != nil {
		return Session{}, err
	}

	warn := DefaultWarnMinutes
	if in.WarnMinutesBefore != nil {
		warn = *in.WarnMinutesBefore
	}

	now := s.now().UTC()
	sess := Session{
		ID:          uuid.NewString(),
		PetID:       in.PetID,
		SessionDate: date,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	points := make([]Point, 0, PointsPerSession)
	for i, at := range expected {
		w := warn
		points = append(points, Point{
			ID:                uuid.NewString(),
			SessionID:         sess.ID,
			Idx:               i + 1,
			ExpectedAt:        at,
			WarnMinutesBefore: &w,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}

	if err := s.repo.CreateSession(ctx, sess, points); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func expectedFromTimes(date time.Time, times []string, off int) ([]time.Time, error) {
	out := make([]time.Time, 0, len(times))
	for _, t := range times {
		at, err := localtime.At(date, t, off)
		if err != nil {
			return nil, apperr.Invalid("bad_body", err.Error())
		}
		out = append(out, at)
	}
	return out, nil
}

// expectedFromInstants toma la fecha de sesión de los primeros 10
// caracteres del primer punto, tal como lo mandó el cliente.
func expectedFromInstants(raw []string) (time.Time, []time.Time, error) {
	out := make([]time.Time, 0, len(raw))
	for _, r := range raw {
		at, err := localtime.ParseDateTime(r)
		if err != nil {
			return time.Time{}, nil, apperr.Invalid("bad_body", err.Error())
		}
		out = append(out, at)
	}
	date, err := localtime.ParseDate(raw[0][:10])
	if err != nil {
		return time.Time{}, nil, apperr.Invalid("bad_body", err.Error())
	}
	return date, out, nil
}

func (s *Service) List(ctx context.Context, petID string, limit, offset int) ([]Session, error) {
	if petID == "" {
		return []Session{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.repo.ListSessions(ctx, petID, limit, offset)
}

func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	points, err := s.repo.ListPoints(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if len(points) != PointsPerSession {
		metrics.GlycemiaPointMismatch.Inc()
		s.log.Warn("glycemia session with unexpected point count", map[string]any{
			"session_id": id,
			"points":     len(points),
		})
	}
	return Detail{Session: sess, Points: points}, nil
}

type UpdateSessionInput struct {
	SessionDate   *time.Time
	Notes         *string
	Times         []string // si viene, recalcula expected_at de los cinco puntos
	OffsetMinutes *int
}

func (s *Service) UpdateSession(ctx context.Context, id string, in UpdateSessionInput) error {
	sess, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if in.Times != nil && len(in.Times) != PointsPerSession {
		return apperr.Invalid("bad_body", "times must have 5 items")
	}

	now := s.now().UTC()
	if in.SessionDate != nil {
		sess.SessionDate = *in.SessionDate
	}
	if in.Notes != nil {
		sess.Notes = *in.Notes
	}
	sess.UpdatedAt = now

	var changed []Point
	if in.Times != nil {
		expected, err := expectedFromTimes(sess.SessionDate, in.Times, localtime.OffsetOrDefault(in.OffsetMinutes))
		if err != nil {
			return err
		}
		points, err := s.repo.ListPoints(ctx, id)
		if err != nil {
			return err
		}
		for _, p := range points {
			if p.Idx < 1 || p.Idx > PointsPerSession {
				continue
			}
			p.ExpectedAt = expected[p.Idx-1]
			p.UpdatedAt = now
			changed = append(changed, p)
		}
	}

	return s.repo.UpdateSession(ctx, sess, changed)
}

// PointInput: nil = no tocar. MeasuredAtTime (HH:MM) se resuelve sobre la
// fecha de la sesión.
type PointInput struct {
	GlucoseMgDl    *float64
	GlucoseStr     *string
	MeasuredAt     *time.Time
	MeasuredAtTime *string
	OffsetMinutes  *int
	DosageClicks   *int
	Notes          *string
}

func (s *Service) UpdatePoint(ctx context.Context, sessionID string, idx int, in PointInput) (Point, error) {
	sess, p, err := s.loadPoint(ctx, sessionID, idx)
	if err != nil {
		return Point{}, err
	}

	if in.GlucoseMgDl != nil {
		p.GlucoseMgDl = in.GlucoseMgDl
	}
	if in.GlucoseStr != nil {
		p.GlucoseStr = *in.GlucoseStr
	}
	switch {
	case in.MeasuredAt != nil:
		t := in.MeasuredAt.UTC()
		p.MeasuredAt = &t
	case in.MeasuredAtTime != nil:
		t, err := localtime.At(sess.SessionDate, *in.MeasuredAtTime, localtime.OffsetOrDefault(in.OffsetMinutes))
		if err != nil {
			return Point{}, apperr.Invalid("bad_body", err.Error())
		}
		p.MeasuredAt = &t
	}
	if in.DosageClicks != nil {
		p.DosageClicks = in.DosageClicks
	}
	if in.Notes != nil {
		p.Notes = *in.Notes
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdatePoint(ctx, p); err != nil {
		return Point{}, err
	}
	return p, nil
}

type ExpectedInput struct {
	ExpectedTime  *string
	ExpectedAt    *time.Time
	OffsetMinutes *int
}

func (s *Service) SetExpected(ctx context.Context, sessionID string, idx int, in ExpectedInput) (Point, error) {
	if in.ExpectedTime == nil && in.ExpectedAt == nil {
		return Point{}, apperr.Invalid("invalid_payload", "expectedTime or expectedAt required")
	}
	sess, p, err := s.loadPoint(ctx, sessionID, idx)
	if err != nil {
		return Point{}, err
	}

	if in.ExpectedTime != nil {
		t, err := localtime.At(sess.SessionDate, *in.ExpectedTime, localtime.OffsetOrDefault(in.OffsetMinutes))
		if err != nil {
			return Point{}, apperr.Invalid("invalid_payload", err.Error())
		}
		p.ExpectedAt = t
	} else {
		p.ExpectedAt = in.ExpectedAt.UTC()
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdatePoint(ctx, p); err != nil {
		return Point{}, err
	}
	return p, nil
}

func (s *Service) loadPoint(ctx context.Context, sessionID string, idx int) (Session, Point, error) {
	if idx < 1 || idx > PointsPerSession {
		return Session{}, Point{}, apperr.Invalid("bad_query", "idx must be between 1 and 5")
	}
	sess, err := s.repo.GetSession(ctx, sessionID)
	if errors.Is(err, apperr.ErrNotFound) {
		return Session{}, Point{}, apperr.NotFound("session_not_found")
	} else if err != nil {
		return Session{}, Point{}, err
	}
	p, err := s.repo.GetPoint(ctx, sessionID, idx)
	if err != nil {
		return Session{}, Point{}, err
	}
	return sess, p, nil
}

func (s *Service) Delete(ctx context.Context, id string) (DeleteResult, error) {
	res, err := s.repo.DeleteSession(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}
	if !res.SessionDeleted && res.PointsDeleted == 0 {
		return res, apperr.ErrNotFound
	}
	if !res.SessionDeleted || res.PointsDeleted != PointsPerSession {
		s.log.Warn("glycemia session deleted with unexpected counts", map[string]any{
			"session_id":      id,
			"points_deleted":  res.PointsDeleted,
			"session_deleted": res.SessionDeleted,
		})
	}
	return res, nil
}
