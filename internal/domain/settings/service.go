package settings

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-health-log/internal/platform/apperr"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get devuelve la configuración; si no existe, crea la fila vacía.
func (s *Service) Get(ctx context.Context, userID string) (Settings, error) {
	cur, err := s.repo.Get(ctx, userID)
	if err == nil {
		return cur, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return Settings{}, err
	}

	now := s.now().UTC()
	cur = Settings{UserID: userID, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.Save(ctx, cur); err != nil {
		return Settings{}, err
	}
	return cur, nil
}

type UpdateInput struct {
	Email      *string
	Phone      *string
	ThemeColor *string
}

// Update mezcla los campos enviados con los guardados (nil = se conserva).
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (Settings, error) {
	cur, err := s.Get(ctx, userID)
	if err != nil {
		return Settings{}, err
	}
	if in.Email != nil {
		cur.Email = trimmed(*in.Email)
	}
	if in.Phone != nil {
		cur.Phone = trimmed(*in.Phone)
	}
	if in.ThemeColor != nil {
		cur.ThemeColor = trimmed(*in.ThemeColor)
	}
	cur.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, cur); err != nil {
		return Settings{}, err
	}
	return cur, nil
}

func trimmed(s string) *string {
	s = strings.TrimSpace(s)
	return &s
}
