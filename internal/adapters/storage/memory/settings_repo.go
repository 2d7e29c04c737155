package memory

import (
	"context"

	"pet-health-log/internal/domain/settings"
	"pet-health-log/internal/platform/apperr"
)

type settingsRepo struct{ st *Store }

func NewSettingsRepo(st *Store) settings.Repository {
	return &settingsRepo{st: st}
}

func (r *settingsRepo) Get(ctx context.Context, userID string) (settings.Settings, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	s, ok := r.st.settings[userID]
	if !ok {
		return settings.Settings{}, apperr.ErrNotFound
	}
	return s, nil
}

func (r *settingsRepo) Save(ctx context.Context, s settings.Settings) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if cur, ok := r.st.settings[s.UserID]; ok {
		s.CreatedAt = cur.CreatedAt
	}
	r.st.settings[s.UserID] = s
	return nil
}
