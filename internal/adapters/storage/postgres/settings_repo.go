package postgres

import (
	"context"
	"database/sql"

	"pet-health-log/internal/domain/settings"
)

type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) Get(ctx context.Context, userID string) (settings.Settings, error) {
	var (
		s                   settings.Settings
		email, phone, theme sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, email, phone, theme_color, created_at, updated_at
		FROM user_settings
		WHERE user_id = $1
	`, userID).Scan(&s.UserID, &email, &phone, &theme, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return settings.Settings{}, mapErr(err)
	}
	s.Email = stringPtr(email)
	s.Phone = stringPtr(phone)
	s.ThemeColor = stringPtr(theme)
	return s, nil
}

// Save hace upsert; created_at queda el de la primera vez.
func (r *SettingsRepo) Save(ctx context.Context, s settings.Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, email, phone, theme_color, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id) DO UPDATE
		SET email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			theme_color = EXCLUDED.theme_color,
			updated_at = EXCLUDED.updated_at
	`,
		s.UserID,
		nullString(s.Email),
		nullString(s.Phone),
		nullString(s.ThemeColor),
		s.CreatedAt,
		s.UpdatedAt,
	)
	return mapErr(err)
}

var _ settings.Repository = (*SettingsRepo)(nil)
