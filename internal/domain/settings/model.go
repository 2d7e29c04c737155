package settings

import "time"

// DefaultUserID: la app es de un solo usuario por ahora.
const DefaultUserID = "me"

type Settings struct {
	UserID     string
	Email      *string
	Phone      *string
	ThemeColor *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
