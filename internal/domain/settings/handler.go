package settings

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-health-log/internal/platform/httpjson"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/settings/me", getHandler(svc))
	r.Put("/settings/me", updateHandler(svc))
}

// updateRequest acepta theme_color como alias de themeColor.
type updateRequest struct {
	Email           *string `json:"email" validate:"omitempty,email,max=255"`
	Phone           *string `json:"phone" validate:"omitempty,max=30"`
	ThemeColor      *string `json:"themeColor" validate:"omitempty,hexcolor6"`
	ThemeColorSnake *string `json:"theme_color" validate:"omitempty,hexcolor6"`
}

// Response mantiene las claves que ya consume la app (themeColor, createdAt).
type Response struct {
	UserID     string    `json:"user_id"`
	Email      *string   `json:"email"`
	Phone      *string   `json:"phone"`
	ThemeColor *string   `json:"themeColor"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.Get(r.Context(), DefaultUserID)
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, Response(s))
	}
}

// updateHandler godoc
// @Summary Actualizar configuración
// @Description Los campos ausentes conservan su valor. theme_color se acepta como alias.
// @Tags settings
// @Accept json
// @Produce json
// @Param payload body updateRequest true "email, phone, themeColor"
// @Success 200 {object} Response
// @Failure 400 {object} map[string]any "bad_body"
// @Router /settings/me [put]
func updateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest
		if err := httpjson.Bind(r, &req); err != nil {
			httpjson.Error(w, err)
			return
		}
		color := req.ThemeColor
		if color == nil {
			color = req.ThemeColorSnake
		}

		s, err := svc.Update(r.Context(), DefaultUserID, UpdateInput{
			Email:      req.Email,
			Phone:      req.Phone,
			ThemeColor: color,
		})
		if err != nil {
			httpjson.Error(w, err)
			return
		}
		httpjson.Write(w, http.StatusOK, Response(s))
	}
}
