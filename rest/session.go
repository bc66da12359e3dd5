package rest

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"search-storefront/logger"
)

const SessionCookieName = "sf_session"

// sessionID returns the visitor's session id, issuing a new cookie when the
// request carries none or a malformed one. The id is added to the request
// context for logging.
func (h *Handler) sessionID(c echo.Context) string {
	var id string
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		if parsed, err := uuid.Parse(cookie.Value); err == nil {
			id = parsed.String()
		}
	}

	if id == "" {
		id = uuid.NewString()
		c.SetCookie(&http.Cookie{
			Name:     SessionCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}

	req := c.Request()
	c.SetRequest(req.WithContext(logger.WithSessionID(req.Context(), id)))
	return id
}
