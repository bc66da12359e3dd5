package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"search-storefront/logger"
)

const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds ids accepted from upstream proxies.
const maxRequestIDLength = 128

// RequestIDMiddleware reuses the caller's X-Request-ID or generates one, and
// puts it on the request context for the context logger.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			requestID := req.Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = uuid.NewString()
			}

			ctx := logger.WithRequestID(req.Context(), requestID)
			c.SetRequest(req.WithContext(ctx))
			c.Response().Header().Set(RequestIDHeader, requestID)

			return next(c)
		}
	}
}
