package bootstrap

import (
	"net/http"

	"search-storefront/config"
	"search-storefront/logger"
	appmiddleware "search-storefront/middleware"
	"search-storefront/rest"
	appOtel "search-storefront/utils/otel"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// newEcho builds the router with the middleware chain and storefront routes.
func newEcho(handler *rest.Handler, otelCfg appOtel.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if otelCfg.Exports(appOtel.SignalTraces) {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
		e.Use(appmiddleware.OTelStatusMiddleware())
	}

	e.Use(appmiddleware.RequestIDMiddleware())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.FromContext(c.Request().Context()).InfoContext(c.Request().Context(), "HTTP request completed",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"error", v.Error,
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	handler.RegisterRoutes(e)
	return e
}

// newHTTPServer serves the storefront over HTTP/1.1 and cleartext HTTP/2 for
// proxies that speak h2c.
func newHTTPServer(e *echo.Echo, cfg config.HTTPConfig) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(e, &http2.Server{}),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
