package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"search-storefront/config"
	"search-storefront/consumer"
	"search-storefront/gateway"
	"search-storefront/logger"
	"search-storefront/rest"
	"search-storefront/usecase"
	appOtel "search-storefront/utils/otel"

	"github.com/cenkalti/backoff/v5"
)

// App holds the long-lived components of the storefront service.
type App struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	sessionDriver   sessionDriver
	catalogClose    func()
	eventConsumer   *consumer.Consumer
	eventHandler    *consumer.IndexEventHandler
	otelShutdown    appOtel.ShutdownFunc
}

// Run initializes all components and starts the service.
// It blocks until ctx is cancelled, then performs graceful shutdown.
func Run(ctx context.Context) error {
	// ── OpenTelemetry ──
	otelCfg := appOtel.ConfigFromEnv()
	otelShutdown, err := appOtel.InitProvider(ctx, otelCfg)
	if err != nil {
		fmt.Printf("Failed to initialize OpenTelemetry: %v\n", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	// ── Logger ──
	logger.InitWithOTel(otelCfg.Exports(appOtel.SignalLogs))
	logger.Logger.Info("Starting search-storefront",
		"service", otelCfg.ServiceName,
		"otel_enabled", otelCfg.Enabled,
	)

	// ── Load config ──
	appCfg, err := config.Load()
	if err != nil {
		logger.Logger.Error("Failed to load config", "err", err)
		return err
	}

	app := &App{
		shutdownTimeout: appCfg.HTTP.ShutdownTimeout,
		otelShutdown:    otelShutdown,
	}

	// ── Drivers (infrastructure layer) ──
	searchDriver, err := initMeilisearchDriver(ctx, appCfg.Meilisearch)
	if err != nil {
		logger.Logger.Error("Failed to initialize Meilisearch", "err", err)
		app.close()
		return err
	}

	app.sessionDriver, err = initSessionDriver(ctx, appCfg.Session)
	if err != nil {
		logger.Logger.Error("Failed to initialize session store", "err", err)
		app.close()
		return err
	}

	// ── Gateways (anti-corruption layer) ──
	searchEngine := gateway.NewSearchEngineGateway(searchDriver)
	sessionStore := gateway.NewSessionStoreGateway(app.sessionDriver)

	if err := searchEngine.EnsureIndex(ctx); err != nil {
		logger.Logger.Error("Failed to ensure search index", "err", err)
		app.close()
		return err
	}

	// ── Use cases (application layer) ──
	searchUsecase := usecase.NewSearchProductsUsecase(
		searchEngine,
		appCfg.Search.PriceAttribute,
		appCfg.Search.FacetAttributes,
		appCfg.Search.HitsPerPage,
	)
	storefrontUsecase := usecase.NewStorefrontUsecase(sessionStore, searchUsecase)

	// ── Catalog sync (optional) ──
	if appCfg.Catalog.Enabled {
		catalogDriver, catalogClose, err := initCatalogDriver(ctx, appCfg.Catalog.Database)
		if err != nil {
			logger.Logger.Error("Failed to initialize catalog database", "err", err)
			app.close()
			return err
		}
		app.catalogClose = catalogClose

		productRepo := gateway.NewProductRepositoryGateway(catalogDriver)
		syncUsecase := usecase.NewSyncCatalogUsecase(productRepo, searchEngine)
		go runSyncLoop(ctx, syncUsecase, appCfg.Catalog)
		app.startEventConsumer(ctx, syncUsecase)
	} else {
		logger.Logger.Info("Catalog sync disabled")
	}

	// ── HTTP server ──
	handler := rest.NewHandler(storefrontUsecase, appCfg.HTTP.SecureCookies)
	app.httpServer = newHTTPServer(newEcho(handler, otelCfg), appCfg.HTTP)

	go func() {
		logger.Logger.Info("http listen", "addr", appCfg.HTTP.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Error("http", "err", err)
		}
	}()

	// ── Wait for shutdown signal ──
	<-ctx.Done()
	app.shutdown()
	return nil
}

// startEventConsumer re-indexes products named by change events between
// full syncs. A consumer that fails to start is logged and skipped.
func (a *App) startEventConsumer(ctx context.Context, syncUsecase *usecase.SyncCatalogUsecase) {
	consumerCfg := consumer.ConfigFromEnv()
	if !consumerCfg.Enabled {
		logger.Logger.Info("Catalog event consumer disabled")
		return
	}

	handler := consumer.NewIndexEventHandler(syncUsecase, logger.Logger)
	eventConsumer, err := consumer.NewConsumer(consumerCfg, handler, logger.Logger)
	if err != nil {
		logger.Logger.Error("Failed to create catalog event consumer", "err", err)
		handler.Stop()
		return
	}
	if err := eventConsumer.Start(ctx); err != nil {
		logger.Logger.Error("Failed to start catalog event consumer", "err", err)
		eventConsumer.Stop()
		handler.Stop()
		return
	}

	a.eventConsumer = eventConsumer
	a.eventHandler = handler
	logger.Logger.Info("Catalog event consumer started",
		"stream", consumerCfg.StreamKey,
		"group", consumerCfg.GroupName,
	)
}

// shutdown drains the HTTP server, then releases everything else.
func (a *App) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("http shutdown error", "err", err)
		}
	}
	a.close()
}

func (a *App) close() {
	if a.eventConsumer != nil {
		a.eventConsumer.Stop()
	}
	if a.eventHandler != nil {
		a.eventHandler.Stop()
	}
	if a.sessionDriver != nil {
		if err := a.sessionDriver.Close(); err != nil {
			logger.Logger.Error("session store close error", "err", err)
		}
	}
	if a.catalogClose != nil {
		a.catalogClose()
	}

	otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer otelCancel()
	if err := a.otelShutdown(otelCtx); err != nil {
		fmt.Printf("Failed to shutdown OpenTelemetry: %v\n", err)
	}
}

// newRetryBackoff creates the backoff policy for failed catalog syncs.
func newRetryBackoff(initial time.Duration) *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initial
	bo.MaxInterval = 30 * time.Minute
	bo.Multiplier = 2
	return bo
}

// runSyncLoop copies the whole catalog into the index every interval,
// backing off after failures.
func runSyncLoop(ctx context.Context, syncUsecase *usecase.SyncCatalogUsecase, cfg config.CatalogConfig) {
	defer func() {
		if r := recover(); r != nil {
			logger.Logger.Error("catalog sync loop panic", "err", r)
		}
	}()

	bo := newRetryBackoff(cfg.RetryInterval)
	for run := 1; ; run++ {
		runCtx := logger.WithSyncRun(ctx, strconv.Itoa(run))
		log := logger.FromContext(runCtx)

		start := time.Now()
		synced, err := syncUsecase.SyncAll(runCtx, cfg.BatchSize)

		wait := cfg.Interval
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			wait = bo.NextBackOff()
			log.Error("catalog sync failed, retrying", "err", err, "synced", synced, "retry_in", wait)
		default:
			bo.Reset()
			log.Info("catalog synced", "count", synced, "duration", time.Since(start))
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return
		}
	}
}
