package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all OTel metric instruments for search-storefront.
// It stays nil until InitMetrics runs; the Record helpers are no-ops then.
var Metrics *StorefrontMetrics

// StorefrontMetrics contains all metric instruments.
type StorefrontMetrics struct {
	SearchDuration     metric.Float64Histogram
	WidgetEventsTotal  metric.Int64Counter
	RefinesTotal       metric.Int64Counter
	SessionErrorsTotal metric.Int64Counter
	SyncedTotal        metric.Int64Counter
	SyncErrorsTotal    metric.Int64Counter
}

// InitMetrics initializes all metric instruments.
func InitMetrics() error {
	meter := otel.Meter("search-storefront")

	searchDuration, err := meter.Float64Histogram("storefront_search_duration_seconds",
		metric.WithDescription("Search request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	widgetEvents, err := meter.Int64Counter("storefront_widget_events_total",
		metric.WithDescription("Total number of range widget events by kind"),
	)
	if err != nil {
		return err
	}

	refines, err := meter.Int64Counter("storefront_refines_total",
		metric.WithDescription("Total number of range refinements issued"),
	)
	if err != nil {
		return err
	}

	sessionErrors, err := meter.Int64Counter("storefront_session_store_errors_total",
		metric.WithDescription("Total number of session store failures"),
	)
	if err != nil {
		return err
	}

	syncedTotal, err := meter.Int64Counter("storefront_catalog_synced_total",
		metric.WithDescription("Total number of products synced into the index"),
	)
	if err != nil {
		return err
	}

	syncErrors, err := meter.Int64Counter("storefront_catalog_sync_errors_total",
		metric.WithDescription("Total number of failed catalog sync runs"),
	)
	if err != nil {
		return err
	}

	Metrics = &StorefrontMetrics{
		SearchDuration:     searchDuration,
		WidgetEventsTotal:  widgetEvents,
		RefinesTotal:       refines,
		SessionErrorsTotal: sessionErrors,
		SyncedTotal:        syncedTotal,
		SyncErrorsTotal:    syncErrors,
	}

	return nil
}

func (m *StorefrontMetrics) RecordSearch(ctx context.Context, kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.SearchDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *StorefrontMetrics) RecordWidgetEvent(ctx context.Context, event string, refined bool) {
	if m == nil {
		return
	}
	m.WidgetEventsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
	if refined {
		m.RefinesTotal.Add(ctx, 1)
	}
}

func (m *StorefrontMetrics) RecordSessionError(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.SessionErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func (m *StorefrontMetrics) RecordSync(ctx context.Context, synced int, failed bool) {
	if m == nil {
		return
	}
	if synced > 0 {
		m.SyncedTotal.Add(ctx, int64(synced))
	}
	if failed {
		m.SyncErrorsTotal.Add(ctx, 1)
	}
}
