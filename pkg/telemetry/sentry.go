// Package telemetry reports best-effort failures that never reach the user.
package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

const serviceName = "slask-storefront"

type Config struct {
	DSN         string
	Environment string
	Debug       bool
}

// Init initializes Sentry and returns a flush function. Without a DSN nothing is
// initialized and the returned function is a no-op.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Debug:       cfg.Debug,
		ServerName:  serviceName,
	})
	if err != nil {
		log.Printf("sentry: failed to initialize (continuing with logs only): %v", err)
		return func() {}, nil
	}

	log.Printf("sentry: initialized (environment: %s)", cfg.Environment)
	return func() {
		sentry.Flush(5 * time.Second)
	}, nil
}

// Reporter receives failures that are absorbed instead of returned.
type Reporter interface {
	Report(ctx context.Context, component string, err error)
}

// LogReporter only writes failures to the log.
type LogReporter struct{}

func (LogReporter) Report(_ context.Context, component string, err error) {
	log.Printf("%s: %v", component, err)
}

// SentryReporter logs failures and captures them in Sentry tagged with the component.
type SentryReporter struct{}

func (SentryReporter) Report(ctx context.Context, component string, err error) {
	log.Printf("%s: %v", component, err)
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		hub.CaptureException(err)
	})
}

// NewReporter picks the Sentry reporter when a DSN is configured.
func NewReporter(cfg Config) Reporter {
	if cfg.DSN == "" {
		return LogReporter{}
	}
	return SentryReporter{}
}

// AddBreadcrumb records a navigation step, e.g. a facet selection, on the current scope.
func AddBreadcrumb(ctx context.Context, category, message string) {
	breadcrumb := &sentry.Breadcrumb{
		Type:      "default",
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.AddBreadcrumb(breadcrumb, nil)
	} else {
		sentry.AddBreadcrumb(breadcrumb)
	}
}
