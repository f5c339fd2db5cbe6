// Package watch orchestrates one storefront check: fetch, optional headless
// render, heuristic matching, and notification fan-out.
package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mizutanik/refurbwatch/internal/config"
	"github.com/mizutanik/refurbwatch/internal/fetch"
	"github.com/mizutanik/refurbwatch/internal/match"
	"github.com/mizutanik/refurbwatch/internal/metrics"
	"github.com/mizutanik/refurbwatch/internal/notify"
	"github.com/mizutanik/refurbwatch/internal/snapshot"
)

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Fetcher fetches a single URL and returns the page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (fetch.Page, error)
}

// Renderer re-fetches a page with JavaScript enabled.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (fetch.Page, error)
}

// Detector decides whether a headless render is warranted.
type Detector interface {
	NeedsRender(page fetch.Page) bool
}

// DeliveryStatus summarizes one notification delivery for the run report.
type DeliveryStatus struct {
	Channel string `json:"channel"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// Report is the structured result of one run. It is returned to the caller
// and serialized by the serve-mode handler; it is never persisted.
type Report struct {
	RunID           string           `json:"run_id"`
	URL             string           `json:"url"`
	Found           bool             `json:"found"`
	Matches         []match.Result   `json:"matches"`
	StatusCode      int              `json:"status_code,omitempty"`
	Rendered        bool             `json:"rendered"`
	FetchedAt       time.Time        `json:"fetched_at"`
	FetchDurationMs int64            `json:"fetch_duration_ms"`
	SnapshotURI     string           `json:"snapshot_uri,omitempty"`
	Deliveries      []DeliveryStatus `json:"deliveries,omitempty"`
}

// Runner executes storefront checks. All collaborators are injected; the
// runner holds no mutable state between runs.
type Runner struct {
	target     config.TargetConfig
	loc        *time.Location
	fetcher    Fetcher
	detector   Detector
	renderer   Renderer
	matcher    *match.Matcher
	sink       snapshot.Sink
	dispatcher *notify.Dispatcher
	clock      Clock
	logger     *zap.Logger
}

// NewRunner constructs a Runner. renderer may be nil to disable the headless
// fallback; sink may be a NoopSink.
func NewRunner(
	target config.TargetConfig,
	fetcher Fetcher,
	detector Detector,
	renderer Renderer,
	matcher *match.Matcher,
	sink snapshot.Sink,
	dispatcher *notify.Dispatcher,
	clk Clock,
	logger *zap.Logger,
) (*Runner, error) {
	loc, err := target.Location()
	if err != nil {
		return nil, fmt.Errorf("resolve target locale: %w", err)
	}
	if sink == nil {
		sink = snapshot.NoopSink{}
	}
	return &Runner{
		target:     target,
		loc:        loc,
		fetcher:    fetcher,
		detector:   detector,
		renderer:   renderer,
		matcher:    matcher,
		sink:       sink,
		dispatcher: dispatcher,
		clock:      clk,
		logger:     logger,
	}, nil
}

// Run performs one check. The returned error is non-nil only on the fetch
// path; "not found" is a normal outcome. Notification failures are reported
// inside the Report and never propagate.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	runID := uuid.NewString()
	log := r.logger.With(zap.String("run_id", runID), zap.String("url", r.target.URL))
	log.Info("starting storefront check",
		zap.String("model", r.target.Model),
		zap.String("variant", r.target.Variant),
	)

	page, err := r.fetcher.Fetch(ctx, r.target.URL)
	if err != nil {
		return r.failRun(ctx, log, runID, err), err
	}

	if r.renderer != nil && r.detector != nil && r.detector.NeedsRender(page) {
		log.Info("page looks script-rendered, retrying headless")
		rendered, rerr := r.renderer.Render(ctx, r.target.URL)
		if rerr != nil {
			log.Warn("headless render failed, matching the plain body", zap.Error(rerr))
		} else {
			rendered.Duration += page.Duration
			page = rendered
		}
	}

	fetchedAt := r.clock.Now()
	report := Report{
		RunID:           runID,
		URL:             r.target.URL,
		StatusCode:      page.StatusCode,
		Rendered:        page.Rendered,
		FetchedAt:       fetchedAt,
		FetchDurationMs: page.Duration.Milliseconds(),
	}

	if uri, serr := r.sink.Save(ctx, snapshotName(fetchedAt, runID), page.Body); serr != nil {
		log.Warn("snapshot save failed", zap.Error(serr))
	} else if uri != "" {
		report.SnapshotURI = uri
	}

	matches := r.matcher.Match(page.Body, fetchedAt)
	report.Matches = matches
	report.Found = len(matches) > 0

	if !report.Found {
		log.Info("variant not available this run")
		metrics.ObserveRun(metrics.OutcomeNotFound, page.Duration)
		return report, nil
	}

	log.Info("variant available", zap.Int("listings", len(matches)))
	metrics.ObserveRun(metrics.OutcomeFound, page.Duration)
	metrics.ObserveMatches(len(matches))

	msg := notify.FoundMessage(r.target.Model, r.target.Variant, r.target.URL, matches, fetchedAt.In(r.loc))
	report.Deliveries = observeDeliveries(r.dispatcher.Notify(ctx, msg))
	return report, nil
}

// failRun handles the fetch-error path: error notification, metrics, and a
// minimal report.
func (r *Runner) failRun(ctx context.Context, log *zap.Logger, runID string, err error) Report {
	now := r.clock.Now()
	log.Error("storefront fetch failed", zap.Error(err))
	metrics.ObserveRun(metrics.OutcomeFetchError, 0)

	report := Report{
		RunID:     runID,
		URL:       r.target.URL,
		FetchedAt: now,
	}
	var ferr *fetch.Error
	if errors.As(err, &ferr) {
		report.StatusCode = ferr.StatusCode
	}
	report.Deliveries = observeDeliveries(r.dispatcher.Notify(ctx, notify.ErrorMessage(r.target.URL, err, now)))
	return report
}

func observeDeliveries(deliveries []notify.Delivery) []DeliveryStatus {
	if len(deliveries) == 0 {
		return nil
	}
	statuses := make([]DeliveryStatus, 0, len(deliveries))
	for _, del := range deliveries {
		metrics.ObserveDelivery(del.Channel, del.Err == nil)
		status := DeliveryStatus{Channel: del.Channel, OK: del.Err == nil}
		if del.Err != nil {
			status.Error = del.Err.Error()
		}
		statuses = append(statuses, status)
	}
	return statuses
}

func snapshotName(at time.Time, runID string) string {
	return fmt.Sprintf("%s-%s.html", at.UTC().Format("20060102T150405Z"), runID)
}
