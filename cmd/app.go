package cmd

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mizutanik/refurbwatch/internal/clock/system"
	"github.com/mizutanik/refurbwatch/internal/config"
	"github.com/mizutanik/refurbwatch/internal/fetch"
	"github.com/mizutanik/refurbwatch/internal/logging"
	"github.com/mizutanik/refurbwatch/internal/match"
	"github.com/mizutanik/refurbwatch/internal/metrics"
	"github.com/mizutanik/refurbwatch/internal/notify"
	"github.com/mizutanik/refurbwatch/internal/snapshot"
	"github.com/mizutanik/refurbwatch/internal/watch"
)

// app holds the services a command needs, built once from configuration.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	runner  *watch.Runner
	closers []io.Closer
}

// buildApp loads configuration and wires the runner with all collaborators.
// It fails fast on any misconfigured service.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics.Init()

	a := &app{cfg: cfg, logger: logger}

	fetcher, err := fetch.NewClient(cfg.HTTP, logger)
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}

	var (
		detector watch.Detector
		renderer watch.Renderer
	)
	if cfg.Render.Enabled {
		detector = fetch.NewRenderDetector(cfg.Render)
		renderer = fetch.NewChromeRenderer(cfg.HTTP, cfg.Render, logger)
	}

	matcher := match.New(match.Target{
		Model:             cfg.Target.Model,
		Variant:           cfg.Target.Variant,
		Window:            cfg.Target.WindowBytes,
		FragmentClassHint: cfg.Target.FragmentClassHint,
		CurrencyPrefix:    cfg.Target.CurrencyPrefix,
	})

	sink, err := snapshot.New(ctx, cfg.Snapshot, logger)
	if err != nil {
		return nil, fmt.Errorf("init snapshot sink: %w", err)
	}
	a.trackCloser(sink)

	channels, err := a.buildChannels(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	dispatcher := notify.NewDispatcher(logger, channels...)
	if dispatcher.Channels() == 0 {
		logger.Info("no notification channel configured, runs will not notify")
	}

	runner, err := watch.NewRunner(
		cfg.Target,
		fetcher,
		detector,
		renderer,
		matcher,
		sink,
		dispatcher,
		system.New(),
		logger,
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init runner: %w", err)
	}
	a.runner = runner
	return a, nil
}

// buildChannels instantiates every configured notification channel.
func (a *app) buildChannels(ctx context.Context) ([]notify.Channel, error) {
	var channels []notify.Channel
	if url := a.cfg.Notify.Webhook.URL; url != "" {
		channels = append(channels, notify.NewWebhookChannel(url, a.cfg.Notify.Webhook.Timeout()))
	}
	if a.cfg.Notify.Email.To != "" {
		channels = append(channels, notify.NewEmailChannel(a.cfg.Notify.Email))
	}
	if ps := a.cfg.Notify.PubSub; ps.TopicID != "" {
		ch, err := notify.NewPubSubChannel(ctx, ps.ProjectID, ps.TopicID)
		if err != nil {
			return nil, fmt.Errorf("init pubsub channel: %w", err)
		}
		a.trackCloser(ch)
		channels = append(channels, ch)
	}
	return channels, nil
}

func (a *app) trackCloser(v any) {
	if c, ok := v.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
}

// Close shuts down services and flushes the logger.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("error closing service", zap.Error(err))
		}
	}
	// Best effort; stderr sync fails on some platforms.
	_ = a.logger.Sync()
}
