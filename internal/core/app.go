// Package core wires configuration, logging, transport, and the poller into
// one application lifecycle.
package core

import (
	"context"
	"fmt"
	"time"

	"feedbot/internal/config"
	"feedbot/internal/feed"
	"feedbot/internal/poller"
	"feedbot/internal/store"
	"feedbot/internal/transport"
	"feedbot/internal/transport/telegram"
	"feedbot/pkg/logx"
)

const startupMessage = "🤖 *RSS Monitoring Bot started!*\nActive feed monitoring. Configuration loaded from file."

type App struct {
	cfg      config.Config
	log      logx.Logger
	closeLog func() error

	sender transport.Sender
	source *feed.Source
	poller *poller.Service
}

// NewApp loads and validates config and builds every component. A missing
// Telegram credential surfaces here and stops the process before the loop.
func NewApp(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, closeLog := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	interval, err := cfg.CheckInterval()
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	fetchTimeout, err := cfg.FetchTimeout()
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	sender, err := telegram.New(telegram.Config{Token: cfg.Telegram.Token}, log.With(logx.String("svc", "telegram")))
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("telegram init: %w", err)
	}

	source := feed.NewSource(cfg.Feeds.ListFile, log.With(logx.String("svc", "feeds")))
	if err := source.Load(); err != nil {
		// Degraded but not fatal: an unreadable list means an empty cycle,
		// same as the feed file being empty.
		log.Warn("feed list load failed", logx.Err(err))
	}

	st := store.Load(cfg.Feeds.HistoryFile, log.With(logx.String("svc", "history")))

	pol := poller.New(poller.Config{
		Interval:           interval,
		ChatID:             cfg.Telegram.ChatID,
		IncludeDescription: cfg.Feeds.IncludeDescription,
		Silent:             cfg.Telegram.DisableNotification,
	}, source, feed.NewFetcher(fetchTimeout), st, sender, log.With(logx.String("svc", "poller")))

	log.Info("configuration loaded",
		logx.Duration("interval", interval),
		logx.Bool("include_description", cfg.Feeds.IncludeDescription),
		logx.Bool("disable_notification", cfg.Telegram.DisableNotification),
	)

	return &App{
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
		sender:   sender,
		source:   source,
		poller:   pol,
	}, nil
}

func (a *App) Log() logx.Logger { return a.log }

// Start announces startup (best-effort), begins watching the feed list, and
// starts the poll loop.
func (a *App) Start(ctx context.Context) error {
	announceCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	to := transport.ChatTarget{ChatID: a.cfg.Telegram.ChatID}
	opt := &transport.SendOptions{ParseMode: "Markdown", Silent: a.cfg.Telegram.DisableNotification}
	if _, err := a.sender.SendText(announceCtx, to, startupMessage, opt); err != nil {
		a.log.Warn("startup announcement failed", logx.Err(err))
	}

	go a.source.Watch(ctx)
	a.poller.Start(ctx)
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	a.poller.Stop(ctx)
	return a.closeLog()
}
