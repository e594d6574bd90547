// Package poller drives the fetch/dedup/notify cycle on a fixed interval.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"feedbot/internal/digest"
	"feedbot/internal/feed"
	"feedbot/internal/sanitize"
	"feedbot/internal/store"
	"feedbot/internal/transport"
	"feedbot/pkg/logx"
)

// Fetcher retrieves and parses one feed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*feed.Feed, error)
}

// Source yields the current feed list snapshot.
type Source interface {
	URLs() []string
}

type Config struct {
	Interval           time.Duration
	ChatID             int64
	IncludeDescription bool
	Silent             bool
}

// Service runs one cycle immediately on Start, then one per interval until
// stopped. Cycles never overlap; no feed or send failure ever stops the loop.
type Service struct {
	cfg     Config
	src     Source
	fetcher Fetcher
	store   *store.Store
	sender  transport.Sender
	san     *sanitize.Sanitizer
	log     logx.Logger

	// limiter paces sends on feed boundaries to stay under Telegram's
	// throttling radar.
	limiter *rate.Limiter

	mu     sync.Mutex
	c      *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup

	cycleMu sync.Mutex
}

func New(cfg Config, src Source, fetcher Fetcher, st *store.Store, sender transport.Sender, log logx.Logger) *Service {
	return &Service{
		cfg:     cfg,
		src:     src,
		fetcher: fetcher,
		store:   st,
		sender:  sender,
		san:     sanitize.New(),
		log:     log,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}

	rctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.c = cron.New()
	s.c.Schedule(cron.ConstantDelaySchedule{Delay: s.cfg.Interval}, cron.FuncJob(func() {
		s.RunCycle(rctx)
	}))

	// First cycle fires immediately; cron covers the rest.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunCycle(rctx)
	}()
	s.c.Start()
	s.log.Info("poller started", logx.Duration("interval", s.cfg.Interval))
}

func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	cancel := s.cancel
	s.c = nil
	s.cancel = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	if cancel != nil {
		cancel()
	}

	stopCtx := c.Stop()
	done := make(chan struct{})
	go func() {
		<-stopCtx.Done()
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.log.Info("poller stopped")
	case <-ctx.Done():
		s.log.Warn("poller stop cancelled", logx.Err(ctx.Err()))
	}
}

// RunCycle performs one full pass: fetch every feed, filter against the
// seen store, batch, send, persist. Overlapping triggers are skipped rather
// than queued; only one cycle runs at a time.
func (s *Service) RunCycle(ctx context.Context) {
	if !s.cycleMu.TryLock() {
		s.log.Warn("previous cycle still running; skipping")
		return
	}
	defer s.cycleMu.Unlock()
	if ctx.Err() != nil {
		return
	}

	urls := s.src.URLs()
	if len(urls) == 0 {
		s.log.Warn("no feeds to check; add feeds to the list file")
		return
	}

	var groups []digest.Group
	for _, url := range urls {
		if ctx.Err() != nil {
			return
		}
		s.log.Info("checking feed", logx.String("url", url))

		f, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			s.log.Warn("feed check failed", logx.String("url", url), logx.Err(err))
			continue
		}

		g := digest.Group{FeedTitle: f.Title}
		for _, e := range f.Entries {
			if s.store.HasSeen(url, e.ID) {
				continue
			}
			item := digest.Item{Title: e.Title, Link: e.Link}
			if s.cfg.IncludeDescription {
				item.Description = s.san.Description(e.Description)
			}
			g.Items = append(g.Items, item)
			s.store.MarkSeen(url, e.ID)
		}
		if len(g.Items) > 0 {
			groups = append(groups, g)
		}
	}

	chunks := digest.Build(groups)
	if len(chunks) == 0 {
		s.log.Info("no new content to notify")
	} else {
		s.send(ctx, chunks)
	}

	if err := s.store.Save(); err != nil {
		s.log.Error("history save failed; restart may re-notify", logx.Err(err))
	}
}

func (s *Service) send(ctx context.Context, chunks []digest.Chunk) {
	to := transport.ChatTarget{ChatID: s.cfg.ChatID}
	opt := &transport.SendOptions{ParseMode: "Markdown", Silent: s.cfg.Silent}

	var lastFeed string
	for _, ch := range chunks {
		if lastFeed != "" && ch.FeedTitle != lastFeed {
			if err := s.limiter.Wait(ctx); err != nil {
				return
			}
		}
		if _, err := s.sender.SendText(ctx, to, ch.Text, opt); err != nil {
			s.log.Error("send failed", logx.String("feed", ch.FeedTitle), logx.Int64("chat_id", to.ChatID), logx.Err(err))
		}
		lastFeed = ch.FeedTitle
	}
}
