package feed

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"feedbot/pkg/logx"
)

const listPlaceholder = "# Add your RSS feeds here, one per line\n"

// Source holds the subscribed feed URLs read from a newline-delimited file.
// Blank lines and '#' comments are ignored. The file is created with a
// placeholder comment when absent, and changes are picked up between poll
// cycles via fsnotify.
type Source struct {
	path string
	log  logx.Logger

	mu   sync.RWMutex
	urls []string
}

func NewSource(path string, log logx.Logger) *Source {
	return &Source{path: path, log: log}
}

// Load reads the feed list file, creating it (with a placeholder) if missing.
func (s *Source) Load() error {
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.log.Warn("feed list not found; creating", logx.String("path", s.path))
		if mkErr := os.MkdirAll(filepath.Dir(s.path), 0o755); mkErr != nil {
			return fmt.Errorf("create feed list dir: %w", mkErr)
		}
		if wrErr := os.WriteFile(s.path, []byte(listPlaceholder), 0o644); wrErr != nil {
			return fmt.Errorf("create feed list %s: %w", s.path, wrErr)
		}
		s.setURLs(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read feed list %s: %w", s.path, err)
	}

	urls := parseList(string(b))
	s.setURLs(urls)
	s.log.Info("feed list loaded", logx.Int("count", len(urls)), logx.String("path", s.path))
	return nil
}

// URLs returns a snapshot of the current feed list.
func (s *Source) URLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.urls))
	copy(out, s.urls)
	return out
}

func (s *Source) setURLs(urls []string) {
	s.mu.Lock()
	s.urls = urls
	s.mu.Unlock()
}

func parseList(content string) []string {
	var urls []string
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls
}

// Watch reloads the feed list when the file changes. It watches the parent
// directory and matches by basename, which survives editor rename-and-replace
// saves. Blocks until ctx is cancelled.
func (s *Source) Watch(ctx context.Context) {
	dir := filepath.Dir(s.path)
	base := filepath.Base(s.path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.log.Warn("feed list watch init failed", logx.Err(err))
		return
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		s.log.Warn("feed list watch add failed", logx.Err(err), logx.String("dir", dir))
		return
	}
	s.log.Debug("feed list watcher started", logx.String("path", s.path))

	// debounce to avoid reading partial writes
	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	reload := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, func() {
			if err := s.Load(); err != nil {
				s.log.Warn("feed list reload failed", logx.Err(err))
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !strings.EqualFold(filepath.Base(ev.Name), base) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				reload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			if err != nil {
				s.log.Warn("feed list watch error", logx.Err(err))
			}
		}
	}
}
