// Package feed retrieves and parses syndication feeds and maintains the
// subscribed feed list.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// ErrNoEntries marks a feed that parsed fine but yielded zero items.
var ErrNoEntries = errors.New("feed has no entries")

// Entry is one feed item with all optional fields resolved to concrete
// values at parse time, so downstream code never probes for presence.
type Entry struct {
	// ID is the stable identity used for dedup: the item's GUID when set,
	// otherwise its link, unnormalized on purpose (stability across runs of
	// the same feed is all that matters).
	ID          string
	Title       string
	Link        string
	Description string
}

// Feed is the parse result for one feed URL.
type Feed struct {
	Title   string
	Entries []Entry
}

type Fetcher struct {
	parser  *gofeed.Parser
	timeout time.Duration
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{parser: gofeed.NewParser(), timeout: timeout}
}

// Fetch retrieves and parses a feed. Failures never abort the caller's
// cycle; the poller logs and moves to the next feed.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	parsed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}
	if len(parsed.Items) == 0 {
		return nil, fmt.Errorf("feed %s: %w", url, ErrNoEntries)
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = url
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entries = append(entries, entryFromItem(item))
	}
	return &Feed{Title: title, Entries: entries}, nil
}

func entryFromItem(item *gofeed.Item) Entry {
	id := item.GUID
	if id == "" {
		id = item.Link
	}
	title := item.Title
	if strings.TrimSpace(title) == "" {
		title = "No title"
	}
	desc := item.Description
	if desc == "" {
		desc = item.Content
	}
	return Entry{ID: id, Title: title, Link: item.Link, Description: desc}
}
