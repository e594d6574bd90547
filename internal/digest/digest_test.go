package digest

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildSingleChunk(t *testing.T) {
	t.Parallel()
	chunks := Build([]Group{{
		FeedTitle: "Example Feed",
		Items: []Item{
			{Title: "First", Link: "https://e.x/1"},
			{Title: "Second", Link: "https://e.x/2"},
		},
	}})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	text := chunks[0].Text
	if !strings.HasPrefix(text, "📢 *New content from Example Feed*\n\n") {
		t.Fatalf("missing header: %q", text[:40])
	}
	if strings.Count(text, "• *") != 2 {
		t.Fatalf("expected 2 entry blocks, got %d", strings.Count(text, "• *"))
	}
	if strings.Index(text, "First") > strings.Index(text, "Second") {
		t.Fatal("entry order not preserved")
	}
}

func TestBuildSplitsOnBudget(t *testing.T) {
	t.Parallel()
	title := strings.Repeat("t", 100)
	link := "https://example.org/entry"
	block := formatItem(Item{Title: title, Link: link})
	blockLen := utf8.RuneCountInString(block)
	headerLen := utf8.RuneCountInString("📢 *New content from F*\n\n")

	// Enough items that exactly one overflows the first chunk.
	fit := (MaxMessageLength - headerLen) / blockLen
	items := make([]Item, fit+1)
	for i := range items {
		items[i] = Item{Title: title, Link: link}
	}

	chunks := Build([]Group{{FeedTitle: "F", Items: items}})
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if got := strings.Count(chunks[0].Text, "• *"); got != fit {
		t.Fatalf("first chunk has %d entries, want %d", got, fit)
	}
	if got := strings.Count(chunks[1].Text, "• *"); got != 1 {
		t.Fatalf("second chunk has %d entries, want 1", got)
	}
	for i, ch := range chunks {
		if !strings.HasPrefix(ch.Text, "📢 *New content from F*") {
			t.Fatalf("chunk %d missing header", i)
		}
		if utf8.RuneCountInString(ch.Text) > MaxMessageLength {
			t.Fatalf("chunk %d exceeds budget: %d runes", i, utf8.RuneCountInString(ch.Text))
		}
	}
}

func TestBuildFeedsNeverShareChunks(t *testing.T) {
	t.Parallel()
	chunks := Build([]Group{
		{FeedTitle: "Alpha", Items: []Item{{Title: "a", Link: "https://a"}}},
		{FeedTitle: "Beta", Items: []Item{{Title: "b", Link: "https://b"}}},
	})

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].FeedTitle != "Alpha" || chunks[1].FeedTitle != "Beta" {
		t.Fatalf("feed order not preserved: %s, %s", chunks[0].FeedTitle, chunks[1].FeedTitle)
	}
	if strings.Contains(chunks[0].Text, "Beta") || strings.Contains(chunks[1].Text, "Alpha") {
		t.Fatal("entries from different feeds leaked into one chunk")
	}
}

func TestBuildSkipsEmptyGroups(t *testing.T) {
	t.Parallel()
	chunks := Build([]Group{
		{FeedTitle: "Empty"},
		{FeedTitle: "Full", Items: []Item{{Title: "x", Link: "https://x"}}},
	})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if strings.Contains(chunks[0].Text, "Empty") {
		t.Fatal("empty feed must not produce a header")
	}
}

func TestBuildOversizedEntryGetsOwnChunk(t *testing.T) {
	t.Parallel()
	huge := Item{Title: strings.Repeat("x", MaxMessageLength), Link: "https://e.x/huge"}
	chunks := Build([]Group{{
		FeedTitle: "F",
		Items:     []Item{{Title: "small", Link: "https://e.x/s"}, huge},
	}})

	// The oversized block is not sub-split; it goes out alone.
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if got := strings.Count(chunks[1].Text, "• *"); got != 1 {
		t.Fatalf("oversized entry must be alone in its chunk, found %d entries", got)
	}
}

func TestFormatItemDescription(t *testing.T) {
	t.Parallel()
	with := formatItem(Item{Title: "T", Link: "https://l", Description: "sanitized text"})
	if !strings.Contains(with, "  _sanitized text_\n") {
		t.Fatalf("missing italic description line: %q", with)
	}

	without := formatItem(Item{Title: "T", Link: "https://l"})
	if strings.Contains(without, "_") {
		t.Fatalf("no description set, but block contains italics: %q", without)
	}
	if !strings.Contains(without, "\n  https://l\n") {
		t.Fatalf("missing indented link line: %q", without)
	}
}
