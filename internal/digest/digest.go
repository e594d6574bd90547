// Package digest groups new entries by feed and packs them into outbound
// message chunks that respect the transport's length limit.
package digest

import (
	"fmt"
	"unicode/utf8"
)

// MaxMessageLength is the Telegram per-message character limit.
const MaxMessageLength = 4096

// Item is one pending entry, already sanitized. Description is empty when
// description inclusion is disabled.
type Item struct {
	Title       string
	Link        string
	Description string
}

// Group is the ordered list of pending items for one feed within a cycle.
type Group struct {
	FeedTitle string
	Items     []Item
}

// Chunk is one outbound message. FeedTitle lets the sender pace deliveries
// on feed boundaries.
type Chunk struct {
	FeedTitle string
	Text      string
}

// Build packs groups into chunks. Entries from different feeds never share
// a chunk; every chunk starts with the feed header; item order is preserved.
// A new chunk starts when the header plus accumulated items plus the next
// item's block would exceed MaxMessageLength. An item whose block alone
// breaks the budget is still emitted as its own chunk; items are never
// sub-split. Groups with no items produce nothing.
func Build(groups []Group) []Chunk {
	var chunks []Chunk
	for _, g := range groups {
		if len(g.Items) == 0 {
			continue
		}
		header := fmt.Sprintf("📢 *New content from %s*\n\n", g.FeedTitle)
		headerLen := utf8.RuneCountInString(header)

		var acc string
		var accLen int
		for _, it := range g.Items {
			block := formatItem(it)
			blockLen := utf8.RuneCountInString(block)
			if acc != "" && headerLen+accLen+blockLen > MaxMessageLength {
				chunks = append(chunks, Chunk{FeedTitle: g.FeedTitle, Text: header + acc})
				acc, accLen = block, blockLen
				continue
			}
			acc += block
			accLen += blockLen
		}
		if acc != "" {
			chunks = append(chunks, Chunk{FeedTitle: g.FeedTitle, Text: header + acc})
		}
	}
	return chunks
}

// formatItem renders one entry block: bullet title line, optional italic
// description line, blank line, indented link line, blank line.
func formatItem(it Item) string {
	block := fmt.Sprintf("• *%s*\n", it.Title)
	if it.Description != "" {
		block += fmt.Sprintf("  _%s_\n", it.Description)
	}
	block += fmt.Sprintf("\n  %s\n\n", it.Link)
	return block
}
