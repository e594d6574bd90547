package transport

import "context"

type ChatTarget struct {
	ChatID int64
}

type MessageRef struct {
	ChatID    int64
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool

	// Silent delivers the message without a client-side notification sound.
	Silent bool
}

// Sender delivers one formatted message to a chat destination.
// The caller guarantees text fits the destination's length limit.
type Sender interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}
