package platforms

import (
	"context"
	"time"
)

type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Message is one notification. Messages sharing a non-empty Key are rendered
// as a single post that later messages edit in place.
type Message struct {
	Key         string
	Title       string
	Description string
	Color       int
	Fields      []Field
	SentAt      time.Time
}

type Target struct {
	Endpoint string
	Secret   string
}

type Adapter interface {
	Name() string
	Send(ctx context.Context, target Target, msg Message) error
	Forget(target Target, key string)
}
