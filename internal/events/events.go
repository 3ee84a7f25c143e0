package events

import "context"

// Streams and event types
const (
	StreamClicks = "events:clicks"

	EventClickRecorded    = "click_recorded"
	EventPageViewRecorded = "page_view_recorded"
)

// Event is what the live dashboard feed carries over pub/sub.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
