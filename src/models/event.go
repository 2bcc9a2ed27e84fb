package models

// Event types pushed to dashboard clients.
const (
	EventIndicatorAdded   = "indicator_added"
	EventIndicatorRemoved = "indicator_removed"
	EventCacheInvalidated = "cache_invalidated"
	EventCacheRefreshed   = "cache_refreshed"
)

// MEvent is a state change notification for WebSocket clients.
type MEvent struct {
	Type      string `json:"type"`
	SeriesID  string `json:"series_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// MClientCommand is a message sent by a WebSocket client.
type MClientCommand struct {
	Command    string   `json:"command"`
	Indicators []string `json:"indicators"`
}

// Session messages sent to a single client.
const (
	EventConnected  = "connected"
	EventSubscribed = "subscribed"
	EventPong       = "pong"
)
