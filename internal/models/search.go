package models

import "time"

// SearchStatus is the display state of the search orchestrator.
type SearchStatus string

const (
	SearchIdle    SearchStatus = "idle"
	SearchLoading SearchStatus = "loading"
	SearchResults SearchStatus = "results"
	SearchFailed  SearchStatus = "error"
)

// NotificationKind distinguishes success and failure toasts.
type NotificationKind string

const (
	NotificationSuccess     NotificationKind = "success"
	NotificationDestructive NotificationKind = "destructive"
)

// Notification is a user-facing toast emitted by the orchestrator.
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
}

// SearchState is a point-in-time copy of a session's search state.
type SearchState struct {
	Status       SearchStatus   `json:"status"`
	Loading      bool           `json:"loading"`
	Searched     bool           `json:"searched"`
	Sequence     uint64         `json:"sequence"`
	Snapshot     FilterSnapshot `json:"filtros"`
	Questions    []Question     `json:"questoes"`
	Notification *Notification  `json:"notification,omitempty"`
}

// SearchEventType names a search lifecycle transition pushed to clients.
type SearchEventType string

const (
	EventSearchStarted   SearchEventType = "search.started"
	EventSearchCompleted SearchEventType = "search.completed"
	EventSearchFailed    SearchEventType = "search.failed"
)

// SearchEvent is pushed to open notification connections of a session.
type SearchEvent struct {
	Type         SearchEventType `json:"type"`
	Sequence     uint64          `json:"sequence"`
	Count        int             `json:"count"`
	Notification *Notification   `json:"notification,omitempty"`
}
