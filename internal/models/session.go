package models

import "time"

// SessionState is the persisted per-browser filter state.
type SessionState struct {
	ID        string         `json:"id"`
	Filters   FilterSnapshot `json:"filters"`
	Reference *ReferenceData `json:"reference,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}
