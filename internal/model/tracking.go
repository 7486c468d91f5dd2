package model

import "time"

// RunRecord is the persisted history entry of a pipeline run
type RunRecord struct {
	ID             string     `json:"id"`
	State          RunState   `json:"state"`
	InMemorySum    *int64     `json:"in_memory_sum,omitempty"`
	InlineQuerySum *int64     `json:"inline_query_sum,omitempty"`
	ViewSum        *int64     `json:"view_sum,omitempty"`
	Error          string     `json:"error,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// SumsView is a read of the two store-side aggregates without a new fetch
type SumsView struct {
	InlineQuery int64 `json:"inline_query"`
	View        int64 `json:"view"`
	Consistent  bool  `json:"consistent"`
}
