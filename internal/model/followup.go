package model

import "time"

type FollowUpTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type InteractionType string

const (
	InteractionContact      InteractionType = "contact"
	InteractionTaskAdd      InteractionType = "task:add"
	InteractionTaskComplete InteractionType = "task:complete"
	InteractionTaskSnooze   InteractionType = "task:snooze"
)

type InteractionLogEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	Type      InteractionType `json:"type"`
	Note      string          `json:"note,omitempty"`
}
