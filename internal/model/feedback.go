package model

import "time"

type FeedbackRecord struct {
	ID          string    `json:"id"`
	MemberID    string    `json:"member_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	ClassName   string    `json:"class_name,omitempty"`
	Instructor  string    `json:"instructor,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type FeedbackStats struct {
	Average     float64 `json:"average"`
	Count       int     `json:"count"`
	LastComment string  `json:"last_comment,omitempty"`
}
