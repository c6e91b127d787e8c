package model

import "time"

const (
	TopicCampaignExecuted = "campaign.executed"
	TopicScheduleDue      = "schedule.due"
)

type CampaignExecutedEvent struct {
	RunID        string    `json:"run_id"`
	TemplateID   string    `json:"template_id"`
	TemplateName string    `json:"template_name"`
	Segment      Segment   `json:"segment"`
	MemberCount  int       `json:"member_count"`
	ExecutedAt   time.Time `json:"executed_at"`
}

type ScheduleDueEvent struct {
	ScheduleID   string    `json:"schedule_id"`
	TemplateID   string    `json:"template_id"`
	TemplateName string    `json:"template_name"`
	Frequency    Frequency `json:"frequency"`
	NextRunAt    time.Time `json:"next_run_at"`
}
