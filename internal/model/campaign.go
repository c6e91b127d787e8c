package model

import "time"

type Segment string

const (
	SegmentAll             Segment = "Todos"
	SegmentHighRisk        Segment = "Riesgo Alto"
	SegmentPendingPayments Segment = "Pagos Pendientes"
	SegmentNewMembers      Segment = "Nuevos Ingresos"
	SegmentAdvanced        Segment = "Avanzados"
)

// Segments lists every known segment in display order.
var Segments = []Segment{SegmentAll, SegmentHighRisk, SegmentPendingPayments, SegmentNewMembers, SegmentAdvanced}

func (s Segment) Valid() bool {
	for _, known := range Segments {
		if s == known {
			return true
		}
	}
	return false
}

type CampaignTemplate struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Segment     Segment    `json:"segment"`
	Instruction string     `json:"instruction"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

type CampaignSchedule struct {
	ID         string     `json:"id"`
	TemplateID string     `json:"template_id"`
	Segment    Segment    `json:"segment"`
	Frequency  Frequency  `json:"frequency"`
	CreatedAt  time.Time  `json:"created_at"`
	NextRunAt  time.Time  `json:"next_run_at"`
	LastRunAt  *time.Time `json:"last_run_at,omitempty"`
	IsActive   bool       `json:"is_active"`
	Notes      string     `json:"notes,omitempty"`
}

// IsOverdue reports whether an active schedule's next run is not in the future.
func (s CampaignSchedule) IsOverdue(now time.Time) bool {
	return s.IsActive && !s.NextRunAt.After(now)
}

type CampaignRun struct {
	ID         string    `json:"id"`
	TemplateID string    `json:"template_id"`
	Segment    Segment   `json:"segment"`
	ExecutedAt time.Time `json:"executed_at"`
	MemberIDs  []string  `json:"member_ids"`
}

// MessageLogEntry records a drafted message attributed to a member.
type MessageLogEntry struct {
	ID          string    `json:"id"`
	MemberID    string    `json:"member_id"`
	TemplateID  string    `json:"template_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Message     string    `json:"message"`
}
