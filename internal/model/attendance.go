package model

import "time"

// AttendanceDateLayout is the calendar-day format of AttendanceEvent.Date.
const AttendanceDateLayout = "2006-01-02"

type AttendanceEvent struct {
	MemberID   string    `json:"member_id"`
	Date       string    `json:"date"`
	Present    bool      `json:"present"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AttendanceMetrics is derived from events and never stored. Nil percentages
// mean there were no events in the window, which is not the same as 0%.
type AttendanceMetrics struct {
	Last7               *int `json:"last7"`
	Last30              *int `json:"last30"`
	ConsecutiveAbsences int  `json:"consecutive_absences"`
}

type AttendanceFlag string

const (
	FlagNone     AttendanceFlag = ""
	FlagWarning  AttendanceFlag = "warning"
	FlagCritical AttendanceFlag = "critical"
)

// AttendanceExport is one member's entry in the attendance dump.
type AttendanceExport struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Records []AttendanceEvent `json:"records"`
}
