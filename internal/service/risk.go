package service

import (
	"math"
	"sort"
	"time"

	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

const (
	recentWindowDays = 7
	monthWindowDays  = 30
)

type datedEvent struct {
	day   time.Time
	valid bool
	event model.AttendanceEvent
}

// ComputeAttendanceMetrics derives attendance percentages and the current
// absence streak from one member's events. Events whose date does not parse
// still count toward the streak, ordered after every dated event, but are
// left out of the percentage windows.
func ComputeAttendanceMetrics(events []model.AttendanceEvent, now time.Time) model.AttendanceMetrics {
	dated := make([]datedEvent, 0, len(events))
	for _, e := range events {
		day, err := time.Parse(model.AttendanceDateLayout, e.Date)
		dated = append(dated, datedEvent{day: day, valid: err == nil, event: e})
	}
	sort.SliceStable(dated, func(i, j int) bool {
		a, b := dated[i], dated[j]
		if a.valid != b.valid {
			return a.valid
		}
		if a.valid && !a.day.Equal(b.day) {
			return a.day.After(b.day)
		}
		return a.event.RecordedAt.After(b.event.RecordedAt)
	})

	var metrics model.AttendanceMetrics
	for _, d := range dated {
		if d.event.Present {
			break
		}
		metrics.ConsecutiveAbsences++
	}

	today := calendarDay(now)
	cutoff7 := today.AddDate(0, 0, -recentWindowDays)
	cutoff30 := today.AddDate(0, 0, -monthWindowDays)
	var total7, present7, total30, present30 int
	for _, d := range dated {
		if !d.valid {
			continue
		}
		if !d.day.Before(cutoff7) {
			total7++
			if d.event.Present {
				present7++
			}
		}
		if !d.day.Before(cutoff30) {
			total30++
			if d.event.Present {
				present30++
			}
		}
	}
	metrics.Last7 = percent(present7, total7)
	metrics.Last30 = percent(present30, total30)
	return metrics
}

func percent(part, total int) *int {
	if total == 0 {
		return nil
	}
	p := int(math.Round(float64(part) / float64(total) * 100))
	return &p
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsChronic reports sustained attendance decline. The critical flag uses the
// same predicate.
func IsChronic(m model.AttendanceMetrics) bool {
	return m.ConsecutiveAbsences >= 3 || (m.Last30 != nil && *m.Last30 < 60)
}

// ClassifyAttendance returns the alert flag for a member's metrics.
func ClassifyAttendance(m model.AttendanceMetrics) model.AttendanceFlag {
	if IsChronic(m) {
		return model.FlagCritical
	}
	if m.ConsecutiveAbsences == 2 ||
		(m.Last30 != nil && *m.Last30 < 75) ||
		(m.Last7 != nil && *m.Last7 < 60) {
		return model.FlagWarning
	}
	return model.FlagNone
}
