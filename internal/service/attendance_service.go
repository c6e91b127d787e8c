package service

import (
	"context"
	"strings"
	"time"

	appErrors "github.com/unclebandit/dojo-retention-backend/internal/errors"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/repository"
)

const (
	FocusAll     = ""
	FocusFlagged = "flagged"
	FocusChronic = "chronic"
)

type AttendanceService struct {
	Repos   *repository.Repositories
	Members repository.MemberRepositoryInterface
	Log     *logger.Logger
	Now     Clock
}

// MemberStatus is a member with attendance derived for display.
type MemberStatus struct {
	model.Member
	Metrics model.AttendanceMetrics `json:"metrics"`
	Flag    model.AttendanceFlag    `json:"flag,omitempty"`
	Chronic bool                    `json:"chronic"`
}

// Record marks memberID present or absent on date (YYYY-MM-DD, today in UTC
// when empty). A second mark for the same day replaces the first; an
// identical mark changes nothing.
func (s *AttendanceService) Record(ctx context.Context, memberID, date string, present bool) (*model.AttendanceEvent, error) {
	now := s.Now.now()
	date = strings.TrimSpace(date)
	if date == "" {
		date = now.UTC().Format(model.AttendanceDateLayout)
	}
	if _, err := time.Parse(model.AttendanceDateLayout, date); err != nil {
		return nil, appErrors.NewValidation("date", "date must use the YYYY-MM-DD format")
	}
	member, err := s.Members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, appErrors.NewMemberNotFound(memberID)
	}

	uow := s.Repos.Begin(ctx)
	defer uow.Discard()
	all, err := uow.Attendance()
	if err != nil {
		return nil, err
	}
	events := all[memberID]
	for i := range events {
		if events[i].Date != date {
			continue
		}
		if events[i].Present == present {
			existing := events[i]
			return &existing, nil
		}
		events[i].Present = present
		events[i].RecordedAt = now
		updated := events[i]
		all[memberID] = events
		uow.PutAttendance(all)
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		return &updated, nil
	}

	event := model.AttendanceEvent{MemberID: memberID, Date: date, Present: present, RecordedAt: now}
	all[memberID] = append(events, event)
	uow.PutAttendance(all)
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *AttendanceService) Metrics(ctx context.Context, memberID string) (model.AttendanceMetrics, error) {
	events, err := s.Repos.Attendance.ListByMember(ctx, memberID)
	if err != nil {
		return model.AttendanceMetrics{}, err
	}
	return ComputeAttendanceMetrics(events, s.Now.now()), nil
}

// MemberStatuses lists the directory with metrics. focus narrows the list to
// flagged (warning or critical) or chronic members.
func (s *AttendanceService) MemberStatuses(ctx context.Context, focus string) ([]MemberStatus, error) {
	switch focus {
	case FocusAll, FocusFlagged, FocusChronic:
	default:
		return nil, appErrors.NewValidation("focus", "unknown focus "+focus)
	}
	members, err := s.Members.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.Repos.Attendance.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Now.now()

	out := make([]MemberStatus, 0, len(members))
	for _, m := range members {
		metrics := ComputeAttendanceMetrics(events[m.ID], now)
		status := MemberStatus{
			Member:  m,
			Metrics: metrics,
			Flag:    ClassifyAttendance(metrics),
			Chronic: IsChronic(metrics),
		}
		if focus == FocusFlagged && status.Flag == model.FlagNone {
			continue
		}
		if focus == FocusChronic && !status.Chronic {
			continue
		}
		out = append(out, status)
	}
	return out, nil
}

// Export dumps every member's attendance records in directory order.
func (s *AttendanceService) Export(ctx context.Context) ([]model.AttendanceExport, error) {
	members, err := s.Members.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.Repos.Attendance.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.AttendanceExport, 0, len(members))
	for _, m := range members {
		records := events[m.ID]
		if records == nil {
			records = []model.AttendanceEvent{}
		}
		out = append(out, model.AttendanceExport{ID: m.ID, Name: m.Name, Records: records})
	}
	return out, nil
}

// Reset clears every attendance event.
func (s *AttendanceService) Reset(ctx context.Context) error {
	err := s.Repos.Do(ctx, func(uow *repository.UnitOfWork) error {
		uow.PutAttendance(map[string][]model.AttendanceEvent{})
		return nil
	})
	if err != nil {
		return err
	}
	s.Log.Info("attendance history cleared")
	return nil
}
