package service

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	appErrors "github.com/unclebandit/dojo-retention-backend/internal/errors"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/repository"
)

// TaskOverdueAfter is how long an open task may wait before it shows as overdue.
const TaskOverdueAfter = 48 * time.Hour

const (
	FollowUpFilterAll      = "all"
	FollowUpFilterRisk     = "risk"
	FollowUpFilterCampaign = "campaign"
	FollowUpFilterOverdue  = "overdue"
)

var campaignTitlePattern = regexp.MustCompile(`(?i)camp(aña|ana|aign)`)

type FollowUpService struct {
	Repos   *repository.Repositories
	Members repository.MemberRepositoryInterface
	Log     *logger.Logger
	Now     Clock
	NewID   IDGenerator
}

// PendingFollowUp is one open task in the cross-member overview.
type PendingFollowUp struct {
	MemberID   string               `json:"member_id"`
	MemberName string               `json:"member_name"`
	Task       model.FollowUpTask   `json:"task"`
	Severity   model.AttendanceFlag `json:"severity,omitempty"`
	IsOverdue  bool                 `json:"is_overdue"`
	IsCampaign bool                 `json:"is_campaign"`
}

type FollowUpOverview struct {
	Items         []PendingFollowUp `json:"items"`
	CriticalCount int               `json:"critical_count"`
	CampaignCount int               `json:"campaign_count"`
	OverdueCount  int               `json:"overdue_count"`
	OldestOpenAt  *time.Time        `json:"oldest_open_at,omitempty"`
	NewestOpenAt  *time.Time        `json:"newest_open_at,omitempty"`
}

func (s *FollowUpService) Add(ctx context.Context, memberID, title string) (*model.FollowUpTask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, appErrors.NewValidation("title", "task title is required")
	}
	if err := s.requireMember(ctx, memberID); err != nil {
		return nil, err
	}

	now := s.Now.now()
	task := model.FollowUpTask{ID: s.NewID.next(), Title: title, CreatedAt: now}
	uow := s.Repos.Begin(ctx)
	defer uow.Discard()
	if err := appendTask(uow, memberID, task, now); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return &task, nil
}

// Complete closes a task. An unknown task id is a no-op and returns nil.
func (s *FollowUpService) Complete(ctx context.Context, memberID, taskID string) (*model.FollowUpTask, error) {
	now := s.Now.now()
	return s.mutate(ctx, memberID, taskID, model.InteractionTaskComplete, func(t *model.FollowUpTask) {
		completedAt := now
		t.Completed = true
		t.CompletedAt = &completedAt
	})
}

// Snooze re-queues a task as if created now, reopening it if it was done.
// An unknown task id is a no-op and returns nil.
func (s *FollowUpService) Snooze(ctx context.Context, memberID, taskID string) (*model.FollowUpTask, error) {
	now := s.Now.now()
	return s.mutate(ctx, memberID, taskID, model.InteractionTaskSnooze, func(t *model.FollowUpTask) {
		t.CreatedAt = now
		t.Completed = false
		t.CompletedAt = nil
	})
}

func (s *FollowUpService) mutate(ctx context.Context, memberID, taskID string, kind model.InteractionType, fn func(*model.FollowUpTask)) (*model.FollowUpTask, error) {
	uow := s.Repos.Begin(ctx)
	defer uow.Discard()
	all, err := uow.Tasks()
	if err != nil {
		return nil, err
	}
	tasks := all[memberID]
	for i := range tasks {
		if tasks[i].ID != taskID {
			continue
		}
		fn(&tasks[i])
		updated := tasks[i]
		all[memberID] = tasks
		uow.PutTasks(all)
		if err := appendInteraction(uow, memberID, model.InteractionLogEntry{
			Timestamp: s.Now.now(),
			Type:      kind,
			Note:      updated.Title,
		}); err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	s.Log.Debug("task mutation ignored, task not found", "member_id", memberID, "task_id", taskID, "type", kind)
	return nil, nil
}

func (s *FollowUpService) List(ctx context.Context, memberID string) ([]model.FollowUpTask, error) {
	return s.Repos.Tasks.ListByMember(ctx, memberID)
}

// LogContact appends a "contact" interaction for a member.
func (s *FollowUpService) LogContact(ctx context.Context, memberID, note string) (*model.InteractionLogEntry, error) {
	if err := s.requireMember(ctx, memberID); err != nil {
		return nil, err
	}
	entry := model.InteractionLogEntry{
		Timestamp: s.Now.now(),
		Type:      model.InteractionContact,
		Note:      strings.TrimSpace(note),
	}
	uow := s.Repos.Begin(ctx)
	defer uow.Discard()
	if err := appendInteraction(uow, memberID, entry); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *FollowUpService) Interactions(ctx context.Context, memberID string) ([]model.InteractionLogEntry, error) {
	return s.Repos.Interactions.ListByMember(ctx, memberID)
}

// PendingOverview lists open tasks across the directory, oldest first.
func (s *FollowUpService) PendingOverview(ctx context.Context, filter string) (*FollowUpOverview, error) {
	members, err := s.Members.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.Repos.Tasks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Now.now()

	overview := &FollowUpOverview{Items: []PendingFollowUp{}}
	for _, m := range members {
		severity := riskSeverity(m.RiskLevel)
		for _, t := range all[m.ID] {
			if t.Completed {
				continue
			}
			item := PendingFollowUp{
				MemberID:   m.ID,
				MemberName: m.Name,
				Task:       t,
				Severity:   severity,
				IsOverdue:  IsTaskOverdue(t, now),
				IsCampaign: campaignTitlePattern.MatchString(t.Title),
			}
			if severity == model.FlagCritical {
				overview.CriticalCount++
			}
			if item.IsCampaign {
				overview.CampaignCount++
			}
			if item.IsOverdue {
				overview.OverdueCount++
			}
			if !t.CreatedAt.IsZero() {
				created := t.CreatedAt
				if overview.OldestOpenAt == nil || created.Before(*overview.OldestOpenAt) {
					overview.OldestOpenAt = &created
				}
				if overview.NewestOpenAt == nil || created.After(*overview.NewestOpenAt) {
					overview.NewestOpenAt = &created
				}
			}
			if matchesFollowUpFilter(item, filter) {
				overview.Items = append(overview.Items, item)
			}
		}
	}
	sort.SliceStable(overview.Items, func(i, j int) bool {
		a, b := overview.Items[i].Task.CreatedAt, overview.Items[j].Task.CreatedAt
		if a.IsZero() != b.IsZero() {
			return b.IsZero()
		}
		return a.Before(b)
	})
	return overview, nil
}

// IsTaskOverdue reports whether an open task has waited longer than TaskOverdueAfter.
func IsTaskOverdue(t model.FollowUpTask, now time.Time) bool {
	return !t.Completed && !t.CreatedAt.IsZero() && now.Sub(t.CreatedAt) > TaskOverdueAfter
}

func matchesFollowUpFilter(item PendingFollowUp, filter string) bool {
	switch filter {
	case FollowUpFilterRisk:
		return item.Severity == model.FlagCritical
	case FollowUpFilterCampaign:
		return item.IsCampaign
	case FollowUpFilterOverdue:
		return item.IsOverdue
	default:
		return true
	}
}

func riskSeverity(level model.RiskLevel) model.AttendanceFlag {
	switch level {
	case model.RiskHigh:
		return model.FlagCritical
	case model.RiskMedium:
		return model.FlagWarning
	default:
		return model.FlagNone
	}
}

func (s *FollowUpService) requireMember(ctx context.Context, memberID string) error {
	member, err := s.Members.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return appErrors.NewMemberNotFound(memberID)
	}
	return nil
}

// appendTask stages a new task and its "task:add" interaction.
func appendTask(uow *repository.UnitOfWork, memberID string, task model.FollowUpTask, at time.Time) error {
	all, err := uow.Tasks()
	if err != nil {
		return err
	}
	all[memberID] = append(all[memberID], task)
	uow.PutTasks(all)
	return appendInteraction(uow, memberID, model.InteractionLogEntry{
		Timestamp: at,
		Type:      model.InteractionTaskAdd,
		Note:      task.Title,
	})
}

func appendInteraction(uow *repository.UnitOfWork, memberID string, entry model.InteractionLogEntry) error {
	all, err := uow.Interactions()
	if err != nil {
		return err
	}
	all[memberID] = append(all[memberID], entry)
	uow.PutInteractions(all)
	return nil
}
