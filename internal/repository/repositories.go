package repository

import (
	"context"
	"sync"

	"github.com/unclebandit/dojo-retention-backend/internal/db"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

// Repositories groups every collection stored in one db.Store.
type Repositories struct {
	Store        db.Store
	Members      *MemberRepository
	Templates    *TemplateRepository
	Schedules    *ScheduleRepository
	Runs         *RunRepository
	MessageLogs  *MessageLogRepository
	Tasks        *TaskRepository
	Interactions *InteractionRepository
	Attendance   *AttendanceRepository
	Feedback     *FeedbackRepository

	// writeMu serializes units of work: each one reads whole collections
	// and writes them back.
	writeMu sync.Mutex
}

func New(store db.Store, log *logger.Logger) *Repositories {
	log = log.With("service", "Repositories")
	return &Repositories{
		Store:        store,
		Members:      &MemberRepository{c: newCollection(store, log, KeyMembers, 1, emptySlice[model.Member])},
		Templates:    &TemplateRepository{c: newCollection(store, log, KeyTemplates, 1, emptySlice[model.CampaignTemplate])},
		Schedules:    &ScheduleRepository{c: newCollection(store, log, KeySchedules, 1, emptySlice[model.CampaignSchedule])},
		Runs:         &RunRepository{c: newCollection(store, log, KeyRuns, 1, emptySlice[model.CampaignRun])},
		MessageLogs:  &MessageLogRepository{c: newCollection(store, log, KeyMessageLogs, 1, emptyMap[model.MessageLogEntry])},
		Tasks:        &TaskRepository{c: newCollection(store, log, KeyTasks, 1, emptyMap[model.FollowUpTask])},
		Interactions: &InteractionRepository{c: newCollection(store, log, KeyInteractions, 1, emptyMap[model.InteractionLogEntry])},
		Attendance:   &AttendanceRepository{c: newCollection(store, log, KeyAttendance, 1, emptyMap[model.AttendanceEvent])},
		Feedback:     &FeedbackRepository{c: newCollection(store, log, KeyFeedback, 1, emptyMap[model.FeedbackRecord])},
	}
}

// Begin starts a unit of work bound to ctx. It blocks until no other unit
// of work on r is open; the caller must end it with Commit or Discard.
func (r *Repositories) Begin(ctx context.Context) *UnitOfWork {
	r.writeMu.Lock()
	return newUnitOfWork(ctx, r)
}

// Do runs fn inside a unit of work and commits it when fn succeeds.
func (r *Repositories) Do(ctx context.Context, fn func(*UnitOfWork) error) error {
	uow := r.Begin(ctx)
	defer uow.Discard()
	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}

func emptySlice[T any]() []T { return []T{} }

func emptyMap[T any]() map[string][]T { return map[string][]T{} }
