package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/unclebandit/dojo-retention-backend/internal/db"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

var ErrCommitted = errors.New("unit of work already ended")

type stagedWriter interface {
	stagedEntry() (db.Entry, error)
}

type staged[T any] struct {
	c      collection[T]
	value  T
	loaded bool
}

func (s *staged[T]) get(ctx context.Context) (T, error) {
	if !s.loaded {
		v, err := s.c.load(ctx)
		if err != nil {
			return v, err
		}
		s.value = v
		s.loaded = true
	}
	return s.value, nil
}

func (s *staged[T]) stagedEntry() (db.Entry, error) {
	return s.c.entry(s.value)
}

// UnitOfWork reads collections once, stages changes in memory and writes
// every changed collection in a single Store.SetMany call. Collections are
// written in the order they were first changed. Units of work on the same
// Repositories run one at a time.
type UnitOfWork struct {
	ctx     context.Context
	store   db.Store
	order   []stagedWriter
	dirty   map[stagedWriter]bool
	done    bool
	release func()
	once    sync.Once

	templates    staged[[]model.CampaignTemplate]
	schedules    staged[[]model.CampaignSchedule]
	runs         staged[[]model.CampaignRun]
	messageLogs  staged[map[string][]model.MessageLogEntry]
	tasks        staged[map[string][]model.FollowUpTask]
	interactions staged[map[string][]model.InteractionLogEntry]
	attendance   staged[map[string][]model.AttendanceEvent]
	feedback     staged[map[string][]model.FeedbackRecord]
}

func newUnitOfWork(ctx context.Context, r *Repositories) *UnitOfWork {
	return &UnitOfWork{
		ctx:          ctx,
		store:        r.Store,
		release:      r.writeMu.Unlock,
		dirty:        make(map[stagedWriter]bool),
		templates:    staged[[]model.CampaignTemplate]{c: r.Templates.c},
		schedules:    staged[[]model.CampaignSchedule]{c: r.Schedules.c},
		runs:         staged[[]model.CampaignRun]{c: r.Runs.c},
		messageLogs:  staged[map[string][]model.MessageLogEntry]{c: r.MessageLogs.c},
		tasks:        staged[map[string][]model.FollowUpTask]{c: r.Tasks.c},
		interactions: staged[map[string][]model.InteractionLogEntry]{c: r.Interactions.c},
		attendance:   staged[map[string][]model.AttendanceEvent]{c: r.Attendance.c},
		feedback:     staged[map[string][]model.FeedbackRecord]{c: r.Feedback.c},
	}
}

func (u *UnitOfWork) markDirty(w stagedWriter) {
	if !u.dirty[w] {
		u.dirty[w] = true
		u.order = append(u.order, w)
	}
}

// DirtyKeys lists the collections that Commit would write, in write order.
func (u *UnitOfWork) DirtyKeys() []string {
	keys := make([]string, 0, len(u.order))
	for _, w := range u.order {
		e, err := w.stagedEntry()
		if err != nil {
			continue
		}
		keys = append(keys, e.Key)
	}
	return keys
}

// Discard ends the unit of work without writing. It is a no-op after Commit
// and safe to defer.
func (u *UnitOfWork) Discard() {
	u.done = true
	u.once.Do(u.release)
}

// Commit writes all staged collections atomically and ends the unit of
// work, whatever the outcome. Nothing is written if encoding any of them
// fails.
func (u *UnitOfWork) Commit() error {
	if u.done {
		return ErrCommitted
	}
	defer u.Discard()
	if len(u.order) == 0 {
		return nil
	}
	entries := make([]db.Entry, 0, len(u.order))
	for _, w := range u.order {
		e, err := w.stagedEntry()
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	return u.store.SetMany(u.ctx, entries)
}

func (u *UnitOfWork) Templates() ([]model.CampaignTemplate, error) {
	return u.templates.get(u.ctx)
}

func (u *UnitOfWork) PutTemplates(v []model.CampaignTemplate) {
	u.templates.value, u.templates.loaded = v, true
	u.markDirty(&u.templates)
}

func (u *UnitOfWork) Schedules() ([]model.CampaignSchedule, error) {
	return u.schedules.get(u.ctx)
}

func (u *UnitOfWork) PutSchedules(v []model.CampaignSchedule) {
	u.schedules.value, u.schedules.loaded = v, true
	u.markDirty(&u.schedules)
}

func (u *UnitOfWork) Runs() ([]model.CampaignRun, error) {
	return u.runs.get(u.ctx)
}

func (u *UnitOfWork) PutRuns(v []model.CampaignRun) {
	u.runs.value, u.runs.loaded = v, true
	u.markDirty(&u.runs)
}

func (u *UnitOfWork) MessageLogs() (map[string][]model.MessageLogEntry, error) {
	return u.messageLogs.get(u.ctx)
}

func (u *UnitOfWork) PutMessageLogs(v map[string][]model.MessageLogEntry) {
	u.messageLogs.value, u.messageLogs.loaded = v, true
	u.markDirty(&u.messageLogs)
}

func (u *UnitOfWork) Tasks() (map[string][]model.FollowUpTask, error) {
	return u.tasks.get(u.ctx)
}

func (u *UnitOfWork) PutTasks(v map[string][]model.FollowUpTask) {
	u.tasks.value, u.tasks.loaded = v, true
	u.markDirty(&u.tasks)
}

func (u *UnitOfWork) Interactions() (map[string][]model.InteractionLogEntry, error) {
	return u.interactions.get(u.ctx)
}

func (u *UnitOfWork) PutInteractions(v map[string][]model.InteractionLogEntry) {
	u.interactions.value, u.interactions.loaded = v, true
	u.markDirty(&u.interactions)
}

func (u *UnitOfWork) Attendance() (map[string][]model.AttendanceEvent, error) {
	return u.attendance.get(u.ctx)
}

func (u *UnitOfWork) PutAttendance(v map[string][]model.AttendanceEvent) {
	u.attendance.value, u.attendance.loaded = v, true
	u.markDirty(&u.attendance)
}

func (u *UnitOfWork) Feedback() (map[string][]model.FeedbackRecord, error) {
	return u.feedback.get(u.ctx)
}

func (u *UnitOfWork) PutFeedback(v map[string][]model.FeedbackRecord) {
	u.feedback.value, u.feedback.loaded = v, true
	u.markDirty(&u.feedback)
}
