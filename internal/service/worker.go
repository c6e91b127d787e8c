package service

import (
	"context"
	"sync"
	"time"

	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/queue"
)

// Scanner defines what the worker runs on every tick
type Scanner interface {
	Scan(ctx context.Context) (int, error)
}

// DueScheduleScanner publishes schedule.due once for each overdue
// occurrence of an active schedule. Nothing is written to the store.
type DueScheduleScanner struct {
	Schedules *ScheduleService
	Queue     queue.Queue
	Log       *logger.Logger

	mu        sync.Mutex
	announced map[string]time.Time
}

// Scan returns how many events were published.
func (s *DueScheduleScanner) Scan(ctx context.Context) (int, error) {
	overdue, err := s.Schedules.Overdue(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.announced == nil {
		s.announced = make(map[string]time.Time)
	}

	published := 0
	for _, sc := range overdue {
		if last, ok := s.announced[sc.ID]; ok && last.Equal(sc.NextRunAt) {
			continue
		}
		ev := model.ScheduleDueEvent{
			ScheduleID:   sc.ID,
			TemplateID:   sc.TemplateID,
			TemplateName: sc.TemplateName,
			Frequency:    sc.Frequency,
			NextRunAt:    sc.NextRunAt,
		}
		if err := s.Queue.Publish(model.TopicScheduleDue, ev); err != nil {
			s.Log.Warn("failed to publish due schedule", "schedule_id", sc.ID, "error", err)
			continue
		}
		s.announced[sc.ID] = sc.NextRunAt
		published++
	}
	return published, nil
}

// Worker runs a Scanner on every tick until the context ends
type Worker struct {
	Scanner Scanner
	Ticks   <-chan time.Time
	Log     *logger.Logger
}

// Constructor
func NewWorker(scanner Scanner, ticks <-chan time.Time, log *logger.Logger) *Worker {
	return &Worker{
		Scanner: scanner,
		Ticks:   ticks,
		Log:     log.With("service", "Worker"),
	}
}

// Start scans once immediately, then on every tick. It returns when ctx is
// done or the tick channel closes.
func (w *Worker) Start(ctx context.Context) error {
	w.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-w.Ticks:
			if !ok {
				return nil
			}
			w.scan(ctx)
		}
	}
}

func (w *Worker) scan(ctx context.Context) {
	n, err := w.Scanner.Scan(ctx)
	if err != nil {
		w.Log.Error("schedule scan failed", "error", err)
		return
	}
	if n > 0 {
		w.Log.Info("due schedules announced", "count", n)
	}
}
