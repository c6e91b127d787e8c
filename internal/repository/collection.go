package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/unclebandit/dojo-retention-backend/internal/db"
	appErrors "github.com/unclebandit/dojo-retention-backend/internal/errors"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
)

const (
	KeyMembers      = "members"
	KeyTemplates    = "campaign_templates"
	KeySchedules    = "campaign_schedules"
	KeyRuns         = "campaign_runs"
	KeyMessageLogs  = "message_logs"
	KeyTasks        = "followup_tasks"
	KeyInteractions = "interactions"
	KeyAttendance   = "attendance_events"
	KeyFeedback     = "feedback_records"
)

// envelope is the stored shape of every collection.
type envelope[T any] struct {
	Version int `json:"version"`
	Items   T   `json:"items"`
}

// collection is the parse-or-default boundary for one stored key.
type collection[T any] struct {
	key     string
	version int
	store   db.Store
	log     *logger.Logger
	empty   func() T
}

func newCollection[T any](store db.Store, log *logger.Logger, key string, version int, empty func() T) collection[T] {
	return collection[T]{key: key, version: version, store: store, log: log, empty: empty}
}

// load returns the stored collection. Storage failures are returned; a value
// that cannot be parsed yields the empty collection and a warning.
func (c collection[T]) load(ctx context.Context) (T, error) {
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return c.empty(), fmt.Errorf("read %s: %w", c.key, err)
	}
	if !ok || len(raw) == 0 {
		return c.empty(), nil
	}
	items, err := c.decode(raw)
	if err != nil {
		c.log.Warn("stored collection unreadable, using empty collection",
			"key", c.key, "error", &appErrors.PersistenceReadError{Key: c.key, Err: err})
		return c.empty(), nil
	}
	return items, nil
}

func (c collection[T]) decode(raw []byte) (T, error) {
	var env envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil {
		return c.empty(), err
	}
	if env.Version < 1 || env.Version > c.version {
		return c.empty(), fmt.Errorf("unsupported version %d", env.Version)
	}
	if len(env.Items) == 0 || string(env.Items) == "null" {
		return c.empty(), nil
	}
	items := c.empty()
	if err := json.Unmarshal(env.Items, &items); err != nil {
		return c.empty(), err
	}
	return items, nil
}

func (c collection[T]) entry(items T) (db.Entry, error) {
	raw, err := json.Marshal(envelope[T]{Version: c.version, Items: items})
	if err != nil {
		return db.Entry{}, fmt.Errorf("encode %s: %w", c.key, err)
	}
	return db.Entry{Key: c.key, Value: raw}, nil
}

func (c collection[T]) save(ctx context.Context, items T) error {
	e, err := c.entry(items)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, e.Key, e.Value)
}
