package queue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

// Queue carries domain events between the engine and its listeners.
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue delivers to in-process subscribers with retry.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
	log      *logger.Logger
	backoff  time.Duration
}

func NewInMemoryQueue(log *logger.Logger) *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
		log:      log.With("service", "InMemoryQueue"),
		backoff:  500 * time.Millisecond,
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		job := JobPayload{Payload: payload, MaxRetries: 3}
		go q.processJob(topic, handler, job)
	}
	return nil
}

func (q *InMemoryQueue) processJob(topic string, handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			return
		}

		job.RetryCount++
		q.log.Warn("job failed", "topic", topic, "attempt", job.RetryCount, "max_retries", job.MaxRetries, "error", err)
		if job.RetryCount > job.MaxRetries {
			q.log.Error("job permanently failed", "topic", topic, "attempts", job.RetryCount)
			return
		}
		time.Sleep(time.Duration(job.RetryCount) * q.backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Decode converts a payload into out. In-memory payloads arrive as Go
// values, AMQP payloads as JSON bytes.
func Decode(payload any, out any) error {
	var raw []byte
	switch p := payload.(type) {
	case []byte:
		raw = p
	case json.RawMessage:
		raw = p
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return err
		}
		raw = b
	}
	return json.Unmarshal(raw, out)
}

// StartReminderSubscriber logs due schedules and executed campaigns so the
// instructor sees them in the worker output. Sending stays a manual action.
func StartReminderSubscriber(q Queue, log *logger.Logger) error {
	log = log.With("service", "ReminderSubscriber")

	err := q.Subscribe(model.TopicScheduleDue, func(payload any) error {
		var ev model.ScheduleDueEvent
		if err := Decode(payload, &ev); err != nil {
			log.Warn("invalid schedule.due payload", "error", err)
			return nil
		}
		log.Info("campaign schedule is due",
			"schedule_id", ev.ScheduleID,
			"template", ev.TemplateName,
			"frequency", ev.Frequency,
			"next_run_at", ev.NextRunAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", model.TopicScheduleDue, err)
	}

	err = q.Subscribe(model.TopicCampaignExecuted, func(payload any) error {
		var ev model.CampaignExecutedEvent
		if err := Decode(payload, &ev); err != nil {
			log.Warn("invalid campaign.executed payload", "error", err)
			return nil
		}
		log.Info("campaign run recorded, send the message through your usual channels",
			"run_id", ev.RunID,
			"template", ev.TemplateName,
			"segment", ev.Segment,
			"members", ev.MemberCount)
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", model.TopicCampaignExecuted, err)
	}
	return nil
}
