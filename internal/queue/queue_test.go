package queue

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

func TestPublishWithoutSubscribersFails(t *testing.T) {
	q := NewInMemoryQueue(logger.NewNop())
	if err := q.Publish("nobody", 1); err == nil {
		t.Fatal("expected error without subscribers")
	}
}

func TestPublishRetriesUntilSuccess(t *testing.T) {
	q := NewInMemoryQueue(logger.NewNop())
	q.backoff = time.Millisecond

	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})
	_ = q.Subscribe("topic", func(payload any) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("try again")
		}
		close(done)
		return nil
	})

	if err := q.Publish("topic", "hello"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never succeeded")
	}
	mu.Lock()
	defer mu.Unlock()
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestDecodeAcceptsValuesAndBytes(t *testing.T) {
	want := model.ScheduleDueEvent{ScheduleID: "s1", TemplateName: "Reactivar"}

	var fromValue model.ScheduleDueEvent
	if err := Decode(want, &fromValue); err != nil || fromValue.ScheduleID != "s1" {
		t.Fatalf("decode value: %+v err=%v", fromValue, err)
	}

	var fromBytes model.ScheduleDueEvent
	if err := Decode([]byte(`{"schedule_id":"s2"}`), &fromBytes); err != nil || fromBytes.ScheduleID != "s2" {
		t.Fatalf("decode bytes: %+v err=%v", fromBytes, err)
	}
}

func TestStartReminderSubscriberRegistersBothTopics(t *testing.T) {
	q := NewInMemoryQueue(logger.NewNop())
	if err := StartReminderSubscriber(q, logger.NewNop()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := q.Publish(model.TopicScheduleDue, model.ScheduleDueEvent{ScheduleID: "s1"}); err != nil {
		t.Errorf("schedule.due: %v", err)
	}
	if err := q.Publish(model.TopicCampaignExecuted, model.CampaignExecutedEvent{RunID: "r1"}); err != nil {
		t.Errorf("campaign.executed: %v", err)
	}
}
