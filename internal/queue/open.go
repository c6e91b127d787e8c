package queue

import (
	"fmt"
	"strings"

	"github.com/unclebandit/dojo-retention-backend/internal/config"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
)

// Open returns the Queue selected by cfg.QueueDriver and a function that
// releases it.
func Open(cfg *config.Config, log *logger.Logger) (Queue, func() error, error) {
	switch strings.ToLower(cfg.QueueDriver) {
	case config.QueueMemory:
		return NewInMemoryQueue(log), func() error { return nil }, nil
	case config.QueueAMQP:
		q, err := NewAMQPQueue(cfg.AMQPURL, log)
		if err != nil {
			return nil, nil, err
		}
		return q, q.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown queue driver %q", cfg.QueueDriver)
	}
}
