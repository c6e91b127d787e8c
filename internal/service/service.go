package service

import (
	"time"

	"github.com/google/uuid"
)

// Clock returns the current instant. Services default to time.Now when unset.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

// IDGenerator returns a new unique id. Services default to random UUIDs.
type IDGenerator func() string

func (g IDGenerator) next() string {
	if g == nil {
		return uuid.NewString()
	}
	return g()
}
