package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/service"
)

// MockScanner counts scans and signals each one
type MockScanner struct {
	mu    sync.Mutex
	scans int
	wg    *sync.WaitGroup
}

func (m *MockScanner) Scan(ctx context.Context) (int, error) {
	m.mu.Lock()
	m.scans++
	m.mu.Unlock()
	m.wg.Done()
	return 1, nil
}

func TestWorker(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(3) // initial scan plus two ticks

	scanner := &MockScanner{wg: &wg}
	ticks := make(chan time.Time, 2)
	ticks <- time.Now()
	ticks <- time.Now()

	worker := service.NewWorker(scanner, ticks, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Start(ctx) }()

	wg.Wait()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	scanner.mu.Lock()
	defer scanner.mu.Unlock()
	if scanner.scans != 3 {
		t.Errorf("expected 3 scans, got %d", scanner.scans)
	}
}

func TestWorkerStopsWhenTicksClose(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	ticks := make(chan time.Time)
	close(ticks)

	worker := service.NewWorker(&MockScanner{wg: &wg}, ticks, logger.NewNop())
	if err := worker.Start(context.Background()); err != nil {
		t.Errorf("expected nil on closed ticks, got %v", err)
	}
}
