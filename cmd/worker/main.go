package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unclebandit/dojo-retention-backend/internal/config"
	"github.com/unclebandit/dojo-retention-backend/internal/db"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/queue"
	"github.com/unclebandit/dojo-retention-backend/internal/repository"
	"github.com/unclebandit/dojo-retention-backend/internal/service"
)

func main() {
	_ = config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		// Fatal flushes the logger before exiting.
		log.Fatal("worker stopped", "error", err)
	}
	log.Info("worker stopped")
}

// run scans for due schedules on every interval and logs the reminders the
// scan and the server publish.
func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	store, err := db.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	q, closeQueue, err := queue.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("open queue: %w", err)
	}
	defer closeQueue()
	if err := queue.StartReminderSubscriber(q, log); err != nil {
		return err
	}

	scanner := &service.DueScheduleScanner{
		Schedules: &service.ScheduleService{Repos: repository.New(store, log), Log: log.With("service", "ScheduleService")},
		Queue:     q,
		Log:       log.With("service", "DueScheduleScanner"),
	}
	ticker := time.NewTicker(cfg.ScheduleCheckInterval)
	defer ticker.Stop()
	worker := service.NewWorker(scanner, ticker.C, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("worker running", "interval", cfg.ScheduleCheckInterval.String(), "queue", cfg.QueueDriver)
		return worker.Start(gctx)
	})
	// Consumers die with the broker connection; stop scanning when it drops.
	if aq, ok := q.(*queue.AMQPQueue); ok {
		closed := aq.NotifyClose()
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			case amqpErr, ok := <-closed:
				if ok && amqpErr != nil {
					return fmt.Errorf("amqp connection closed: %w", amqpErr)
				}
				return nil
			}
		})
	}
	return g.Wait()
}
