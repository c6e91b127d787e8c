package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/unclebandit/dojo-retention-backend/internal/config"
	"github.com/unclebandit/dojo-retention-backend/internal/controller"
	"github.com/unclebandit/dojo-retention-backend/internal/db"
	"github.com/unclebandit/dojo-retention-backend/internal/drafting"
	"github.com/unclebandit/dojo-retention-backend/internal/handler"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/queue"
	"github.com/unclebandit/dojo-retention-backend/internal/repository"
	"github.com/unclebandit/dojo-retention-backend/internal/service"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, relying on OS environment variables")
	}
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

	if err := run(ctx, cfg, log); err != nil {
		// Fatal flushes the logger before exiting.
		log.Fatal("server stopped", "error", err)
	}
}

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
	// With the in-memory queue nothing else listens, so the server logs its
	// own events. With AMQP the worker does.
	if _, ok := q.(*queue.InMemoryQueue); ok {
		if err := queue.StartReminderSubscriber(q, log); err != nil {
			return err
		}
	}

	var drafter drafting.Drafter
	if cfg.GeminiAPIKey != "" {
		gemini, err := drafting.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.DraftTimeout, log)
		if err != nil {
			return err
		}
		drafter = gemini
	} else {
		log.Warn("GEMINI_API_KEY not set, drafting is disabled")
	}

	repos := repository.New(store, log)
	campaignService := &service.CampaignService{Repos: repos, Members: repos.Members, Queue: q, Log: log.With("service", "CampaignService")}
	draftService := &service.DraftService{Repos: repos, Members: repos.Members, Drafter: drafter, Timeout: cfg.DraftTimeout, Log: log.With("service", "DraftService")}
	templateService := &service.TemplateService{Repos: repos, Members: repos.Members, Log: log}
	scheduleService := &service.ScheduleService{Repos: repos, Log: log.With("service", "ScheduleService")}
	followUpService := &service.FollowUpService{Repos: repos, Members: repos.Members, Log: log.With("service", "FollowUpService")}
	attendanceService := &service.AttendanceService{Repos: repos, Members: repos.Members, Log: log.With("service", "AttendanceService")}
	feedbackService := &service.FeedbackService{Repos: repos, Members: repos.Members, Log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	controller.Mount(r, controller.Controllers{
		Campaigns: &controller.CampaignController{CampaignService: campaignService, DraftService: draftService, Log: log},
		Templates: &controller.TemplateController{TemplateService: templateService, Log: log},
		Schedules: &controller.ScheduleController{ScheduleService: scheduleService, Log: log},
		Members: &controller.MemberController{
			AttendanceService: attendanceService,
			CampaignService:   campaignService,
			DraftService:      draftService,
			FeedbackService:   feedbackService,
			Log:               log,
		},
		FollowUps: &controller.FollowUpController{FollowUpService: followUpService, Log: log},
	})

	dashboard := handler.NewDashboardHandler(followUpService, scheduleService, log)
	r.Get("/dashboard/follow-ups", dashboard.FollowUpsHandler)
	r.Get("/dashboard/campaigns", dashboard.CampaignsHandler)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server running", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "queue", cfg.QueueDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
