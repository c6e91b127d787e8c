package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/unclebandit/dojo-retention-backend/internal/config"
	"github.com/unclebandit/dojo-retention-backend/internal/db"
	"github.com/unclebandit/dojo-retention-backend/internal/logger"
	"github.com/unclebandit/dojo-retention-backend/internal/model"
	"github.com/unclebandit/dojo-retention-backend/internal/repository"
	"github.com/unclebandit/dojo-retention-backend/internal/service"
)

var defaultTemplates = []struct {
	name        string
	segment     model.Segment
	instruction string
}{
	{"Reactivación", model.SegmentHighRisk, "Invita a una clase de regreso sin costo esta semana."},
	{"Bienvenida", model.SegmentNewMembers, "Recuerda el horario de clases para principiantes."},
}

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

	if err := run(context.Background(), cfg, log); err != nil {
		log.Fatal("seeding failed", "error", err)
	}
	log.Info("seeding completed")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	store, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	repos := repository.New(store, log)

	file := filepath.Join(cfg.SeedDir, "members.json")
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	var members []model.Member
	if err := json.Unmarshal(content, &members); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	if err := repos.Members.ReplaceAll(ctx, members); err != nil {
		return err
	}
	log.Info("seeded members", "file", file, "count", len(members))

	existing, err := repos.Templates.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("templates already present, skipping", "count", len(existing))
		return nil
	}
	templates := &service.TemplateService{Repos: repos, Members: repos.Members, Log: log}
	for _, t := range defaultTemplates {
		if _, err := templates.Create(ctx, t.name, t.segment, t.instruction); err != nil {
			return fmt.Errorf("seed template %s: %w", t.name, err)
		}
	}
	log.Info("seeded templates", "count", len(defaultTemplates))
	return nil
}
