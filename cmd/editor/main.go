package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
	"github.com/gofiber/fiber/v3/middleware/recover"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"golang.org/x/sync/errgroup"

	"github.com/regalagram/sspe-sub013/internal/common/config"
	"github.com/regalagram/sspe-sub013/internal/common/middleware"
	"github.com/regalagram/sspe-sub013/internal/editor/handlers"
	"github.com/regalagram/sspe-sub013/internal/editor/session"
	"github.com/regalagram/sspe-sub013/internal/prefs/repository"
	"github.com/regalagram/sspe-sub013/internal/prefs/service"
)

const reapInterval = time.Minute

// ============================================================
// Editor Service
// ============================================================

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Environment != "production" {
		log.SetLevel(log.LevelDebug)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("editor service: %v", err)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if dir := filepath.Dir(cfg.PrefsDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir db dir: %w", err)
		}
	}
	db, err := repository.OpenSQLite(cfg.PrefsDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(ctx); err != nil {
		return fmt.Errorf("init db: %w", err)
	}

	prefs := service.New(repo)
	sessions := session.NewManager(*cfg, prefs)
	defer sessions.CloseAll()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "SVG Editor Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.CORSOrigins...))

	// ============================================================
	// Routes
	// ============================================================

	handlers.NewHealth(repo).Register(app)
	handlers.NewEditorHandler(sessions, prefs).Register(app.Group("/api/v1"))

	// ============================================================
	// Server Start
	// ============================================================

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Infof("Starting Editor Service on %s (env: %s)", addr, cfg.Environment)
		return app.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Infof("[EDITOR] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(reapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := sessions.Reap(); n > 0 {
					log.Infof("[EDITOR] reaped %d idle sessions", n)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
