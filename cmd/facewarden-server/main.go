package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facewarden/server/internal/attend/service"
	"github.com/facewarden/server/internal/attend/store/sqlite"
	"github.com/facewarden/server/internal/config"
	"github.com/facewarden/server/internal/db"
	"github.com/facewarden/server/internal/httpapi"
	"github.com/facewarden/server/internal/recog/memindex"
	"github.com/facewarden/server/internal/vault"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "facewarden-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer conn.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn, db.SeedDevOptions{KnownKiosks: cfg.KnownKiosks}); err != nil {
			logger.Fatalf("seed dev data: %v", err)
		}
	}

	writer := db.NewWorker(conn)
	defer writer.Close()

	identityStore := sqlite.NewIdentityStore(conn, writer)
	ledgerStore := sqlite.NewLedgerStore(conn, writer)
	kioskStore := sqlite.NewKioskStore(conn, writer)
	heartbeatStore := sqlite.NewHeartbeatStore(conn, writer)

	// Crypto
	v, err := vault.New(cfg.Passphrase)
	if err != nil {
		logger.Fatalf("init vault: %v", err)
	}

	// Services
	index := memindex.New()
	gate := service.NewDebounceGate()
	resolver := service.NewIdentityResolver(index, v, identityStore, cfg.MatchThreshold, logger)

	recorder, err := service.NewAttendanceRecorder(resolver, gate, ledgerStore, v, service.RecorderConfig{
		Cooldown:   time.Duration(cfg.DebounceSecs) * time.Second,
		ShiftStart: cfg.ShiftStart,
	}, logger)
	if err != nil {
		logger.Fatalf("init recorder: %v", err)
	}

	registry := service.NewKioskRegistry(kioskStore)
	heartbeatSvc := service.NewHeartbeatService(heartbeatStore, registry)
	attendanceLog := service.NewAttendanceLog(ledgerStore, gate, v, logger)
	enrollment := service.NewEnrollment(index, resolver, logger)

	pruner := service.NewHeartbeatPruner(heartbeatStore, service.PrunerConfig{
		RetentionDays: cfg.HeartbeatRetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	var authz service.AuthzPolicy
	if cfg.AdminAPIKey != "" {
		authz = service.APIKeyPolicy{Key: cfg.AdminAPIKey}
	} else if cfg.Env == "dev" {
		logger.Printf("no admin API key configured, admin endpoints open (dev)")
		authz = service.AllowAllPolicy{}
	} else {
		logger.Printf("no admin API key configured, admin endpoints disabled")
		authz = service.APIKeyPolicy{} // denies everything
	}

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:           logger,
		Addr:             cfg.HTTPAddr,
		Recorder:         recorder,
		AttendanceLog:    attendanceLog,
		Enrollment:       enrollment,
		HeartbeatService: heartbeatSvc,
		KioskRegistry:    registry,
		Authz:            authz,
	})

	go func() {
		logger.Printf("listening on %s (env=%s)", cfg.HTTPAddr, cfg.Env)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
