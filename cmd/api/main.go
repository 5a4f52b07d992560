package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SV-Eichenlaub/club-roster-api/internal/adapters/httpapi"
	memaddressrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/addressrepo"
	memattendancerepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/attendancerepo"
	memdepartmentrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/departmentrepo"
	memmemberrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/memberrepo"
	postgres "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/postgres"
	pgaddressrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/postgres/addressrepo"
	pgattendancerepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/postgres/attendancerepo"
	pgdepartmentrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/postgres/departmentrepo"
	pgmemberrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/postgres/memberrepo"
	"github.com/SV-Eichenlaub/club-roster-api/internal/app/members"
	"github.com/SV-Eichenlaub/club-roster-api/internal/app/roster"
	"github.com/SV-Eichenlaub/club-roster-api/internal/app/rules"
	platformclock "github.com/SV-Eichenlaub/club-roster-api/internal/platform/clock"
	"github.com/SV-Eichenlaub/club-roster-api/internal/platform/config"
	addressrepoport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/addressrepo"
	attendancerepoport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/attendancerepo"
	departmentrepoport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/departmentrepo"
	memberrepoport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/memberrepo"
)

func main() {
	// A .env file is a local-dev convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	clk := platformclock.NewSystemClock()

	var (
		memberRepo     memberrepoport.Repository
		addressRepo    addressrepoport.Repository
		departmentRepo departmentrepoport.Repository
		attendanceRepo attendancerepoport.Repository
		cleanup        func()
	)

	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		cleanup = pool.Close

		memberRepo = pgmemberrepo.NewRepo(pool)
		addressRepo = pgaddressrepo.NewRepo(pool)
		departmentRepo = pgdepartmentrepo.NewRepo(pool)
		attendanceRepo = pgattendancerepo.NewRepo(pool)
	default:
		memberRepo = memmemberrepo.NewRepo()
		addressRepo = memaddressrepo.NewRepo()
		departmentRepo = memdepartmentrepo.NewRepo()
		attendanceRepo = memattendancerepo.NewRepo()
	}

	if cleanup != nil {
		defer cleanup()
	}

	memberSvc := members.NewService(memberRepo, clk, log)
	rosterSvc := roster.NewService(memberRepo, addressRepo, departmentRepo, attendanceRepo, log)
	rulesSvc := rules.NewService(memberRepo, departmentRepo, attendanceRepo, clk, log)

	api := httpapi.NewServer(memberSvc, rosterSvc, rulesSvc, log)
	handler := httpapi.NewRouter(api, httpapi.NewMetrics(), log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("api listening", "port", cfg.Port, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
