package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"watego/internal/api"
	"watego/pkg/config"
	"watego/pkg/core"
	"watego/pkg/db"
	"watego/pkg/journey"
	"watego/pkg/logging"
	"watego/pkg/probe"
	"watego/pkg/sequence"
	"watego/pkg/store"
	"watego/pkg/terrain"
	"watego/pkg/version"
)

var initConfig = flag.Bool("init-config", false, "Generate default config file and exit")

func main() {
	flag.Parse()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault("configs/watego.yaml"); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated: configs/watego.yaml")
		return
	}

	if err := run(context.Background(), "configs/watego.yaml"); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Optional .env for local overrides; absence is fine.
	_ = godotenv.Load()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("WateGo Started", "version", version.Version)

	dbConn, st, err := initDB(appCfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Coastlines do not move; the cache prune just bounds table growth.
	if err := dbConn.PruneTerrainCells(90 * 24 * time.Hour); err != nil {
		slog.Warn("Terrain cache prune failed", "error", err)
	}

	terrainSvc, err := terrain.New(&appCfg.Terrain, st)
	if err != nil {
		return fmt.Errorf("failed to initialize terrain service: %w", err)
	}

	probes := []probe.Probe{
		{
			Name: "Land dataset",
			Check: func(c context.Context) error {
				// Forces the dataset load; equator at Greenwich is ocean.
				_, err := terrainSvc.IsOnLand(c, 0, 0)
				return err
			},
			Critical: true,
			Timeout:  30 * time.Second,
		},
		{
			Name:     "Database",
			Check:    func(c context.Context) error { return dbConn.PingContext(c) },
			Critical: true,
		},
	}
	if err := probe.Run(ctx, probes); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	// Journey and sequences, restored from the previous run if a record
	// exists.
	j := journey.New(&appCfg.Journey)
	seqMgr := sequence.NewManager(&appCfg.Sequences, j)
	if info := core.RestoreJourney(ctx, st, j, seqMgr); info != nil {
		slog.Info("Welcome back", "away", info.TimeAway, "travelled_km", info.DistanceTraveledKm)
	}

	// Waypoints load in the background; lookups return nothing until the
	// table is ready.
	generateWaypoints := func() {
		go func() {
			if err := j.GenerateWaypoints(ctx, terrainSvc); err != nil {
				slog.Error("Waypoint generation failed", "error", err)
			}
		}()
	}
	generateWaypoints()

	// Stream sink, scheduler and persistence.
	streamH := api.NewStreamHandler()
	defer streamH.Close()

	sched := core.NewScheduler(appCfg, j, seqMgr, streamH)
	go sched.Start(ctx)

	persistJob := core.NewJourneyPersistenceJob(&appCfg.Persistence, st, j, seqMgr)
	persistJob.Start(ctx)

	err = runServer(ctx, appCfg, j, seqMgr, persistJob, streamH, generateWaypoints)

	// Final save so a clean shutdown never loses progress.
	saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer saveCancel()
	if saveErr := persistJob.SaveNow(saveCtx); saveErr != nil {
		slog.Error("Final save failed", "error", saveErr)
	}
	return err
}

func initDB(appCfg *config.Config) (*db.DB, store.Store, error) {
	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return dbConn, store.NewSQLiteStore(dbConn), nil
}

func runServer(ctx context.Context, cfg *config.Config, j *journey.Journey, seqMgr *sequence.Manager, persistJob *core.JourneyPersistenceJob, streamH *api.StreamHandler, regenerate func()) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address,
		api.NewJourneyHandler(j, seqMgr, persistJob, regenerate),
		api.NewSolarHandler(j),
		api.NewSequenceHandler(seqMgr),
		streamH,
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
