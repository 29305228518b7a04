package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codergirlprerna/t20-predictor/backend/internal/api"
	"github.com/codergirlprerna/t20-predictor/backend/internal/api/handlers"
	"github.com/codergirlprerna/t20-predictor/backend/internal/predictor"
	"github.com/codergirlprerna/t20-predictor/backend/internal/realtime"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API, the websocket hub and the background scheduler.

Endpoints:
  GET  /health                      - Health check
  GET  /api/standings               - Points table and qualification chances
  GET  /api/groups/{group}/chances  - One group's chances
  GET  /api/predict                 - What-if impact (team1Id, team2Id, winnerId)
  POST /api/refresh                 - Pull the feed now
  GET  /ws                          - Live standings

Example:
  go run ./cmd/predictor api
  go run ./cmd/predictor api --port 9090`,
	RunE: runAPIServer,
}

var (
	apiPort        string
	apiNoScheduler bool
	apiDisabled    []string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
	apiCmd.Flags().BoolVar(&apiNoScheduler, "no-scheduler", false, "do not run background jobs")
	apiCmd.Flags().StringSliceVar(&apiDisabled, "disable", nil, "background jobs to leave out (comma separated)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== T20 Predictor API Server ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Wire dependencies
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, log := a.cfg, a.log
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 2. Websocket hub; new clients get the current standings
	hub := realtime.NewHub(cfg.API.CORSOrigin, log).WithGreeter(func(ctx context.Context) (realtime.Event, error) {
		view, err := a.service.Standings(ctx)
		if err != nil {
			return realtime.Event{}, err
		}
		return realtime.Event{Type: predictor.EventStandings, Payload: view}, nil
	})
	a.service.WithNotifier(hub)
	go hub.Run(ctx)

	// 3. Scheduler
	if !apiNoScheduler {
		sched, err := a.newScheduler(apiDisabled)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 4. Initial sync so the first request has data
	if a.source != nil {
		go func() {
			if _, err := a.service.Refresh(ctx); err != nil {
				log.WithError(err).Warn("Initial refresh failed")
			}
		}()
	}

	// 5. Handlers + router
	limiter := api.NewClientLimiter(cfg.API.RateLimit, cfg.API.RateBurst)
	go limiter.Run(ctx)

	var dbCheck handlers.DatabaseChecker
	if a.db != nil {
		dbCheck = a.db
	}

	router := api.NewRouter(api.Handlers{
		Standings:  handlers.NewStandingsHandler(a.service, log),
		Predict:    handlers.NewPredictHandler(a.service, log),
		Health:     handlers.NewHealthHandler(dbCheck, hub),
		Events:     hub,
		CORSOrigin: cfg.API.CORSOrigin,
		Limiter:    limiter,
	}, log)

	// 6. Serve until interrupted; the hub goes first so websocket
	// clients do not hold the drain open
	server := api.New(cfg, log, router)
	server.OnShutdown(hub.Close)
	if err := server.Listen(); err != nil {
		return err
	}

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("api server: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
