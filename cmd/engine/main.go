package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/mealdeck/basket-engine/internal/api"
	"github.com/mealdeck/basket-engine/internal/db"
	"github.com/mealdeck/basket-engine/internal/feasibility"
	"github.com/mealdeck/basket-engine/internal/queue"
	"github.com/mealdeck/basket-engine/internal/shadow"
	"github.com/mealdeck/basket-engine/internal/solver"
	"github.com/mealdeck/basket-engine/internal/sweep"
)

func main() {
	log.Println("Starting MealDeck Basket Feasibility Engine (Microservice: basket-engine)...")

	// ─── Required Environment Variables ─────────────────────────────────
	// All credentials MUST come from environment variables. No fallback
	// defaults for security-sensitive values. Use a .env file for local
	// development: cp .env.example .env && edit .env
	// ────────────────────────────────────────────────────────────────────

	dbUrl := requireEnv("DATABASE_URL")

	dbConn, err := db.Connect(dbUrl)
	if err != nil {
		log.Printf("Warning: Failed to connect to PostgreSQL, continuing without persisting verdicts. Error: %v", err)
		dbConn = nil
	} else {
		defer dbConn.Close()
		if err := dbConn.InitSchema(); err != nil {
			log.Printf("Warning: DB schema init failed: %v", err)
		}
	}

	engineCfg := solver.Config{
		Caps: solver.Capacities{
			MaxItems:      getEnvInt("SOLVER_MAX_ITEMS", 500),
			MaxPrice:      int64(getEnvInt("SOLVER_MAX_PRICE", 100000)),
			MaxCalories:   int64(getEnvInt("SOLVER_MAX_CALORIES", 100000)),
			MaxTableCells: int64(getEnvInt("SOLVER_MAX_TABLE_CELLS", 64<<20)),
		},
	}
	log.Printf("Solver capacities: %d items, %d cents, %d kcal, %d memo cells",
		engineCfg.Caps.MaxItems, engineCfg.Caps.MaxPrice,
		engineCfg.Caps.MaxCalories, engineCfg.Caps.MaxTableCells)

	// Shadow lane: replay every Nth search-decided query on the dense grid
	// and track lane agreement. SHADOW_SAMPLE_EVERY=0 disables it.
	var shadowEval *shadow.Evaluator
	if every := getEnvInt("SHADOW_SAMPLE_EVERY", 10); every > 0 {
		shadowEval = shadow.NewEvaluator(int64(every), engineCfg.Caps.MaxTableCells)
		log.Printf("Shadow grid lane enabled: sampling every %d queries", every)
	}

	// Setup WebSocket Hub
	wsHub := api.NewHub()
	go wsHub.Run()

	// Setup and start the pending-query worker. It owns a long-lived
	// analyzer; per-solve table resets keep its queries isolated.
	workerAnalyzer := feasibility.NewAnalyzer(solver.NewEngine(engineCfg), shadowEval)
	poller := queue.NewPoller(dbConn, wsHub, workerAnalyzer)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx)

	// Create the target-space sweep runner with real-time WebSocket alert
	// broadcasting.
	sweepRunner := sweep.NewRunner(dbConn, engineCfg, api.BroadcastFeasibleAlert(wsHub))

	// The HTTP handlers get their own analyzer, separate from the worker's;
	// the router serializes access to it internally.
	apiAnalyzer := feasibility.NewAnalyzer(solver.NewEngine(engineCfg), shadowEval)

	// Setup the Gin Router
	r := api.SetupRouter(dbConn, apiAnalyzer, wsHub, sweepRunner, shadowEval)

	port := getEnvOrDefault("PORT", "5361")

	// Start the server
	log.Printf("Engine running on :%s (API Node: basket-engine)\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// requireEnv reads a required environment variable and exits if it is not set.
// This prevents the binary from starting with missing critical configuration.
func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("FATAL: Required environment variable %s is not set. "+
			"Copy .env.example to .env and fill in your values: cp .env.example .env", key)
	}
	return val
}

// getEnvOrDefault returns the env var value or a safe default for non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt parses an integer env var, falling back on missing or
// malformed values rather than refusing to boot over a tuning knob.
func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("Warning: %s=%q is not an integer, using default %d", key, val, fallback)
		return fallback
	}
	return n
}
