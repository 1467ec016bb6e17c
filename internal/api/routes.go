package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mealdeck/basket-engine/internal/db"
	"github.com/mealdeck/basket-engine/internal/feasibility"
	"github.com/mealdeck/basket-engine/internal/shadow"
	"github.com/mealdeck/basket-engine/internal/solver"
	"github.com/mealdeck/basket-engine/internal/sweep"
	"github.com/mealdeck/basket-engine/pkg/models"
)

type APIHandler struct {
	dbStore     *db.PostgresStore
	analyzer    *feasibility.Analyzer
	solveMu     sync.Mutex // Gin serves concurrently; the analyzer does not
	wsHub       *Hub
	sweepRunner *sweep.Runner
	shadowEval  *shadow.Evaluator
}

func SetupRouter(dbStore *db.PostgresStore, analyzer *feasibility.Analyzer, wsHub *Hub, sweepRunner *sweep.Runner, shadowEval *shadow.Evaluator) *gin.Engine {
	r := gin.Default()

	// Enable CORS — configurable via ALLOWED_ORIGINS env var
	// Production: ALLOWED_ORIGINS=https://mealdeck.io,https://www.mealdeck.io
	// Development: ALLOWED_ORIGINS=http://localhost:3000 (or leave empty for *)
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			// Check if the request origin is in the allowed list
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{
		dbStore:     dbStore,
		analyzer:    analyzer,
		wsHub:       wsHub,
		sweepRunner: sweepRunner,
		shadowEval:  shadowEval,
	}

	api := r.Group("/api/v1")
	{
		api.GET("/health", handler.handleHealth)
		api.GET("/stream", wsHub.Subscribe)
		api.GET("/sweep/progress", handler.handleSweepProgress)

		// Solving costs real CPU, so everything that triggers or reads a
		// solve sits behind the bearer token and the per-IP limiter.
		protected := api.Group("")
		protected.Use(AuthMiddleware(), NewRateLimiter(60, 10).Middleware())
		{
			protected.POST("/solve", handler.handleSolve)
			protected.POST("/enqueue", handler.handleEnqueue)
			protected.GET("/queries/:id", handler.handleGetQuery)
			protected.GET("/queries", handler.handleListQueries)
			protected.GET("/shadow/report", handler.handleShadowReport)
			protected.POST("/sweep", handler.handleStartSweep)
			protected.GET("/sweep/:id/cells", handler.handleSweepCells)
		}
	}

	// Serve Static Dashboard
	r.Static("/dashboard", "./public")

	return r
}

// handleSolve runs one basket query synchronously and returns the full
// feasibility report.
// POST /api/v1/solve { "items": [{"price":500,"calories":500},...], "targetPrice": 1000, "targetCalories": 1000 }
func (h *APIHandler) handleSolve(c *gin.Context) {
	var q models.BasketQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. Expected: {items, targetPrice, targetCalories}"})
		return
	}

	h.solveMu.Lock()
	report, err := h.analyzer.AnalyzeQuery(q)
	h.solveMu.Unlock()
	if err != nil {
		// A rejected query is the caller's fault; a lane failure is ours.
		// Neither is ever reported as an infeasible basket.
		var verr *solver.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Solve failed", "details": err.Error()})
		return
	}

	// Persist to DB if connected
	if h.dbStore != nil {
		feasible := report.Feasible
		rec := models.QueryRecord{
			ID:             report.QueryID,
			Items:          q.Items,
			TargetPrice:    q.TargetPrice,
			TargetCalories: q.TargetCalories,
			Status:         db.StatusDone,
			Feasible:       &feasible,
			DecidedBy:      report.DecidedBy,
			ScreenFlags:    report.ScreenFlags,
			ProcessingTime: report.ProcessingTime,
		}
		if report.Stats != nil {
			rec.StatesExpanded = report.Stats.StatesExpanded
		}
		if err := h.dbStore.SaveQueryResult(c.Request.Context(), rec); err != nil {
			log.Printf("Failed to save query result to DB: %v", err)
		}
	}

	c.JSON(http.StatusOK, report)
}

// handleEnqueue accepts a basket query for the background worker and
// returns its id immediately. Validation still runs up front so the queue
// never holds a query the engine would reject.
// POST /api/v1/enqueue
func (h *APIHandler) handleEnqueue(c *gin.Context) {
	if h.dbStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not connected; async solving unavailable"})
		return
	}

	var q models.BasketQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. Expected: {items, targetPrice, targetCalories}"})
		return
	}

	if err := h.analyzer.Engine().ValidateQuery(q); err != nil {
		var verr *solver.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := models.QueryRecord{
		ID:             uuid.New().String(),
		Items:          q.Items,
		TargetPrice:    q.TargetPrice,
		TargetCalories: q.TargetCalories,
		Status:         db.StatusPending,
	}
	if err := h.dbStore.EnqueueQuery(c.Request.Context(), rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue query", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "enqueued",
		"queryId": rec.ID,
	})
}

// handleGetQuery returns one persisted query row, solved or pending.
// GET /api/v1/queries/:id
func (h *APIHandler) handleGetQuery(c *gin.Context) {
	if h.dbStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not connected"})
		return
	}

	rec, err := h.dbStore.GetQueryResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch query", "details": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Query not found"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// handleListQueries returns the solve history, newest first.
// GET /api/v1/queries?page=1&limit=50
func (h *APIHandler) handleListQueries(c *gin.Context) {
	if h.dbStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not connected"})
		return
	}

	// Parse pagination parameters
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, totalCount, err := h.dbStore.ListRecentQueries(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch query history", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       records,
		"totalCount": totalCount,
		"page":       page,
		"limit":      limit,
	})
}

// handleHealth returns engine status and capabilities for service discovery
func (h *APIHandler) handleHealth(c *gin.Context) {
	caps := h.analyzer.Engine().Caps()

	c.JSON(http.StatusOK, gin.H{
		"status": "operational",
		"engine": "MealDeck Basket Feasibility Engine v1.2",
		"capacities": gin.H{
			"maxItems":      caps.MaxItems,
			"maxPrice":      caps.MaxPrice,
			"maxCalories":   caps.MaxCalories,
			"maxTableCells": caps.MaxTableCells,
		},
		"capabilities": gin.H{
			"lattice_search":  true,
			"screen_layer":    true,
			"grid_shadow":     h.shadowEval != nil,
			"target_sweep":    h.sweepRunner != nil,
			"async_queue":     h.dbStore != nil,
			"agreement_kappa": true,
		},
		"dbConnected": h.dbStore != nil,
	})
}

// handleShadowReport returns the lane-agreement summary since boot.
// GET /api/v1/shadow/report
func (h *APIHandler) handleShadowReport(c *gin.Context) {
	if h.shadowEval == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Shadow lane not enabled"})
		return
	}
	c.JSON(http.StatusOK, h.shadowEval.GenerateReport())
}

// BroadcastFeasibleAlert sends a feasible-cell alert via the WebSocket hub.
// This is wired as the alertFunc callback for the sweep Runner.
func BroadcastFeasibleAlert(wsHub *Hub) func(sweep.FeasibleAlert) {
	return func(alert sweep.FeasibleAlert) {
		payload := gin.H{
			"type":  "feasible_cell",
			"alert": alert,
		}
		alertBytes, err := json.Marshal(payload)
		if err != nil {
			return
		}
		wsHub.Broadcast(alertBytes)
		log.Printf("[ALERT] Feasible basket target found: (%d cents, %d kcal) in sweep %s (%d expansions)",
			alert.TargetPrice, alert.TargetCalories, alert.SweepID, alert.StatesExpanded)
	}
}
