package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mealdeck/basket-engine/internal/sweep"
	"github.com/mealdeck/basket-engine/pkg/models"
)

// POST /api/v1/sweep
// Launches a background sweep over a rectangle of (price, calorie) targets
// for a fixed menu. Only one sweep runs at a time.
func (h *APIHandler) handleStartSweep(c *gin.Context) {
	if h.sweepRunner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Sweep runner not initialized"})
		return
	}

	var req struct {
		Items  []models.Item `json:"items" binding:"required"`
		Bounds sweep.Bounds  `json:"bounds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. Expected: {items, bounds}"})
		return
	}

	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one menu item is required"})
		return
	}

	// The sweep outlives this request; the request context is cancelled
	// the moment the handler returns and would kill the walk at its
	// first cell.
	ctx := context.Background()
	sweepID, err := h.sweepRunner.SweepRange(ctx, req.Items, req.Bounds)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "sweep_started",
		"sweepId": sweepID,
		"bounds":  req.Bounds,
	})
}

// GET /api/v1/sweep/progress
// Returns the current progress of the sweep runner.
func (h *APIHandler) handleSweepProgress(c *gin.Context) {
	if h.sweepRunner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Sweep runner not initialized"})
		return
	}
	c.JSON(http.StatusOK, h.sweepRunner.GetProgress())
}

// GET /api/v1/sweep/:id/cells?limit=1000
// Returns the feasible cells a sweep has recorded so far.
func (h *APIHandler) handleSweepCells(c *gin.Context) {
	if h.dbStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database not connected"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "1000"))
	cells, err := h.dbStore.GetSweepCells(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sweep cells", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sweepId": c.Param("id"),
		"count":   len(cells),
		"cells":   cells,
	})
}
