package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/mealdeck/basket-engine/internal/api"
	"github.com/mealdeck/basket-engine/internal/db"
	"github.com/mealdeck/basket-engine/internal/feasibility"
	"github.com/mealdeck/basket-engine/pkg/models"
)

// maxQueriesPerTick bounds how many pending queries one tick may claim,
// so a burst of enqueued work cannot starve the poll loop.
const maxQueriesPerTick = 5

// Poller drains pending basket queries from the database, solves them on
// a single long-lived analyzer, persists the verdicts and streams them to
// dashboard clients. The analyzer is deliberately shared across every
// query the worker ever solves; between-query isolation comes from the
// engine's per-solve table reset.
type Poller struct {
	store    *db.PostgresStore
	wsHub    *api.Hub
	analyzer *feasibility.Analyzer
}

// StreamPayload is the real-time frame pushed to dashboard clients when a
// queued query resolves.
type StreamPayload struct {
	QueryID        string  `json:"queryId"`
	Feasible       bool    `json:"feasible"`
	DecidedBy      string  `json:"decidedBy"`
	NumItems       int     `json:"numItems"`
	TargetPrice    int64   `json:"targetPrice"`
	TargetCalories int64   `json:"targetCalories"`
	ScreenFlags    uint64  `json:"screenFlags"`
	StatesExpanded int64   `json:"statesExpanded"`
	ProcessingTime float64 `json:"processingTimeMs"`
}

func NewPoller(store *db.PostgresStore, wsHub *api.Hub, analyzer *feasibility.Analyzer) *Poller {
	return &Poller{
		store:    store,
		wsHub:    wsHub,
		analyzer: analyzer,
	}
}

func (p *Poller) Run(ctx context.Context) {
	if p.store == nil {
		log.Println("[QueueWorker] No database configured, worker not starting")
		return
	}

	log.Println("Starting Pending Query Worker...")

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Stopping Pending Query Worker...")
			return
		case <-ticker.C:
			records, err := p.store.DequeuePending(ctx, maxQueriesPerTick)
			if err != nil {
				log.Printf("[QueueWorker] Error claiming pending queries: %v", err)
				continue
			}
			for _, rec := range records {
				p.process(ctx, rec)
			}
		}
	}
}

// process solves one claimed query and writes back its outcome.
func (p *Poller) process(ctx context.Context, rec models.QueryRecord) {
	q := models.BasketQuery{
		Items:          rec.Items,
		TargetPrice:    rec.TargetPrice,
		TargetCalories: rec.TargetCalories,
	}

	report, err := p.analyzer.AnalyzeQuery(q)
	if err != nil {
		log.Printf("[QueueWorker] Query %s failed: %v", rec.ID, err)
		if dbErr := p.store.MarkQueryFailed(ctx, rec.ID, err.Error()); dbErr != nil {
			log.Printf("[QueueWorker] Failed to record failure for %s: %v", rec.ID, dbErr)
		}
		return
	}

	feasible := report.Feasible
	rec.Feasible = &feasible
	rec.DecidedBy = report.DecidedBy
	rec.ScreenFlags = report.ScreenFlags
	rec.ProcessingTime = report.ProcessingTime
	rec.Status = db.StatusDone
	if report.Stats != nil {
		rec.StatesExpanded = report.Stats.StatesExpanded
	}

	if err := p.store.SaveQueryResult(ctx, rec); err != nil {
		log.Printf("[QueueWorker] Failed to persist verdict for %s: %v", rec.ID, err)
	}

	if p.wsHub != nil {
		payload := StreamPayload{
			QueryID:        rec.ID,
			Feasible:       report.Feasible,
			DecidedBy:      report.DecidedBy,
			NumItems:       len(rec.Items),
			TargetPrice:    rec.TargetPrice,
			TargetCalories: rec.TargetCalories,
			ScreenFlags:    report.ScreenFlags,
			StatesExpanded: rec.StatesExpanded,
			ProcessingTime: report.ProcessingTime,
		}
		payloadBytes, _ := json.Marshal(payload)
		p.wsHub.Broadcast(payloadBytes)
	}

	log.Printf("[QueueWorker] Query %s resolved: feasible=%v via %s (%.2fms)",
		rec.ID, report.Feasible, report.DecidedBy, report.ProcessingTime)
}
