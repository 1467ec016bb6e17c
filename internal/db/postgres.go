package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mealdeck/basket-engine/pkg/models"
)

// schemaSQL is compiled into the binary at build time so schema init works
// inside runtime images that do not ship internal/db/schema.sql.
//
//go:embed schema.sql
var schemaSQL string

// Query lifecycle states as stored in basket_queries.status.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect initializes the connection pool to PostgreSQL using pgx.
func Connect(connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL for Basket Engine")
	return &PostgresStore{pool: pool}, nil
}

// Close gracefully closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema executes the embedded schema.sql DDL statements.
func (s *PostgresStore) InitSchema() error {
	_, err := s.pool.Exec(context.Background(), schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema migrations: %v", err)
	}

	log.Println("Basket Engine schema initialized")
	return nil
}

// SaveQueryResult upserts a solved query. Pending rows picked up by the
// worker flow through here once they carry a verdict.
func (s *PostgresStore) SaveQueryResult(ctx context.Context, rec models.QueryRecord) error {
	itemsJSON, err := json.Marshal(rec.Items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %v", err)
	}

	sql := `
		INSERT INTO basket_queries
			(id, items, num_items, target_price, target_calories, status,
			 feasible, decided_by, screen_flags, states_expanded, processing_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			feasible = EXCLUDED.feasible,
			decided_by = EXCLUDED.decided_by,
			screen_flags = EXCLUDED.screen_flags,
			states_expanded = EXCLUDED.states_expanded,
			processing_ms = EXCLUDED.processing_ms,
			updated_at = NOW();
	`
	_, err = s.pool.Exec(ctx, sql,
		rec.ID,
		itemsJSON,
		len(rec.Items),
		rec.TargetPrice,
		rec.TargetCalories,
		rec.Status,
		rec.Feasible,
		rec.DecidedBy,
		int64(rec.ScreenFlags),
		rec.StatesExpanded,
		rec.ProcessingTime,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert basket query: %v", err)
	}
	return nil
}

// GetQueryResult fetches one query row by id. Returns (nil, nil) when the
// id is unknown.
func (s *PostgresStore) GetQueryResult(ctx context.Context, id string) (*models.QueryRecord, error) {
	sql := `
		SELECT id, items, target_price, target_calories, status,
		       feasible, COALESCE(decided_by, ''), screen_flags,
		       states_expanded, processing_ms, COALESCE(error, '')
		FROM basket_queries
		WHERE id = $1;
	`
	var rec models.QueryRecord
	var itemsJSON []byte
	var screenFlags int64
	err := s.pool.QueryRow(ctx, sql, id).Scan(
		&rec.ID,
		&itemsJSON,
		&rec.TargetPrice,
		&rec.TargetCalories,
		&rec.Status,
		&rec.Feasible,
		&rec.DecidedBy,
		&screenFlags,
		&rec.StatesExpanded,
		&rec.ProcessingTime,
		&rec.Error,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &rec.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items for query %s: %v", id, err)
	}
	rec.ScreenFlags = uint64(screenFlags)
	return &rec, nil
}

// ListRecentQueries returns a page of query rows, newest first, plus the
// total row count for pagination.
func (s *PostgresStore) ListRecentQueries(ctx context.Context, page, limit int) ([]models.QueryRecord, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var totalCount int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM basket_queries`).Scan(&totalCount); err != nil {
		return nil, 0, err
	}

	sql := `
		SELECT id, items, target_price, target_calories, status,
		       feasible, COALESCE(decided_by, ''), screen_flags,
		       states_expanded, processing_ms, COALESCE(error, '')
		FROM basket_queries
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := s.pool.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := make([]models.QueryRecord, 0, limit)
	for rows.Next() {
		var rec models.QueryRecord
		var itemsJSON []byte
		var screenFlags int64
		if err := rows.Scan(
			&rec.ID,
			&itemsJSON,
			&rec.TargetPrice,
			&rec.TargetCalories,
			&rec.Status,
			&rec.Feasible,
			&rec.DecidedBy,
			&screenFlags,
			&rec.StatesExpanded,
			&rec.ProcessingTime,
			&rec.Error,
		); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(itemsJSON, &rec.Items); err != nil {
			return nil, 0, fmt.Errorf("failed to decode items for query %s: %v", rec.ID, err)
		}
		rec.ScreenFlags = uint64(screenFlags)
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return records, totalCount, nil
}

// EnqueueQuery inserts a pending row for the background worker.
func (s *PostgresStore) EnqueueQuery(ctx context.Context, rec models.QueryRecord) error {
	itemsJSON, err := json.Marshal(rec.Items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %v", err)
	}

	sql := `
		INSERT INTO basket_queries (id, items, num_items, target_price, target_calories, status)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err = s.pool.Exec(ctx, sql,
		rec.ID,
		itemsJSON,
		len(rec.Items),
		rec.TargetPrice,
		rec.TargetCalories,
		StatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue basket query: %v", err)
	}
	return nil
}

// DequeuePending atomically claims up to max pending rows for the worker
// by flipping them to running, oldest first.
func (s *PostgresStore) DequeuePending(ctx context.Context, max int) ([]models.QueryRecord, error) {
	if max <= 0 {
		max = 1
	}

	sql := `
		UPDATE basket_queries
		SET status = $1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM basket_queries
			WHERE status = $2
			ORDER BY created_at
			LIMIT $3
		)
		RETURNING id, items, target_price, target_calories;
	`
	rows, err := s.pool.Query(ctx, sql, StatusRunning, StatusPending, max)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.QueryRecord
	for rows.Next() {
		var rec models.QueryRecord
		var itemsJSON []byte
		if err := rows.Scan(&rec.ID, &itemsJSON, &rec.TargetPrice, &rec.TargetCalories); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(itemsJSON, &rec.Items); err != nil {
			return nil, fmt.Errorf("failed to decode items for query %s: %v", rec.ID, err)
		}
		rec.Status = StatusRunning
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// MarkQueryFailed records a permanent failure for a claimed row.
func (s *PostgresStore) MarkQueryFailed(ctx context.Context, id, reason string) error {
	sql := `
		UPDATE basket_queries
		SET status = $1, error = $2, updated_at = NOW()
		WHERE id = $3;
	`
	_, err := s.pool.Exec(ctx, sql, StatusFailed, reason, id)
	return err
}

// SaveSweepCell upserts one feasible target pair found by a sweep.
func (s *PostgresStore) SaveSweepCell(ctx context.Context, cell models.SweepCell) error {
	sql := `
		INSERT INTO sweep_cells (sweep_id, target_price, target_calories, states_expanded)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sweep_id, target_price, target_calories) DO UPDATE
		SET states_expanded = EXCLUDED.states_expanded;
	`
	_, err := s.pool.Exec(ctx, sql, cell.SweepID, cell.TargetPrice, cell.TargetCalories, cell.StatesExpanded)
	return err
}

// GetSweepCells returns the feasible cells recorded for one sweep, in
// lattice order.
func (s *PostgresStore) GetSweepCells(ctx context.Context, sweepID string, limit int) ([]models.SweepCell, error) {
	if limit <= 0 || limit > 10000 {
		limit = 1000
	}

	sql := `
		SELECT sweep_id, target_price, target_calories, states_expanded
		FROM sweep_cells
		WHERE sweep_id = $1
		ORDER BY target_price, target_calories
		LIMIT $2;
	`
	rows, err := s.pool.Query(ctx, sql, sweepID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cells := make([]models.SweepCell, 0, limit)
	for rows.Next() {
		var cell models.SweepCell
		if err := rows.Scan(&cell.SweepID, &cell.TargetPrice, &cell.TargetCalories, &cell.StatesExpanded); err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return cells, nil
}
