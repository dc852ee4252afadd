// Package history records estimation runs in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/piwi3910/LaserNest/internal/export"
	"github.com/piwi3910/LaserNest/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned by Get when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

// Run is one recorded estimation.
type Run struct {
	ID            string
	CreatedAt     time.Time
	Sources       []string
	MaterialID    string
	MaterialName  string
	Thickness     float64
	Quantity      int
	Parts         int
	Sheets        int
	Utilization   float64
	CuttingLength float64 // mm
	CuttingTime   float64 // minutes
	Currency      string
	TotalCost     decimal.Decimal
	PricePerPiece decimal.Decimal
}

// NewRun captures a quote and its nesting result as a history entry.
func NewRun(q export.Quote, nr model.NestingResult, sources []string) Run {
	return Run{
		CreatedAt:     time.Now().UTC(),
		Sources:       sources,
		MaterialID:    q.Estimation.MaterialID,
		MaterialName:  q.MaterialName,
		Thickness:     q.Thickness,
		Quantity:      q.Quantity,
		Parts:         nr.TotalParts,
		Sheets:        nr.TotalSheets,
		Utilization:   nr.GlobalUtilization,
		CuttingLength: q.Estimation.TotalCuttingLength,
		CuttingTime:   q.Estimation.CuttingTime,
		Currency:      q.Currency,
		TotalCost:     q.Total,
		PricePerPiece: q.PricePerPiece,
	}
}

// timeLayout is fixed-width so timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			sources TEXT NOT NULL,
			material_id TEXT NOT NULL,
			material_name TEXT NOT NULL,
			thickness REAL NOT NULL,
			quantity INTEGER NOT NULL,
			parts INTEGER NOT NULL,
			sheets INTEGER NOT NULL,
			utilization REAL NOT NULL,
			cutting_length REAL NOT NULL,
			cutting_time REAL NOT NULL,
			currency TEXT NOT NULL,
			total_cost TEXT NOT NULL,
			price_per_piece TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record stores a run and returns its ID. A run without an ID gets a new UUID.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, sources, material_id, material_name, thickness, quantity, parts, sheets,
			utilization, cutting_length, cutting_time, currency, total_cost, price_per_piece)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.UTC().Format(timeLayout),
		strings.Join(run.Sources, "\n"),
		run.MaterialID,
		run.MaterialName,
		run.Thickness,
		run.Quantity,
		run.Parts,
		run.Sheets,
		run.Utilization,
		run.CuttingLength,
		run.CuttingTime,
		run.Currency,
		run.TotalCost.String(),
		run.PricePerPiece.String(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return run.ID, nil
}

const selectRuns = `SELECT id, created_at, sources, material_id, material_name, thickness, quantity, parts, sheets,
	utilization, cutting_length, cutting_time, currency, total_cost, price_per_piece FROM runs`

// List returns the most recent runs, newest first. A limit <= 0 returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := selectRuns + ` ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Get returns the run with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return run, err
}

// Clear deletes every recorded run and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run                   Run
		createdAt, sources    string
		totalCost, pricePiece string
	)
	if err := sc.Scan(&run.ID, &createdAt, &sources, &run.MaterialID, &run.MaterialName, &run.Thickness,
		&run.Quantity, &run.Parts, &run.Sheets, &run.Utilization, &run.CuttingLength, &run.CuttingTime,
		&run.Currency, &totalCost, &pricePiece); err != nil {
		return Run{}, err
	}

	var err error
	if run.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return Run{}, fmt.Errorf("run %s: bad timestamp: %w", run.ID, err)
	}
	if sources != "" {
		run.Sources = strings.Split(sources, "\n")
	}
	if run.TotalCost, err = decimal.NewFromString(totalCost); err != nil {
		return Run{}, fmt.Errorf("run %s: bad total cost: %w", run.ID, err)
	}
	if run.PricePerPiece, err = decimal.NewFromString(pricePiece); err != nil {
		return Run{}, fmt.Errorf("run %s: bad price per piece: %w", run.ID, err)
	}
	return run, nil
}
