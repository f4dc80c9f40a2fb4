// Package store persists analysis results to a SQLite database so runs can
// be compared over time.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cwbudde/algo-msquant/pipeline"
)

// Store wraps the SQLite database holding run results.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		windows TEXT NOT NULL,
		species_a TEXT NOT NULL,
		species_b TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS groups (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		grp TEXT NOT NULL,
		mean_a REAL,
		mean_b REAL,
		solved INTEGER NOT NULL,
		failed INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS samples (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		grp TEXT NOT NULL,
		file TEXT NOT NULL,
		frac_a REAL,
		frac_b REAL,
		solve_error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_samples_run ON samples(run_id, grp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveReport stores a full report as one run and returns the run id.
func (s *Store) SaveReport(startedAt time.Time, rep *pipeline.Report) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (started_at, windows, species_a, species_b) VALUES (?, ?, ?, ?)`,
		startedAt.UTC(), windowSpec(rep), rep.Labels[0], rep.Labels[1],
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, group := range rep.Groups {
		var meanA, meanB any
		if group.Mean != nil {
			meanA, meanB = group.Mean[0], group.Mean[1]
		}

		_, err = tx.Exec(
			`INSERT INTO groups (run_id, grp, mean_a, mean_b, solved, failed) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, group.Name, meanA, meanB, group.Solved, group.Failed,
		)
		if err != nil {
			return 0, fmt.Errorf("insert group %q: %w", group.Name, err)
		}

		for i, file := range group.Files {
			var fracA, fracB, solveErr any
			if group.Fractions[i] != nil {
				fracA, fracB = group.Fractions[i][0], group.Fractions[i][1]
			}

			if group.RowErrors[i] != nil {
				solveErr = group.RowErrors[i].Error()
			}

			_, err = tx.Exec(
				`INSERT INTO samples (run_id, grp, file, frac_a, frac_b, solve_error) VALUES (?, ?, ?, ?, ?, ?)`,
				runID, group.Name, file, fracA, fracB, solveErr,
			)
			if err != nil {
				return 0, fmt.Errorf("insert sample %q: %w", file, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return runID, nil
}

// GroupMean holds one stored group aggregate.
type GroupMean struct {
	Group  string
	MeanA  float64
	MeanB  float64
	Solved int
	Failed int
}

// GroupMeans returns the stored group aggregates of a run, skipping groups
// without a mean.
func (s *Store) GroupMeans(runID int64) ([]GroupMean, error) {
	rows, err := s.db.Query(
		`SELECT grp, mean_a, mean_b, solved, failed FROM groups WHERE run_id = ? AND mean_a IS NOT NULL ORDER BY grp`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var out []GroupMean

	for rows.Next() {
		var gm GroupMean
		if err := rows.Scan(&gm.Group, &gm.MeanA, &gm.MeanB, &gm.Solved, &gm.Failed); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}

		out = append(out, gm)
	}

	return out, rows.Err()
}

// windowSpec serializes the run's window set in the compact low:high form.
func windowSpec(rep *pipeline.Report) string {
	parts := make([]string, len(rep.Windows))
	for i, w := range rep.Windows {
		parts[i] = fmt.Sprintf("%g:%g", w.Low, w.High)
	}

	return strings.Join(parts, ",")
}
