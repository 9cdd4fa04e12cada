// Package store persists solver results in a sqlite database, so that long
// sweeps over chain lengths and couplings can be resumed and re-plotted
// without recomputing.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	tableRuns = "runs"
)

// A Result is the outcome of solving one point of a sweep: the ground state
// energy and half-chain entanglement entropy of a chain of length L at
// transverse field strength H.
type Result struct {
	L       int
	H       float64
	Energy  float64
	Entropy float64
}

// Store is a sqlite database of sweep results keyed by (L, H).
type Store struct {
	Path string

	db *sql.DB
}

// Open opens the database at dbPath, creating the runs table if needed.
// Existing results are kept.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}
	return &Store{Path: dbPath, db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put saves a result, replacing any previous one at the same (L, H).
func (s *Store) Put(r Result) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (l, h, energy, entropy) VALUES (?, ?, ?, ?)`, tableRuns)
	args := []any{r.L, r.H, r.Energy, r.Entropy}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, args))
	}
	return nil
}

// Get returns the result at (l, h), or ok equal to false if none is saved.
func (s *Store) Get(l int, h float64) (Result, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT energy, entropy FROM %s WHERE l=? AND h=?`, tableRuns)
	r := Result{L: l, H: h}
	err := s.db.QueryRowContext(ctx, sqlStr, l, h).Scan(&r.Energy, &r.Entropy)
	switch {
	case err == sql.ErrNoRows:
		return Result{}, false, nil
	case err != nil:
		return Result{}, false, errors.Wrap(err, "")
	default:
		return r, true, nil
	}
}

// Gather returns every saved result, ordered by (L, H).
func (s *Store) Gather() ([]Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT l, h, energy, entropy FROM %s ORDER BY l, h`, tableRuns)
	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	results := make([]Result, 0)
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.L, &r.H, &r.Energy, &r.Entropy); err != nil {
			return nil, errors.Wrap(err, "")
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return results, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (l INTEGER, h REAL, energy REAL, entropy REAL, PRIMARY KEY (l, h)) STRICT`, tableRuns)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
