// Copyright 2026 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package history persists a summary of every validation run in an SQLite
// database.
package history

import (
	"context"
	"time"

	"github.com/rpki-rp/validator/pkg/private/serrors"
	"github.com/rpki-rp/validator/private/runmetrics"
	"github.com/rpki-rp/validator/private/storage/db"
)

const (
	// SchemaVersion is the version of the SQLite schema understood by this
	// implementation.
	SchemaVersion = 1
	// Schema is the SQLite database layout.
	Schema = `CREATE TABLE runs(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		collected_at INTEGER NOT NULL,
		rsync_complete INTEGER NOT NULL,
		roas INTEGER NOT NULL,
		vrps INTEGER NOT NULL
	);
	CREATE TABLE run_tals(
		run_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		roas INTEGER NOT NULL,
		vrps INTEGER NOT NULL,
		PRIMARY KEY (run_id, position),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);`
)

// Run is the stored summary of one validation run.
type Run struct {
	ID            int64     `json:"id"`
	CollectedAt   time.Time `json:"collectedAt"`
	RsyncComplete bool      `json:"rsyncComplete"`
	ROAs          uint64    `json:"roas"`
	VRPs          uint64    `json:"vrps"`
	TALs          []TAL     `json:"tals"`
}

// TAL is the stored counts of one trust anchor of a run.
type TAL struct {
	Name string `json:"name"`
	ROAs uint32 `json:"roas"`
	VRPs uint32 `json:"vrps"`
}

// Store is the run history backend.
type Store struct {
	db *db.Sqlite
}

// Open opens the database at path, creating it if necessary. If inMemory is
// set, path names a private in-memory database.
func Open(path string, inMemory bool) (*Store, error) {
	d, err := db.NewSqlite(path, &db.SqliteConfig{InMemory: inMemory})
	if err != nil {
		return nil, err
	}
	if err := d.Setup(Schema, SchemaVersion); err != nil {
		d.Close()
		return nil, serrors.Wrap("setting up history database", err, "path", path)
	}
	return &Store{db: d}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores the summary of m and returns the ID of the new run.
func (s *Store) Insert(ctx context.Context, m *runmetrics.Metrics) (int64, error) {
	roas, vrps := m.Totals()
	tx, err := s.db.Full.BeginTx(ctx, nil)
	if err != nil {
		return 0, db.NewTxError("starting transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs(collected_at, rsync_complete, roas, vrps) VALUES (?, ?, ?, ?)`,
		m.Timestamp(), m.RsyncComplete(), roas, vrps,
	)
	if err != nil {
		return 0, db.NewWriteError("inserting run", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, db.NewWriteError("retrieving run id", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_tals(run_id, position, name, roas, vrps) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, db.NewWriteError("preparing statement", err)
	}
	defer stmt.Close()
	for i, t := range m.TALs() {
		if _, err := stmt.ExecContext(ctx, id, i, t.Name(), t.ROAs, t.VRPs); err != nil {
			return 0, db.NewWriteError("inserting TAL", err, "tal", t.Name())
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, db.NewTxError("committing", err)
	}
	return id, nil
}

// Recent returns up to n most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		return []Run{}, nil
	}
	rows, err := s.db.ReadOnly.QueryContext(ctx,
		`SELECT id, collected_at, rsync_complete, roas, vrps FROM runs
		ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, db.NewReadError("querying runs", err)
	}
	defer rows.Close()
	runs := []Run{}
	index := make(map[int64]int)
	for rows.Next() {
		var (
			r         Run
			collected int64
		)
		if err := rows.Scan(&r.ID, &collected, &r.RsyncComplete, &r.ROAs, &r.VRPs); err != nil {
			return nil, db.NewReadError("scanning run", err)
		}
		r.CollectedAt = time.Unix(collected, 0).UTC()
		r.TALs = []TAL{}
		index[r.ID] = len(runs)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, db.NewReadError("iterating runs", err)
	}
	if len(runs) == 0 {
		return runs, nil
	}
	if err := s.loadTALs(ctx, runs, index); err != nil {
		return nil, err
	}
	return runs, nil
}

func (s *Store) loadTALs(ctx context.Context, runs []Run, index map[int64]int) error {
	// Runs are ordered by descending ID, so the oldest requested run is last.
	rows, err := s.db.ReadOnly.QueryContext(ctx,
		`SELECT run_id, name, roas, vrps FROM run_tals
		WHERE run_id >= ? ORDER BY run_id, position`, runs[len(runs)-1].ID)
	if err != nil {
		return db.NewReadError("querying TALs", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			runID int64
			t     TAL
		)
		if err := rows.Scan(&runID, &t.Name, &t.ROAs, &t.VRPs); err != nil {
			return db.NewReadError("scanning TAL", err)
		}
		if i, ok := index[runID]; ok {
			runs[i].TALs = append(runs[i].TALs, t)
		}
	}
	if err := rows.Err(); err != nil {
		return db.NewReadError("iterating TALs", err)
	}
	return nil
}

// Prune deletes all but the keep most recent runs and returns the number of
// deleted runs.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, db.NewInputDataError("negative number of runs to keep", nil, "keep", keep)
	}
	res, err := s.db.Full.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`,
		keep)
	if err != nil {
		return 0, db.NewWriteError("pruning runs", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, db.NewWriteError("counting pruned runs", err)
	}
	return int(n), nil
}
