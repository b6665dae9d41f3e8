package bench

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store records trial results in SQLite so analysis tooling can query
// them across invocations.
type Store struct {
	conn *sqlx.DB
}

// OpenStore opens or creates the result database at the given path.
func OpenStore(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	st := &Store{conn: conn}
	if err := st.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return st, nil
}

// Close closes the database connection.
func (st *Store) Close() error {
	return st.conn.Close()
}

func (st *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trials (
		run_id TEXT PRIMARY KEY,
		suite TEXT NOT NULL,
		scenario TEXT NOT NULL,
		trial INTEGER NOT NULL,
		engine TEXT NOT NULL,
		topology TEXT NOT NULL,
		agents INTEGER NOT NULL,
		ticks INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		chunk INTEGER NOT NULL,
		walltime_ms INTEGER NOT NULL,
		max_memory_kb INTEGER NOT NULL,
		max_heap_kb INTEGER NOT NULL,
		cpu_seconds REAL NOT NULL,
		total_votes INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trials_scenario ON trials(suite, scenario);
	`
	_, err := st.conn.Exec(schema)
	return err
}

// Insert writes one trial row.
func (st *Store) Insert(r Result) error {
	_, err := st.conn.NamedExec(`
		INSERT INTO trials (
			run_id, suite, scenario, trial, engine, topology,
			agents, ticks, seed, chunk,
			walltime_ms, max_memory_kb, max_heap_kb, cpu_seconds, total_votes
		) VALUES (
			:run_id, :suite, :scenario, :trial, :engine, :topology,
			:agents, :ticks, :seed, :chunk,
			:walltime_ms, :max_memory_kb, :max_heap_kb, :cpu_seconds, :total_votes
		)`, r)
	if err != nil {
		return fmt.Errorf("insert trial %s: %w", r.RunID, err)
	}
	return nil
}

// Count returns the number of stored trials for a suite.
func (st *Store) Count(suite string) (int, error) {
	var n int
	if err := st.conn.Get(&n, "SELECT COUNT(*) FROM trials WHERE suite = ?", suite); err != nil {
		return 0, fmt.Errorf("count trials: %w", err)
	}
	return n, nil
}
