package discovery

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store caches prior latency measurements on disk so repeated discovery
// runs don't have to re-measure every mirror from a cold start. Purely an
// optimization: the cache's Order Index and Provider Registry never read
// from it directly.
type Store struct {
	conn *sql.DB
}

// OpenStore creates or opens a SQLite database at path, enabling WAL mode
// and running migrations, the same sequence the teacher's daemon database
// layer follows.
func OpenStore(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("discovery: open store: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("discovery: enable WAL mode: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS mirror_measurements (
	url           TEXT PRIMARY KEY,
	latency_ns    INTEGER NOT NULL,
	measured_at   DATETIME NOT NULL
);
`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("discovery: migrate store: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Record upserts the latency measurement for url.
func (s *Store) Record(url string, latency time.Duration, measuredAt time.Time) error {
	_, err := s.conn.Exec(
		`INSERT INTO mirror_measurements (url, latency_ns, measured_at) VALUES (?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET latency_ns = excluded.latency_ns, measured_at = excluded.measured_at`,
		url, latency.Nanoseconds(), measuredAt,
	)
	if err != nil {
		return fmt.Errorf("discovery: record measurement for %s: %w", url, err)
	}
	return nil
}

// Lookup returns the most recent latency measurement for url, if younger
// than maxAge.
func (s *Store) Lookup(url string, maxAge time.Duration) (time.Duration, bool) {
	var latencyNs int64
	var measuredAt time.Time
	err := s.conn.QueryRow(
		`SELECT latency_ns, measured_at FROM mirror_measurements WHERE url = ?`, url,
	).Scan(&latencyNs, &measuredAt)
	if err != nil {
		return 0, false
	}
	if time.Since(measuredAt) > maxAge {
		return 0, false
	}
	return time.Duration(latencyNs), true
}

// Fill populates the Latency field of every descriptor in descs from the
// store, for entries measured within maxAge, leaving the rest untouched so
// the caller can decide whether to re-measure them.
func (s *Store) Fill(descs []MirrorDescriptor, maxAge time.Duration) {
	for i := range descs {
		if latency, ok := s.Lookup(descs[i].URL, maxAge); ok {
			descs[i].Latency = latency
		}
	}
}
