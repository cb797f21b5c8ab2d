// Package ratelimit implements a durable per-identity sliding-window
// rate limiter backed by a single SQLite database.
package ratelimit

import (
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/zeebo/xxh3"
	_ "modernc.org/sqlite"
)

// window is the trailing duration events are counted over.
const window = time.Hour

// createDDL defines the rate-limit schema. One row per client identity;
// timestamps is a newline-joined list of UNIX seconds inside the window.
const createDDL = `
CREATE TABLE IF NOT EXISTS rate_windows (
	identity_hash TEXT PRIMARY KEY,
	timestamps    TEXT NOT NULL
);
`

// Store persists request windows across restarts. Losing the database only
// resets the windows; it never causes incorrect denial of legitimate traffic.
type Store struct {
	db *sql.DB

	// locks serializes read-modify-write per identity so concurrent
	// requests from the same client never lose or double-count updates.
	locks *xsync.Map[string, *sync.Mutex]

	now func() time.Time
}

// Open opens (or creates) the rate-limit database at path with WAL mode
// and a busy timeout, and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ratelimit open %s: %w", path, err)
	}

	// Single-writer: only one connection needed.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q on %s: %w", p, path, err)
		}
	}

	if _, err := db.Exec(createDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("ratelimit schema %s: %w", path, err)
	}

	return &Store{
		db:    db,
		locks: xsync.NewMap[string, *sync.Mutex](),
		now:   time.Now,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IdentityKey returns the stable storage key for a client identity:
// the lowercase hex of its xxh3-128 hash.
func IdentityKey(identity string) string {
	h := xxh3.Hash128([]byte(identity))
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], h.Lo)
	binary.LittleEndian.PutUint64(b[8:], h.Hi)
	return hex.EncodeToString(b[:])
}

// Allow checks and records one request from identity against the per-hour
// ceiling. Entries older than the window are pruned lazily on every check.
// A denied attempt is not recorded, so a hammering client does not extend
// its own lockout.
func (s *Store) Allow(identity string, limit int) (bool, error) {
	key := IdentityKey(identity)

	mu, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	mu.Lock()
	defer mu.Unlock()

	now := s.now().Unix()
	cutoff := now - int64(window/time.Second)

	var raw string
	err := s.db.QueryRow(`SELECT timestamps FROM rate_windows WHERE identity_hash = ?`, key).Scan(&raw)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("ratelimit read %s: %w", key, err)
	}

	kept := make([]string, 0, limit)
	for _, f := range strings.Fields(raw) {
		ts, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			continue
		}
		if ts > cutoff {
			kept = append(kept, f)
		}
	}

	if len(kept) >= limit {
		return false, nil
	}

	kept = append(kept, strconv.FormatInt(now, 10))
	_, err = s.db.Exec(
		`INSERT INTO rate_windows (identity_hash, timestamps) VALUES (?, ?)
		 ON CONFLICT(identity_hash) DO UPDATE SET timestamps = excluded.timestamps`,
		key, strings.Join(kept, "\n"))
	if err != nil {
		return false, fmt.Errorf("ratelimit write %s: %w", key, err)
	}

	return true, nil
}
