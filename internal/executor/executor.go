// Package executor runs raw SQL against a caller-chosen keyspace on the
// configured MySQL server.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	sqlmysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"remotedb/internal/config"
)

var (
	// ErrConnect means the keyspace connection could not be established.
	ErrConnect = errors.New("database connection failed")

	// ErrQuery means the statement itself failed during execution.
	ErrQuery = errors.New("query execution failed")
)

const (
	connectTimeout = 5 * time.Second
	executeTimeout = 30 * time.Second
)

// Result is the normalized outcome of one statement: row mappings for read
// statements, an affected-row count for everything else.
type Result struct {
	Rows         []map[string]any
	RowsAffected int64
	Read         bool
}

// Payload returns the JSON-serializable response body for this result.
func (r Result) Payload() any {
	if r.Read {
		if r.Rows == nil {
			return []map[string]any{}
		}
		return r.Rows
	}
	return r.RowsAffected
}

// readKeywords classify a statement as row-producing by its leading word.
var readKeywords = []string{"select", "show", "describe", "explain"}

// IsRead reports whether q begins with a read-statement keyword
// (case-insensitive).
func IsRead(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	for _, kw := range readKeywords {
		if strings.HasPrefix(q, kw) {
			return true
		}
	}
	return false
}

// MySQL opens one connection per request, scoped to the requested keyspace
// as the database name. There is deliberately no pooling across requests:
// the gateway targets low throughput and keeps zero cross-request state.
type MySQL struct {
	cfg *config.Config
}

func NewMySQL(cfg *config.Config) *MySQL {
	return &MySQL{cfg: cfg}
}

// DSN builds the driver DSN for the given keyspace with bounded dial and
// I/O timeouts so an unreachable or slow server cannot block forever.
func (m *MySQL) DSN(keyspace string) string {
	dc := sqlmysql.NewConfig()
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(m.cfg.DBHost, m.cfg.DBPort)
	dc.User = m.cfg.DBUser
	dc.Passwd = m.cfg.DBPassword
	dc.DBName = keyspace
	dc.Timeout = connectTimeout
	dc.ReadTimeout = executeTimeout
	dc.WriteTimeout = executeTimeout
	dc.ParseTime = true
	return dc.FormatDSN()
}

// Execute connects to keyspace, runs query and normalizes the outcome.
// Connection failures wrap ErrConnect, statement failures wrap ErrQuery;
// the raw driver text stays server-side — callers must only surface the
// sentinel to clients and send the wrapped detail to the log.
func (m *MySQL) Execute(ctx context.Context, keyspace, query string) (Result, error) {
	db, err := gorm.Open(mysql.Open(m.DSN(keyspace)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: open keyspace %q: %v", ErrConnect, keyspace, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(ctx, executeTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return Result{}, fmt.Errorf("%w: ping keyspace %q: %v", ErrConnect, keyspace, err)
	}

	if IsRead(query) {
		rows, err := db.WithContext(ctx).Raw(query).Rows()
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrQuery, err)
		}
		defer rows.Close()

		collected, err := scanRows(rows)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrQuery, err)
		}
		return Result{Rows: collected, Read: true}, nil
	}

	res := db.WithContext(ctx).Exec(query)
	if res.Error != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrQuery, res.Error)
	}
	return Result{RowsAffected: res.RowsAffected}, nil
}

// scanRows collects every row into ordered column-name-to-value mappings.
// []byte column values become strings so they serialize as JSON text
// rather than base64.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(map[string]any, len(cols))
		for i, c := range cols {
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			rec[c] = v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
