package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/godror/godror"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/logger"
	"scaffoldgen/pkg/config"
)

// ErrDialectNotRegistered is returned by Connect for an unknown driver.
var ErrDialectNotRegistered = errors.New("dialect not registered")

type Extractor interface {

	// Tables lists the base tables visible on the connection
	Tables(ctx context.Context, db *sql.DB) ([]string, error)

	// Columns returns the columns of table in schema order
	Columns(ctx context.Context, db *sql.DB, table string) ([]introspect.Column, error)

	// Indexed returns the names of indexed columns of table
	Indexed(ctx context.Context, db *sql.DB, table string) ([]string, error)

	// ForeignKeys returns the foreign keys declared on table
	ForeignKeys(ctx context.Context, db *sql.DB, table string) ([]introspect.ForeignKey, error)
}

var dialects = map[string]Extractor{}

// Register makes an Extractor available under name.
func Register(name string, e Extractor) {
	dialects[strings.ToLower(name)] = e
}

// listRegistered returns the registered dialect keys (for diagnostics).
func listRegistered() []string {
	keys := make([]string, 0, len(dialects))
	for k := range dialects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RegisteredDialects is a helper that allows main to print registered dialects
func RegisteredDialects() []string {
	return listRegistered()
}

// Conn is a live schema provider bound to one database connection.
type Conn struct {
	db        *sql.DB
	driver    string
	extractor Extractor
	timeout   time.Duration
}

// Connect opens and pings the database and binds it to the dialect's extractor.
func Connect(driver, dsn string, timeoutSec int) (*Conn, error) {
	driver = config.NormalizeDriver(driver)
	extractor, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrDialectNotRegistered, driver, listRegistered())
	}
	dbConn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	c := NewConn(driver, dbConn, extractor, timeoutSec)
	ctx, cancel := c.withTimeout(context.Background())
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		dbConn.Close()
		return nil, err
	}
	logger.Debug("connected to %s", driver)
	return c, nil
}

// NewConn wraps an already opened database.
func NewConn(driver string, dbConn *sql.DB, e Extractor, timeoutSec int) *Conn {
	if timeoutSec <= 0 {
		timeoutSec = config.DefaultTimeoutSeconds
	}
	return &Conn{db: dbConn, driver: driver, extractor: e, timeout: time.Duration(timeoutSec) * time.Second}
}

// Driver returns the normalized driver name.
func (c *Conn) Driver() string { return c.driver }

// Close closes the underlying database.
func (c *Conn) Close() error { return c.db.Close() }

func (c *Conn) withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := parent.Deadline(); ok && time.Until(deadline) <= c.timeout {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.timeout)
}

func (c *Conn) TableNames(ctx context.Context) ([]string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.extractor.Tables(ctx, c.db)
}

func (c *Conn) TableColumns(ctx context.Context, table string) ([]introspect.Column, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	logger.Debug("introspecting columns of %s", table)
	cols, err := c.extractor.Columns(ctx, c.db, table)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", introspect.ErrTableNotFound, table)
	}
	return cols, nil
}

func (c *Conn) IndexedColumns(ctx context.Context, table string) ([]string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	idx, err := c.extractor.Indexed(ctx, c.db, table)
	if err != nil {
		return nil, fmt.Errorf("indexes of %s: %w", table, err)
	}
	return idx, nil
}

func (c *Conn) ForeignKeys(ctx context.Context, table string) ([]introspect.ForeignKey, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	fks, err := c.extractor.ForeignKeys(ctx, c.db, table)
	if err != nil {
		return nil, fmt.Errorf("foreign keys of %s: %w", table, err)
	}
	for _, fk := range fks {
		if err := fk.Validate(); err != nil {
			return nil, fmt.Errorf("foreign keys of %s: %w", table, err)
		}
	}
	return fks, nil
}

// SplitColumnList splits the comma separated column lists that the extractors
// aggregate per constraint.
func SplitColumnList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
