// Package warehouse is the data-access boundary to the analytical
// warehouse (Snowflake). It owns connection configuration, RSA key-pair
// authentication, and the typed query shapes the rest of the portal
// consumes. Row keys are canonicalized to upper case here so no caller
// ever branches on column-name casing.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/segminerals/ownerportal/internal/config"
)

// ConfigError reports incomplete warehouse configuration. The API layer
// maps it to a 503 with a stable code instead of leaking connection
// internals.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	sort.Strings(e.Missing)
	return "warehouse configuration incomplete, missing: " + strings.Join(e.Missing, ", ")
}

// Client wraps a database/sql pool over the Snowflake driver.
type Client struct {
	cfg config.WarehouseConfig
	aws config.AWSConfig

	mu sync.Mutex
	db *sql.DB
}

// NewClient validates the configuration and returns a client. The
// connection itself is opened lazily on first query so the server can
// start (and report 503s) before the warehouse is reachable.
func NewClient(cfg config.WarehouseConfig, aws config.AWSConfig) (*Client, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, aws: aws}, nil
}

func validate(cfg config.WarehouseConfig) error {
	var missing []string
	if cfg.Account == "" {
		missing = append(missing, "account")
	}
	if cfg.User == "" {
		missing = append(missing, "user")
	}
	if cfg.Warehouse == "" {
		missing = append(missing, "warehouse")
	}
	if cfg.Database == "" {
		missing = append(missing, "database")
	}
	if cfg.Schema == "" {
		missing = append(missing, "schema")
	}
	if cfg.PrivateKeyPath == "" && cfg.PrivateKeySecretID == "" {
		missing = append(missing, "private_key_path or private_key_secret_id")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// conn returns the shared pool, opening it on first use.
func (c *Client) conn(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return c.db, nil
	}

	key, err := loadPrivateKey(ctx, c.cfg, c.aws)
	if err != nil {
		return nil, err
	}

	dsn, err := sf.DSN(&sf.Config{
		Account:       c.cfg.Account,
		User:          c.cfg.User,
		Warehouse:     c.cfg.Warehouse,
		Database:      c.cfg.Database,
		Schema:        c.cfg.Schema,
		Role:          c.cfg.Role,
		Authenticator: sf.AuthTypeJwt,
		PrivateKey:    key,
	})
	if err != nil {
		return nil, fmt.Errorf("build warehouse DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("open warehouse connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	c.db = db
	return db, nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// FetchAll runs a query and returns every row as a Row with upper-cased
// column keys.
func (c *Client) FetchAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("warehouse query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("warehouse columns: %w", err)
	}
	keys := make([]string, len(cols))
	for i, col := range cols {
		keys[i] = strings.ToUpper(col)
	}

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("warehouse scan: %w", err)
		}
		row := make(Row, len(cols))
		for i, k := range keys {
			row[k] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("warehouse rows: %w", err)
	}
	return out, nil
}

// FetchOne returns the first row of a query, or nil if it matched nothing.
func (c *Client) FetchOne(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := c.FetchAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Exec runs a statement and returns the affected row count.
func (c *Client) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("warehouse exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil // driver may not report counts; not an error here
	}
	return n, nil
}

// inPlaceholders builds "?, ?, ?" for an IN-list of n values.
func inPlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
