package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/iliyamo/hirewire-superset/internal/config"
)

// Pinger is the part of a database handle the health checks need.
type Pinger interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// OpenMetadata connects to Superset's metadata store using the SQLAlchemy URI
// and verifies the connection.  The "+dialect" suffix of the scheme is
// ignored; the Go driver is picked from the base scheme.
func OpenMetadata(ctx context.Context, uri string) (Pinger, error) {
	driver, err := config.MetadataDriver(uri)
	if err != nil {
		return nil, err
	}
	switch driver {
	case config.DriverPostgres:
		return openPostgres(ctx, uri)
	case config.DriverMySQL:
		return openMySQL(ctx, uri)
	}
	return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedDatabase, driver)
}

// PostgresDSN rewrites a SQLAlchemy URI into one pgx accepts.
func PostgresDSN(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	u.Scheme = "postgres"
	return u.String(), nil
}

type pgConn struct{ conn *pgx.Conn }

func (p pgConn) Ping(ctx context.Context) error  { return p.conn.Ping(ctx) }
func (p pgConn) Close(ctx context.Context) error { return p.conn.Close(ctx) }

func openPostgres(ctx context.Context, uri string) (Pinger, error) {
	dsn, err := PostgresDSN(uri)
	if err != nil {
		return nil, fmt.Errorf("parse postgres uri: %w", err)
	}
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pgConn{conn: conn}, nil
}

// MySQLDSN converts a SQLAlchemy MySQL URI into a go-sql-driver DSN.
func MySQLDSN(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}
	cfg.Addr = net.JoinHostPort(host, port)
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

type sqlDB struct{ db *sql.DB }

func (s sqlDB) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s sqlDB) Close(context.Context) error    { return s.db.Close() }

func openMySQL(ctx context.Context, uri string) (Pinger, error) {
	dsn, err := MySQLDSN(uri)
	if err != nil {
		return nil, fmt.Errorf("parse mysql uri: %w", err)
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// A reachability check needs a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return sqlDB{db: db}, nil
}

// AnalyticsPath extracts the file path from a duckdb SQLAlchemy URI such as
// "duckdb:////app/duckdb-data/hirewire.duckdb".
func AnalyticsPath(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, "duckdb:///")
	if !ok || rest == "" {
		return "", fmt.Errorf("not a duckdb file uri: %q", uri)
	}
	return rest, nil
}

// OpenAnalytics opens the DuckDB file read-only and verifies it with a
// trivial query.
func OpenAnalytics(ctx context.Context, path string) (Pinger, error) {
	db, err := sql.Open("duckdb", path+"?access_mode=read_only")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("query duckdb %s: %w", path, err)
	}
	return sqlDB{db: db}, nil
}
