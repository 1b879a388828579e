package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/soltixdb/greenhouse/internal/analytics"
	"github.com/soltixdb/greenhouse/internal/config"
	"github.com/soltixdb/greenhouse/internal/logging"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresStore persists readings in a PostgreSQL table through pgx
type PostgresStore struct {
	db     *sql.DB
	table  string
	logger *logging.Logger

	insertSQL string
	latestSQL string
}

// NewPostgresStore opens the database, checks connectivity and creates the
// table when auto_migrate is set
func NewPostgresStore(ctx context.Context, cfg config.DatabaseConfig, logger *logging.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	store, err := NewPostgresStoreWithDB(db, cfg.Table, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	store.logger.Info("Postgres store initialized", "table", cfg.Table)
	return store, nil
}

// NewPostgresStoreWithDB wraps an open database handle
func NewPostgresStoreWithDB(db *sql.DB, table string, logger *logging.Logger) (*PostgresStore, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &PostgresStore{
		db:     db,
		table:  table,
		logger: logger,
		insertSQL: fmt.Sprintf(`INSERT INTO %s (temperature, humidity, soil_moisture, light_intensity, created_at)
VALUES ($1, $2, $3, $4, $5) RETURNING id`, table),
		latestSQL: fmt.Sprintf(`SELECT id, temperature, humidity,
       COALESCE(soil_moisture, 0), COALESCE(light_intensity, 0), created_at
FROM %s
ORDER BY created_at DESC, id DESC
LIMIT $1`, table),
	}, nil
}

// EnsureSchema creates the readings table and its time index
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id              BIGSERIAL PRIMARY KEY,
    temperature     DOUBLE PRECISION NOT NULL,
    humidity        DOUBLE PRECISION NOT NULL,
    soil_moisture   DOUBLE PRECISION,
    light_intensity DOUBLE PRECISION,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_created_at_idx ON %s (created_at DESC, id DESC)`, s.table, s.table),
	}

	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", s.table, err)
		}
	}
	return nil
}

// Append inserts a reading; a zero CreatedAt takes the current time
func (s *PostgresStore) Append(ctx context.Context, r analytics.Reading) (int64, error) {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	err := s.db.QueryRowContext(ctx, s.insertSQL,
		r.Temperature, r.Humidity, r.SoilMoisture, r.LightIntensity, createdAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert reading: %w", err)
	}
	return id, nil
}

// Latest returns up to limit records, newest first
func (s *PostgresStore) Latest(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		return []Record{}, nil
	}

	rows, err := s.db.QueryContext(ctx, s.latestSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.Temperature,
			&rec.Humidity,
			&rec.SoilMoisture,
			&rec.LightIntensity,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read readings: %w", err)
	}
	return records, nil
}

// History returns up to limit of the newest records, oldest first
func (s *PostgresStore) History(ctx context.Context, limit int) ([]Record, error) {
	latest, err := s.Latest(ctx, limit)
	if err != nil {
		return nil, err
	}
	return reverseRecords(latest), nil
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
