package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cabino/internal/catalog"
	"cabino/internal/config"
	"cabino/internal/estimator"
	"cabino/pkg/redis"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("not found")

const (
	catalogCacheKey = "catalog"
	catalogCacheTTL = 24 * time.Hour
	statsCacheKey   = "lead_stats"
	statsCacheTTL   = time.Hour

	estimateCounterKey = "counter:estimates"
)

const (
	StatusNew        = "new"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Cache is the subset of the Redis client the storage needs.
type Cache interface {
	GetJSON(ctx context.Context, key string, v any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

var _ Cache = (*redis.Client)(nil)

type PostgresStorage struct {
	db     *sqlx.DB
	cache  Cache
	logger *zap.Logger

	// queryCatalog reads the catalog tables; replaced in tests.
	queryCatalog func(ctx context.Context) (catalog.Catalog, error)
}

type Lead struct {
	ID                    int64     `db:"id"`
	PublicID              string    `db:"public_id"`
	UserID                int64     `db:"user_id"`
	Username              string    `db:"username"`
	Source                string    `db:"source"`
	Length                float64   `db:"length_m"`
	Width                 float64   `db:"width_m"`
	Height                float64   `db:"height_m"`
	CabinetType           string    `db:"cabinet_type"`
	Material              string    `db:"material"`
	CabinetTypeMultiplier float64   `db:"cabinet_type_multiplier"`
	MaterialMultiplier    float64   `db:"material_multiplier"`
	UpperArea             float64   `db:"upper_area"`
	LowerArea             float64   `db:"lower_area"`
	TotalArea             float64   `db:"total_area"`
	TotalPrice            int64     `db:"total_price"`
	Contact               string    `db:"contact"`
	Status                string    `db:"status"`
	CreatedAt             time.Time `db:"created_at"`
}

// NewLead fills a lead from an estimate request and its result.
func NewLead(userID int64, in estimator.Input, cabinetType, material string, res estimator.Result) Lead {
	return Lead{
		PublicID:              uuid.NewString(),
		UserID:                userID,
		Source:                "telegram",
		Length:                in.Length,
		Width:                 in.Width,
		Height:                in.Height,
		CabinetType:           cabinetType,
		Material:              material,
		CabinetTypeMultiplier: in.CabinetTypeMultiplier,
		MaterialMultiplier:    in.MaterialMultiplier,
		UpperArea:             res.UpperArea,
		LowerArea:             res.LowerArea,
		TotalArea:             res.TotalArea,
		TotalPrice:            res.TotalPrice,
		Status:                StatusNew,
		CreatedAt:             time.Now(),
	}
}

func ValidStatus(status string) bool {
	switch status {
	case StatusNew, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func NewPostgresStorage(ctx context.Context, cfg config.DatabaseConfig, cache Cache, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	var db *sqlx.DB

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = cfg.ConnectTimeout
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name))

	err := backoff.RetryNotify(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if err := conn.PingContext(ctx); err != nil {
				_ = conn.Close()
				return fmt.Errorf("ping: %w", err)
			}
			db = conn
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	s := &PostgresStorage{
		db:     db,
		cache:  cache,
		logger: logger,
	}
	s.queryCatalog = s.selectCatalog
	return s, nil
}

// DB exposes the underlying connection for migrations.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// GetCatalog returns the active cabinet types and materials, served from
// Redis when cached. An empty table falls back to the built-in catalog.
func (s *PostgresStorage) GetCatalog(ctx context.Context) (catalog.Catalog, error) {
	const operation = "storage.GetCatalog"

	var cached catalog.Catalog
	if err := s.cache.GetJSON(ctx, catalogCacheKey, &cached); err == nil && !cached.Empty() {
		return cached, nil
	}

	c, err := s.queryCatalog(ctx)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("%s: %w", operation, err)
	}

	if c.Empty() {
		s.logger.Warn("Catalog tables are empty, using built-in catalog")
		return catalog.Default(), nil
	}

	if err := s.cache.SetJSON(ctx, catalogCacheKey, c, catalogCacheTTL); err != nil {
		s.logger.Warn("Failed to cache catalog", zap.Error(err))
	}
	return c, nil
}

func (s *PostgresStorage) selectCatalog(ctx context.Context) (catalog.Catalog, error) {
	const optionsQuery = `
        SELECT id, title, multiplier, position
        FROM %s
        WHERE active = TRUE
        ORDER BY position, id
    `

	var c catalog.Catalog
	if err := s.db.SelectContext(ctx, &c.CabinetTypes, fmt.Sprintf(optionsQuery, "cabinet_types")); err != nil {
		return catalog.Catalog{}, fmt.Errorf("cabinet types: %w", err)
	}
	if err := s.db.SelectContext(ctx, &c.Materials, fmt.Sprintf(optionsQuery, "materials")); err != nil {
		return catalog.Catalog{}, fmt.Errorf("materials: %w", err)
	}
	return c, nil
}

func (s *PostgresStorage) SaveLead(ctx context.Context, lead Lead) (int64, error) {
	const query = `
        INSERT INTO leads (
            public_id, user_id, username, source, length_m, width_m, height_m,
            cabinet_type, material, cabinet_type_multiplier, material_multiplier,
            upper_area, lower_area, total_area, total_price, contact, status, created_at
        ) VALUES (
            :public_id, :user_id, :username, :source, :length_m, :width_m, :height_m,
            :cabinet_type, :material, :cabinet_type_multiplier, :material_multiplier,
            :upper_area, :lower_area, :total_area, :total_price, :contact, :status, :created_at
        )
        RETURNING id
    `

	if lead.PublicID == "" {
		lead.PublicID = uuid.NewString()
	}

	rows, err := s.db.NamedQueryContext(ctx, query, lead)
	if err != nil {
		return 0, fmt.Errorf("failed to save lead: %w", err)
	}
	defer rows.Close()

	var leadID int64
	if rows.Next() {
		if err := rows.Scan(&leadID); err != nil {
			return 0, fmt.Errorf("failed to scan lead id: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to save lead: %w", err)
	}

	if err := s.cache.Del(ctx, statsCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate lead statistics", zap.Error(err))
	}
	return leadID, nil
}

func (s *PostgresStorage) GetLeadByID(ctx context.Context, leadID int64) (*Lead, error) {
	const query = `SELECT * FROM leads WHERE id = $1`

	var lead Lead
	if err := s.db.GetContext(ctx, &lead, query, leadID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lead %d: %w", leadID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

func (s *PostgresStorage) ListLeads(ctx context.Context, limit int) ([]Lead, error) {
	const query = `SELECT * FROM leads ORDER BY created_at DESC LIMIT $1`

	var leads []Lead
	if err := s.db.SelectContext(ctx, &leads, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

func (s *PostgresStorage) UpdateLeadStatus(ctx context.Context, leadID int64, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid lead status %q", status)
	}

	const query = `UPDATE leads SET status = $1 WHERE id = $2`
	res, err := s.db.ExecContext(ctx, query, status, leadID)
	if err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("lead %d: %w", leadID, ErrNotFound)
	}

	if err := s.cache.Del(ctx, statsCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate lead statistics", zap.Error(err))
	}
	return nil
}

// UpdateLeadStatusByPublicID applies a status change reported by the CRM,
// which only knows the lead's public ID.
func (s *PostgresStorage) UpdateLeadStatusByPublicID(ctx context.Context, publicID, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid lead status %q", status)
	}

	const query = `UPDATE leads SET status = $1 WHERE public_id = $2`
	res, err := s.db.ExecContext(ctx, query, status, publicID)
	if err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("lead %s: %w", publicID, ErrNotFound)
	}

	if err := s.cache.Del(ctx, statsCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate lead statistics", zap.Error(err))
	}
	return nil
}

type LeadStatistics struct {
	TotalLeads     int64            `db:"total_leads"`
	TotalValue     int64            `db:"total_value"`
	CompletedLeads int64            `db:"completed_leads"`
	Customers      int64            `db:"customers"`
	TodayLeads     int64            `db:"today_leads"`
	WeekLeads      int64            `db:"week_leads"`
	MonthLeads     int64            `db:"month_leads"`
	StatusCounts   map[string]int64 `db:"-"`
}

func (s *PostgresStorage) GetLeadStatistics(ctx context.Context) (*LeadStatistics, error) {
	var cached LeadStatistics
	if err := s.cache.GetJSON(ctx, statsCacheKey, &cached); err == nil {
		return &cached, nil
	}

	stats := &LeadStatistics{StatusCounts: make(map[string]int64)}

	err := s.db.GetContext(ctx, stats, `
        SELECT
            COUNT(*) AS total_leads,
            COALESCE(SUM(total_price), 0)::BIGINT AS total_value,
            COUNT(*) FILTER (WHERE status = 'completed') AS completed_leads,
            COUNT(DISTINCT user_id) AS customers,
            COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE) AS today_leads,
            COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE - INTERVAL '7 days') AS week_leads,
            COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE - INTERVAL '30 days') AS month_leads
        FROM leads
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to get lead totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to get status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.StatusCounts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status counts: %w", err)
	}

	if err := s.cache.SetJSON(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
		s.logger.Warn("Failed to cache lead statistics", zap.Error(err))
	}
	return stats, nil
}

// CheckRateLimit counts action for userID in a fixed window and reports
// whether the limit is exceeded.
func (s *PostgresStorage) CheckRateLimit(ctx context.Context, userID int64, action string, limit int64, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:%d:%s", userID, action)

	count, err := s.cache.Incr(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	switch {
	case count == 1:
		if _, err := s.cache.Expire(ctx, key, window); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	case count > limit:
		// a counter whose expiry was never set would block the user for good
		ttl, err := s.cache.TTL(ctx, key)
		if err != nil {
			return false, fmt.Errorf("failed to read rate limit window: %w", err)
		}
		if ttl < 0 {
			if _, err := s.cache.Expire(ctx, key, window); err != nil {
				return false, fmt.Errorf("failed to set rate limit window: %w", err)
			}
		}
	}

	return count > limit, nil
}

// CountEstimate records one successful calculation for the site counters.
func (s *PostgresStorage) CountEstimate(ctx context.Context) error {
	if _, err := s.cache.Incr(ctx, estimateCounterKey); err != nil {
		return fmt.Errorf("failed to count estimate: %w", err)
	}
	return nil
}

func (s *PostgresStorage) EstimateCount(ctx context.Context) (int64, error) {
	n, err := s.cache.GetInt(ctx, estimateCounterKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read estimate counter: %w", err)
	}
	return n, nil
}
