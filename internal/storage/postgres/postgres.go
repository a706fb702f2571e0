// Package postgres stores encounter journals in PostgreSQL through pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
)

// connectTimeout bounds the initial ping in NewPool.
const connectTimeout = 5 * time.Second

// Pool owns the pgx pool shared by the repositories.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool opens a pool sized by cfg and pings it once. Statements are traced
// to logger at debug level.
//
// Postcondition: the returned Pool has answered a ping; the caller must Close it.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	pc.MaxConns, pc.MinConns, pc.MaxConnLifetime = cfg.MaxConns, cfg.MinConns, cfg.MaxConnLifetime
	pc.ConnConfig.Tracer = &queryTracer{logger: logger.Named("pgx")}

	start := time.Now()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	p := &Pool{pool: pool}
	if err := p.Health(ctx, connectTimeout); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	logger.Info("journal database connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return p, nil
}

// Health pings the database, giving up after timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

func (p *Pool) Close() { p.pool.Close() }

// DB exposes the pool to repositories.
func (p *Pool) DB() *pgxpool.Pool { return p.pool }

// inTx runs fn in a transaction that commits only if fn returns nil.
func inTx(ctx context.Context, db *pgxpool.Pool, fn func(pgx.Tx) error) error {
	if err := pgx.BeginFunc(ctx, db, fn); err != nil {
		return fmt.Errorf("journal transaction: %w", err)
	}
	return nil
}

type queryStartKey struct{}

// queryTracer logs each statement and its duration.
type queryTracer struct {
	logger *zap.Logger
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, time.Now())
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	fields := []zap.Field{zap.String("tag", data.CommandTag.String())}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		fields = append(fields, zap.Duration("elapsed", time.Since(start)))
	}
	if data.Err != nil {
		t.logger.Warn("query failed", append(fields, zap.Error(data.Err))...)
		return
	}
	t.logger.Debug("query", fields...)
}
