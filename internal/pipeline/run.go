package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/hszk-dev/vidvault/internal/infrastructure/metrics"
)

// Querier is the subset of pgxpool.Pool used to run pipelines. Run issues
// two queries concurrently, so it must not be a single connection or pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Result is one window of a pipeline plus the size of the unwindowed set.
type Result[T any] struct {
	Items []T
	Total int64
}

// Run executes the count and window queries of p concurrently. The two
// queries do not share a snapshot.
func Run[T any](ctx context.Context, db Querier, p *Pipeline, scan pgx.RowToFunc[T]) (*Result[T], error) {
	dataSQL, dataArgs, err := p.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile %s pipeline: %w", p.collection, err)
	}
	countSQL, countArgs, err := p.CompileCount()
	if err != nil {
		return nil, fmt.Errorf("compile %s count: %w", p.collection, err)
	}

	var (
		items []T
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := db.QueryRow(gctx, countSQL, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("count %s: %w", p.collection, err)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := db.Query(gctx, dataSQL, dataArgs...)
		if err != nil {
			return fmt.Errorf("query %s: %w", p.collection, err)
		}
		items, err = pgx.CollectRows(rows, scan)
		if err != nil {
			return fmt.Errorf("scan %s: %w", p.collection, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, p.collection).Add(2)

	if items == nil {
		items = []T{}
	}
	return &Result[T]{Items: items, Total: total}, nil
}

// One executes p and returns its first row. It returns pgx.ErrNoRows
// (unwrapped by errors.Is) when nothing matches.
func One[T any](ctx context.Context, db Querier, p *Pipeline, scan pgx.RowToFunc[T]) (T, error) {
	var zero T

	sql, args, err := p.Compile()
	if err != nil {
		return zero, fmt.Errorf("compile %s pipeline: %w", p.collection, err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return zero, fmt.Errorf("query %s: %w", p.collection, err)
	}
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, p.collection).Inc()

	item, err := pgx.CollectOneRow(rows, scan)
	if err != nil {
		return zero, fmt.Errorf("scan %s: %w", p.collection, err)
	}
	return item, nil
}

// DecodeJSON decodes a nested document column. A NULL column leaves dst
// untouched.
func DecodeJSON(raw []byte, dst any) error {
	if raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode nested document: %w", err)
	}
	return nil
}
