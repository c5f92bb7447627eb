package postgres

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/linnemanlabs/go-core/log"
)

// context keys for query metadata.
type ctxKey string

const (
	ctxKeySQL   ctxKey = "pgx.sql"
	ctxKeyStart ctxKey = "pgx.start"
)

var queryObserver atomic.Pointer[queryObserverHolder]

type queryObserverHolder struct{ QueryObserver }

// QueryObserver receives per-query outcomes (wired by main for Prometheus).
type QueryObserver interface {
	ObserveQuery(ctx context.Context, operation, outcome string, dur time.Duration)
}

// QueryObserverFunc adapts a plain function to QueryObserver.
type QueryObserverFunc func(ctx context.Context, operation, outcome string, dur time.Duration)

// ObserveQuery implements QueryObserver.
func (f QueryObserverFunc) ObserveQuery(ctx context.Context, operation, outcome string, dur time.Duration) {
	f(ctx, operation, outcome, dur)
}

// SetQueryObserver sets the global query observer.
func SetQueryObserver(o QueryObserver) {
	if o == nil {
		queryObserver.Store(nil)
		return
	}
	queryObserver.Store(&queryObserverHolder{QueryObserver: o})
}

func getQueryObserver() QueryObserver {
	h := queryObserver.Load()
	if h == nil {
		return nil
	}
	return h.QueryObserver
}

// loggingTracer wraps another pgx.QueryTracer (otelpgx) and adds a structured
// log line plus an observer callback for every query.
type loggingTracer struct {
	inner pgx.QueryTracer
}

func wrapQueryTracer(inner pgx.QueryTracer) pgx.QueryTracer {
	return loggingTracer{inner: inner}
}

func (t loggingTracer) TraceQueryStart(
	ctx context.Context,
	conn *pgx.Conn,
	data pgx.TraceQueryStartData,
) context.Context {
	start := time.Now()

	// Let the inner tracer (otelpgx) create its span first.
	if t.inner != nil {
		ctx = t.inner.TraceQueryStart(ctx, conn, data)
	}

	ctx = context.WithValue(ctx, ctxKeySQL, data.SQL)
	ctx = context.WithValue(ctx, ctxKeyStart, start)
	return ctx
}

func (t loggingTracer) TraceQueryEnd(
	ctx context.Context,
	conn *pgx.Conn,
	data pgx.TraceQueryEndData,
) {
	// Inner tracer first so spans finish correctly.
	if t.inner != nil {
		t.inner.TraceQueryEnd(ctx, conn, data)
	}

	sql, _ := ctx.Value(ctxKeySQL).(string)
	start, _ := ctx.Value(ctxKeyStart).(time.Time)

	var dur time.Duration
	if !start.IsZero() {
		dur = time.Since(start)
	}

	operation := operationName(data.CommandTag, sql)

	if obs := getQueryObserver(); obs != nil && dur > 0 {
		outcome := "ok"
		if data.Err != nil {
			outcome = "error"
		}
		obs.ObserveQuery(ctx, operation, outcome, dur)
	}

	L := log.FromContext(ctx)

	fields := []any{
		"db.statement", sql,
		"db.operation.name", operation,
		"db.duration", dur.Seconds(),
	}
	if rows := data.CommandTag.RowsAffected(); rows >= 0 {
		fields = append(fields, "db.rows", rows)
	}

	if data.Err != nil {
		var pgErr *pgconn.PgError
		if errors.As(data.Err, &pgErr) {
			fields = append(fields,
				"db.error_code", pgErr.Code,
				"db.error_constraint", pgErr.ConstraintName,
			)
		}
		L.Error(ctx, data.Err, "db query failed", fields...)
		return
	}
	L.Info(ctx, "db query", fields...)
}

// operationName derives the SQL verb from the command tag, falling back to
// the first token of the statement.
func operationName(tag pgconn.CommandTag, sql string) string {
	src := strings.TrimSpace(tag.String())
	if src == "" {
		src = strings.TrimSpace(sql)
	}
	parts := strings.Fields(src)
	if len(parts) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(parts[0])
}
