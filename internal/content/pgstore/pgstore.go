// Package pgstore provides a PostgreSQL implementation of content.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/sentinel/internal/content"
)

var tracer = otel.Tracer("github.com/linnemanlabs/sentinel/internal/content/pgstore")

//go:embed schema.sql
var schema string

// pgUniqueViolation is the SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

// Store persists posts in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

const postColumns = `id, source, handle, posted_at, content, url, risk_score, flags, verdict, reviewer_notes, created_at`

// FindByURL retrieves a post by its URL.
func (s *Store) FindByURL(ctx context.Context, url string) (*content.Post, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.FindByURL", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + postColumns + ` FROM posts WHERE url = $1`
	p, err := scanPostRow(s.pool.QueryRow(ctx, query, url))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if p == nil {
		return nil, false, nil
	}
	return p, true, nil
}

// Insert stores a new post, assigning a fresh ULID. The unique index on url
// is the authoritative dedup safety net; violations map to ErrDuplicateURL.
func (s *Store) Insert(ctx context.Context, p *content.Post) (*content.Post, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Insert", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	flagsJSON, err := json.Marshal(p.Flags)
	if err != nil {
		return nil, fmt.Errorf("marshal flags: %w", err)
	}

	cp := *p
	cp.ID = ulid.Make().String()
	cp.Verdict = content.VerdictUnreviewed
	cp.ReviewerNotes = ""
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}

	var postedAt *time.Time
	if !cp.PostedAt.IsZero() {
		postedAt = &cp.PostedAt
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO posts (id, source, handle, posted_at, content, url, risk_score, flags, verdict, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		cp.ID, string(cp.Source), cp.Handle, postedAt, cp.Content, cp.URL,
		cp.RiskScore, flagsJSON, string(cp.Verdict), cp.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, content.ErrDuplicateURL
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return &cp, nil
}

// Query returns matching posts ordered by risk score descending, ties broken
// by insertion order (created_at, then id since ULIDs sort by time).
func (s *Store) Query(ctx context.Context, minScore float64, includeReviewed bool) ([]content.Post, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Query", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	b := sq.Select(postColumns).
		From("posts").
		Where(sq.GtOrEq{"risk_score": minScore}).
		OrderBy("risk_score DESC", "created_at ASC", "id ASC").
		PlaceholderFormat(sq.Dollar)
	if !includeReviewed {
		b = b.Where(sq.Eq{"verdict": string(content.VerdictUnreviewed)})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var out []content.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return out, nil
}

// CompareAndSetVerdict applies the transition in a single conditional UPDATE
// so two concurrent reviewer actions cannot both succeed.
func (s *Store) CompareAndSetVerdict(ctx context.Context, id string, expected, next content.Verdict, notes string) (content.CASOutcome, error) {
	ctx, span := tracer.Start(ctx, "pgstore.CompareAndSetVerdict", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPDATE"),
	))
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`UPDATE posts SET verdict = $3, reviewer_notes = $4 WHERE id = $1 AND verdict = $2`,
		id, string(expected), string(next), notes,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("update verdict: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return content.CASUpdated, nil
	}

	// No row updated: distinguish missing post from a lost race.
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&exists); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return content.CASNotFound, nil
	}
	return content.CASAlreadyReviewed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPostRow scans a single row into a content.Post.
// Returns (nil, nil) when no row is found.
func scanPostRow(row pgx.Row) (*content.Post, error) {
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func scanPost(row rowScanner) (*content.Post, error) {
	var (
		p         content.Post
		source    string
		verdict   string
		postedAt  *time.Time
		flagsJSON []byte
		notes     *string
	)

	err := row.Scan(
		&p.ID, &source, &p.Handle, &postedAt, &p.Content, &p.URL,
		&p.RiskScore, &flagsJSON, &verdict, &notes, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}

	p.Source = content.Source(source)
	p.Verdict = content.Verdict(verdict)
	if postedAt != nil {
		p.PostedAt = *postedAt
	}
	if notes != nil {
		p.ReviewerNotes = *notes
	}
	if err := json.Unmarshal(flagsJSON, &p.Flags); err != nil {
		return nil, fmt.Errorf("unmarshal flags: %w", err)
	}
	return &p, nil
}
