package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/visionqc/inspect-cli/internal/model"
)

// PgxPool is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it for tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool. It exists for deployments
// that share one results database between several inspection stations; the
// semantics match SQLiteStore exactly.
type PostgresStore struct {
	pool   PgxPool
	labels *model.LabelSet
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, labels *model.LabelSet) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	if labels == nil {
		labels = model.NewLabelSet(nil)
	}
	return &PostgresStore{pool: pool, labels: labels}, nil
}

// ts stays TEXT in the stored YYYY-MM-DD HH:MM:SS layout so lexical and
// chronological order coincide across both backends.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS results (
	id          BIGSERIAL PRIMARY KEY,
	file_name   TEXT,
	image_path  TEXT NOT NULL,
	image_hash  TEXT,
	defect_type TEXT,
	severity    TEXT,
	location    TEXT,
	score       DOUBLE PRECISION,
	detail      TEXT,
	action      TEXT,
	ts          TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_results_image_path ON results(image_path);
CREATE UNIQUE INDEX IF NOT EXISTS idx_results_image_hash ON results(image_hash);
CREATE INDEX IF NOT EXISTS idx_results_type_sev_ts ON results(defect_type, severity, ts);
CREATE INDEX IF NOT EXISTS idx_results_location ON results(location);
`

func (s *PostgresStore) EnsureReady(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchema)
	return eris.Wrap(err, "postgres: ensure schema")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, rec model.Record) (bool, error) {
	rec, err := prepareRecord(rec, s.labels)
	if err != nil {
		return false, err
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO results
		 (file_name, image_path, image_hash, defect_type, severity, location, score, detail, action, ts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT DO NOTHING`,
		rec.FileName, rec.Path, rec.Digest, rec.Label, string(rec.Tier), string(rec.Zone),
		rec.Score, rec.Detail, string(rec.Action), rec.TS,
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: insert %s (digest %s)", rec.Path, rec.Digest)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rec model.Record) (int64, error) {
	rec, err := prepareRecord(rec, s.labels)
	if err != nil {
		return 0, err
	}

	// Single-statement upsert keyed by the digest; conflicting on the
	// path index instead means two distinct contents claim one path and
	// is surfaced as a storage error, matching the SQLite backend.
	var id int64
	err = s.pool.QueryRow(ctx,
		`INSERT INTO results
		 (file_name, image_path, image_hash, defect_type, severity, location, score, detail, action, ts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (image_hash) DO UPDATE SET
		   file_name = EXCLUDED.file_name, image_path = EXCLUDED.image_path,
		   defect_type = EXCLUDED.defect_type, severity = EXCLUDED.severity,
		   location = EXCLUDED.location, score = EXCLUDED.score,
		   detail = EXCLUDED.detail, action = EXCLUDED.action, ts = EXCLUDED.ts
		 RETURNING id`,
		rec.FileName, rec.Path, rec.Digest, rec.Label, string(rec.Tier), string(rec.Zone),
		rec.Score, rec.Detail, string(rec.Action), rec.TS,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: upsert %s (digest %s)", rec.Path, rec.Digest)
	}
	return id, nil
}

func (s *PostgresStore) Fetch(ctx context.Context, limit int) ([]model.Record, error) {
	return s.Search(ctx, Filter{}, normalizeLimit(limit, DefaultFetchLimit))
}

func (s *PostgresStore) Search(ctx context.Context, f Filter, limit int) ([]model.Record, error) {
	clauses := buildClauses(f)
	where, args := renderWhere(clauses, true, 1)
	n := len(args) + 1
	query := "SELECT " + selectColumns + " FROM results" + where +
		" ORDER BY ts DESC, id DESC LIMIT $" + strconv.Itoa(n)
	args = append(args, normalizeLimit(limit, DefaultSearchLimit))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: search")
	}
	defer rows.Close()

	var recs []model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: search iterate")
}

func (s *PostgresStore) Delete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM results WHERE id IN ("+strings.Join(ph, ", ")+")", args...)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete")
	}
	return tag.RowsAffected(), nil
}
