package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/visionqc/inspect-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db     *sql.DB
	labels *model.LabelSet
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode. labels is the configured external label set used to coerce unknown
// labels on the write path; nil uses the defaults.
func NewSQLite(dsn string, labels *model.LabelSet) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if labels == nil {
		labels = model.NewLabelSet(nil)
	}
	return &SQLiteStore{db: db, labels: labels}, nil
}

// The unique indices on image_path and image_hash encode the two
// uniqueness invariants directly in storage; INSERT OR IGNORE rides on
// them for conflict-tolerant ingestion.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	file_name   TEXT,
	image_path  TEXT NOT NULL,
	image_hash  TEXT,
	defect_type TEXT,
	severity    TEXT,
	location    TEXT,
	score       REAL,
	detail      TEXT,
	action      TEXT,
	ts          TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_results_image_path ON results(image_path);
CREATE UNIQUE INDEX IF NOT EXISTS idx_results_image_hash ON results(image_hash);
CREATE INDEX IF NOT EXISTS idx_results_type_sev_ts ON results(defect_type, severity, ts);
CREATE INDEX IF NOT EXISTS idx_results_location ON results(location);
`

func (s *SQLiteStore) EnsureReady(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)
	return eris.Wrap(err, "sqlite: ensure schema")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Insert(ctx context.Context, rec model.Record) (bool, error) {
	rec, err := prepareRecord(rec, s.labels)
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO results
		 (file_name, image_path, image_hash, defect_type, severity, location, score, detail, action, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.FileName, rec.Path, rec.Digest, rec.Label, string(rec.Tier), string(rec.Zone),
		rec.Score, rec.Detail, string(rec.Action), rec.TS,
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: insert %s (digest %s)", rec.Path, rec.Digest)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: insert rows affected")
	}
	return n == 1, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, rec model.Record) (int64, error) {
	rec, err := prepareRecord(rec, s.labels)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback() //nolint:errcheck

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM results WHERE image_hash = ?`, rec.Digest).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.ExecContext(ctx,
			`INSERT INTO results
			 (file_name, image_path, image_hash, defect_type, severity, location, score, detail, action, ts)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.FileName, rec.Path, rec.Digest, rec.Label, string(rec.Tier), string(rec.Zone),
			rec.Score, rec.Detail, string(rec.Action), rec.TS,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert insert %s (digest %s)", rec.Path, rec.Digest)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, eris.Wrap(err, "sqlite: upsert last insert id")
		}
	case err != nil:
		return 0, eris.Wrapf(err, "sqlite: upsert lookup digest %s", rec.Digest)
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE results
			 SET file_name = ?, image_path = ?, defect_type = ?, severity = ?, location = ?,
			     score = ?, detail = ?, action = ?, ts = ?
			 WHERE id = ?`,
			rec.FileName, rec.Path, rec.Label, string(rec.Tier), string(rec.Zone),
			rec.Score, rec.Detail, string(rec.Action), rec.TS, id,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert update id %d", id)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert")
	}
	return id, nil
}

func (s *SQLiteStore) Fetch(ctx context.Context, limit int) ([]model.Record, error) {
	return s.Search(ctx, Filter{}, normalizeLimit(limit, DefaultFetchLimit))
}

func (s *SQLiteStore) Search(ctx context.Context, f Filter, limit int) ([]model.Record, error) {
	where, args := renderWhere(buildClauses(f), false, 0)
	query := "SELECT " + selectColumns + " FROM results" + where +
		" ORDER BY ts DESC, id DESC LIMIT ?"
	args = append(args, normalizeLimit(limit, DefaultSearchLimit))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search")
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
	return recs, eris.Wrap(rows.Err(), "sqlite: search iterate")
}

func (s *SQLiteStore) Delete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := "DELETE FROM results WHERE id IN (?" + strings.Repeat(", ?", len(ids)-1) + ")"
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete")
	}
	n, err := res.RowsAffected()
	return n, eris.Wrap(err, "sqlite: delete rows affected")
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (model.Record, error) {
	var (
		rec model.Record

		fileName, digest, label, tier, zone, detail, action sql.NullString
		score                                               sql.NullFloat64
	)
	err := row.Scan(&rec.ID, &fileName, &rec.Path, &digest, &label, &tier, &zone, &score, &detail, &action, &rec.TS)
	if err != nil {
		return model.Record{}, eris.Wrap(err, "store: scan record")
	}
	rec.FileName = fileName.String
	rec.Digest = digest.String
	rec.Label = label.String
	rec.Tier = model.Tier(tier.String)
	rec.Zone = model.Zone(zone.String)
	rec.Score = score.Float64
	rec.Detail = detail.String
	rec.Action = model.Action(action.String)
	return rec, nil
}
