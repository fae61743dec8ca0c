// Package store persists classification results keyed by image content.
//
// Identity is content-addressed: a streaming SHA-256 of the full image
// bytes is the primary dedup key, with the originating path as a secondary
// uniqueness key. Both are enforced by unique indices in storage rather
// than application-level locking, so overlapping writers serialize at the
// storage layer's own transaction boundary.
package store

import (
	"context"

	"github.com/visionqc/inspect-cli/internal/model"
)

// Filter specifies optional search predicates, combined by logical AND.
// The zero value matches everything, making Search equivalent to Fetch.
type Filter struct {
	Label    string `json:"label,omitempty"`     // exact match on defect label
	Tier     string `json:"severity,omitempty"`  // exact match on tier code
	Action   string `json:"action,omitempty"`    // exact match on action
	Zone     string `json:"location,omitempty"`  // substring match on zone
	Keyword  string `json:"keyword,omitempty"`   // substring across file name, detail, zone
	DateFrom string `json:"date_from,omitempty"` // inclusive YYYY-MM-DD lower bound
	DateTo   string `json:"date_to,omitempty"`   // inclusive YYYY-MM-DD upper bound
}

// Empty reports whether no predicate is set.
func (f Filter) Empty() bool {
	return f == Filter{}
}

// Store is the persistence interface for classification records. The
// read side (Fetch, Search) is the only query surface the dashboard and
// UI layers are permitted to use.
type Store interface {
	// EnsureReady creates the results table and its indices if absent.
	// Idempotent and cheap on repeat calls.
	EnsureReady(ctx context.Context) error

	// Insert computes the content digest of rec.Path and performs a
	// conflict-tolerant insert. It returns false with a nil error when
	// either uniqueness key (path or digest) already exists; this is the
	// idempotent re-ingestion path for folder scans. Any other failure is
	// a storage error.
	Insert(ctx context.Context, rec model.Record) (bool, error)

	// Upsert looks the record up by content digest. When found it
	// overwrites every classification field and the timestamp in place
	// and returns the existing id; otherwise it inserts a new row and
	// returns the new id.
	Upsert(ctx context.Context, rec model.Record) (int64, error)

	// Fetch returns up to limit records, most recent first (timestamp
	// descending, id descending on ties).
	Fetch(ctx context.Context, limit int) ([]model.Record, error)

	// Search applies the filter's predicates conjunctively with the same
	// ordering as Fetch. An empty filter degrades to Fetch semantics.
	Search(ctx context.Context, f Filter, limit int) ([]model.Record, error)

	// Delete removes records by id and returns the number deleted. An
	// empty id set is a no-op returning zero.
	Delete(ctx context.Context, ids []int64) (int64, error)

	Close() error
}

// DefaultFetchLimit caps Fetch when the caller passes a non-positive limit.
const DefaultFetchLimit = 200

// DefaultSearchLimit caps Search when the caller passes a non-positive limit.
const DefaultSearchLimit = 500

const selectColumns = "id, file_name, image_path, image_hash, defect_type, severity, location, score, detail, action, ts"
