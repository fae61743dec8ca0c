package model

import "time"

// TimestampLayout is the stored timestamp format. Lexical order equals
// chronological order, so the store sorts and range-filters on the raw text.
const TimestampLayout = "2006-01-02 15:04:05"

// Record is one persisted classification result. Identity is threefold:
// the storage-assigned id, the content digest (primary dedup key), and the
// originating path (secondary uniqueness key).
type Record struct {
	ID       int64   `json:"id"`
	FileName string  `json:"file_name"`
	Path     string  `json:"image_path"`
	Digest   string  `json:"image_hash"`
	Label    string  `json:"defect_type"`
	Tier     Tier    `json:"severity"`
	Zone     Zone    `json:"location"`
	Score    float64 `json:"score"`
	Detail   string  `json:"detail"`
	Action   Action  `json:"action"`
	TS       string  `json:"ts"`
}

// Now formats t in the stored timestamp layout.
func Now(t time.Time) string {
	return t.Format(TimestampLayout)
}
