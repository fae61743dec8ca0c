package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildClauses_Empty(t *testing.T) {
	assert.Empty(t, buildClauses(Filter{}))

	where, args := renderWhere(nil, false, 0)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildClauses_AllPredicates(t *testing.T) {
	f := Filter{
		Label:    "dent",
		Tier:     "A",
		Action:   "Reject",
		Zone:     "front",
		Keyword:  "shatter",
		DateFrom: "2026-08-01",
		DateTo:   "2026-08-31",
	}
	cs := buildClauses(f)
	require.Len(t, cs, 7)

	where, args := renderWhere(cs, false, 0)
	assert.Equal(t,
		" WHERE defect_type = ? AND severity = ? AND action = ? AND location LIKE ?"+
			" AND (file_name LIKE ? OR detail LIKE ? OR location LIKE ?)"+
			" AND substr(ts, 1, 10) >= ? AND substr(ts, 1, 10) <= ?",
		where)
	assert.Equal(t, []any{"dent", "A", "Reject", "%front%", "%shatter%", "%shatter%", "%shatter%", "2026-08-01", "2026-08-31"}, args)
}

func TestRenderWhere_NumberedPlaceholders(t *testing.T) {
	cs := buildClauses(Filter{Label: "dent", Keyword: "glass"})

	where, args := renderWhere(cs, true, 1)
	assert.Equal(t,
		" WHERE defect_type = $1 AND (file_name LIKE $2 OR detail LIKE $3 OR location LIKE $4)",
		where)
	assert.Equal(t, []any{"dent", "%glass%", "%glass%", "%glass%"}, args)
}

func TestFilter_Empty(t *testing.T) {
	assert.True(t, Filter{}.Empty())
	assert.False(t, Filter{Label: "dent"}.Empty())
}
