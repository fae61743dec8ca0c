package store

import (
	"fmt"
	"strings"
)

// clause is one typed search predicate: a SQL fragment with `?` markers and
// the values bound to them. Clauses are only ever combined by AND, which
// keeps the "all predicates optional, conjunctive" contract testable apart
// from any storage engine.
type clause struct {
	expr string
	args []any
}

// buildClauses translates a Filter into its predicate clauses. Every value
// is bound as a parameter; no user input is ever spliced into SQL text.
//
// Date bounds compare on substr(ts, 1, 10): the stored timestamp layout
// makes the date prefix lexically ordered, and the expression is valid in
// both SQLite and Postgres.
func buildClauses(f Filter) []clause {
	var cs []clause
	if f.Label != "" {
		cs = append(cs, clause{"defect_type = ?", []any{f.Label}})
	}
	if f.Tier != "" {
		cs = append(cs, clause{"severity = ?", []any{f.Tier}})
	}
	if f.Action != "" {
		cs = append(cs, clause{"action = ?", []any{f.Action}})
	}
	if f.Zone != "" {
		cs = append(cs, clause{"location LIKE ?", []any{contains(f.Zone)}})
	}
	if f.Keyword != "" {
		w := contains(f.Keyword)
		cs = append(cs, clause{"(file_name LIKE ? OR detail LIKE ? OR location LIKE ?)", []any{w, w, w}})
	}
	if f.DateFrom != "" {
		cs = append(cs, clause{"substr(ts, 1, 10) >= ?", []any{f.DateFrom}})
	}
	if f.DateTo != "" {
		cs = append(cs, clause{"substr(ts, 1, 10) <= ?", []any{f.DateTo}})
	}
	return cs
}

func contains(s string) string {
	return "%" + s + "%"
}

// renderWhere joins clauses into a WHERE fragment and the flattened arg
// list. With numbered placeholders each `?` becomes $1, $2, ... for pgx;
// otherwise the `?` markers are kept for database/sql drivers. Returns the
// empty string when there are no clauses.
func renderWhere(cs []clause, numbered bool, startAt int) (string, []any) {
	if len(cs) == 0 {
		return "", nil
	}
	exprs := make([]string, 0, len(cs))
	var args []any
	n := startAt
	for _, c := range cs {
		expr := c.expr
		if numbered {
			var b strings.Builder
			for _, r := range c.expr {
				if r == '?' {
					fmt.Fprintf(&b, "$%d", n)
					n++
					continue
				}
				b.WriteRune(r)
			}
			expr = b.String()
		}
		exprs = append(exprs, expr)
		args = append(args, c.args...)
	}
	return " WHERE " + strings.Join(exprs, " AND "), args
}
