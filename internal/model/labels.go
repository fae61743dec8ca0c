package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// NoDefectLabel is the distinguished label meaning "no defect detected with
// sufficient confidence". It is always the first entry of the default
// external label set so that unknown labels coerce to it.
const NoDefectLabel = "no_defect"

// DefaultExternalLabels is the default external label vocabulary. The
// classifier's internal labels map onto these by normalized-name lookup.
var DefaultExternalLabels = []string{
	NoDefectLabel,
	"dent",
	"scratch",
	"crack",
	"glass_shatter",
	"lamp_broken",
	"tire_flat",
}

var labelFolder = cases.Fold()

// NormalizeLabel produces the lookup key for a label: case-folded with
// whitespace collapsed to underscores.
func NormalizeLabel(s string) string {
	return strings.Join(strings.Fields(labelFolder.String(s)), "_")
}

// LabelSet is the configured external label vocabulary, with a
// normalized-key index for mapping classifier-internal names.
type LabelSet struct {
	labels []string
	byKey  map[string]string
}

// NewLabelSet builds a LabelSet from the configured label list. Blank
// entries are dropped; an empty list falls back to the defaults.
func NewLabelSet(labels []string) *LabelSet {
	clean := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			clean = append(clean, l)
		}
	}
	if len(clean) == 0 {
		clean = append(clean, DefaultExternalLabels...)
	}
	byKey := make(map[string]string, len(clean))
	for _, l := range clean {
		byKey[NormalizeLabel(l)] = l
	}
	return &LabelSet{labels: clean, byKey: byKey}
}

// Labels returns the configured labels in order.
func (s *LabelSet) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Default returns the set's first label, the coercion target for unknown
// labels.
func (s *LabelSet) Default() string {
	return s.labels[0]
}

// Contains reports whether label is a member of the set (exact match).
func (s *LabelSet) Contains(label string) bool {
	for _, l := range s.labels {
		if l == label {
			return true
		}
	}
	return false
}

// Map translates a classifier-internal label to its external name by
// normalized-key lookup. Unmapped labels pass through unchanged so a model
// retrained with new classes keeps working before config catches up.
func (s *LabelSet) Map(internal string) string {
	if ext, ok := s.byKey[NormalizeLabel(internal)]; ok {
		return ext
	}
	return internal
}

// Coerce returns label if it is a member of the set, otherwise the default
// label. The store applies this on the write path so rows stay readable
// after the configured label set changes.
func (s *LabelSet) Coerce(label string) string {
	if s.Contains(label) {
		return label
	}
	return s.Default()
}
