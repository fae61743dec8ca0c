// Package decision turns the classifier's three probability heads into a
// single business verdict under a low-confidence abstention rule.
package decision

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/visionqc/inspect-cli/internal/model"
)

// DefaultThreshold is the minimum winning-class probability required to
// accept a positive defect classification.
const DefaultThreshold = 0.25

// InternalDefectLabels are the defect classes in the model's output order.
// The order is part of the trained model contract and must not change
// independently of it.
var InternalDefectLabels = []string{
	"dent",
	"scratch",
	"crack",
	"glass shatter",
	"lamp broken",
	"tire flat",
}

// severityTiers maps the model's ordinal severity output (minor, moderate,
// severe) onto tier codes, index for index.
var severityTiers = [...]model.Tier{model.TierC, model.TierB, model.TierA}

// Engine derives verdicts from raw classifier logits. It is stateless and
// safe for concurrent use; construct one per process and pass it by
// reference.
type Engine struct {
	labels    *model.LabelSet
	threshold float64
}

// New builds an Engine over the configured external label set. A threshold
// outside (0,1] falls back to DefaultThreshold. The description phrase
// tables are checked for exhaustiveness here so a gap is a startup error,
// not a silent empty string at classification time.
func New(labels *model.LabelSet, threshold float64) (*Engine, error) {
	if labels == nil {
		labels = model.NewLabelSet(nil)
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if err := checkPhraseTables(); err != nil {
		return nil, err
	}
	return &Engine{labels: labels, threshold: threshold}, nil
}

// Threshold returns the abstention threshold in effect.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// DecideLogits converts the model's raw logit heads to probabilities and
// decides. The softmax belongs to the engine, not the classifier; this is
// the entry point the classification pipeline uses.
func (e *Engine) DecideLogits(defect, severity, location []float32) (model.Verdict, error) {
	if err := validateVector("defect", defect, len(InternalDefectLabels)); err != nil {
		return model.Verdict{}, err
	}
	if err := validateVector("severity", severity, len(severityTiers)); err != nil {
		return model.Verdict{}, err
	}
	if err := validateVector("location", location, len(model.Zones)); err != nil {
		return model.Verdict{}, err
	}
	return e.Decide(softmax(defect), softmax(severity), softmax(location))
}

// Decide produces exactly one Verdict from the three probability vectors
// (defect classes, severity levels, location zones). Degenerate input
// (wrong length, NaN/Inf, all-zero, negative mass) is a fatal
// input-validation error.
//
// Confidence is always the raw winning defect probability, even when the
// final label is abstained to no-finding, so an abstained decision stays
// auditable from the stored score alone.
func (e *Engine) Decide(defect, severity, location []float64) (model.Verdict, error) {
	if err := validateProbs("defect", defect, len(InternalDefectLabels)); err != nil {
		return model.Verdict{}, err
	}
	if err := validateProbs("severity", severity, len(severityTiers)); err != nil {
		return model.Verdict{}, err
	}
	if err := validateProbs("location", location, len(model.Zones)); err != nil {
		return model.Verdict{}, err
	}

	defIdx, conf := argmax(defect)
	sevIdx, _ := argmax(severity)
	locIdx, _ := argmax(location)

	tier := severityTiers[sevIdx]
	zone := model.Zones[locIdx]

	// Strictly below the threshold abstains; exactly at it accepts.
	label := model.NoDefectLabel
	if conf >= e.threshold {
		label = e.labels.Map(InternalDefectLabels[defIdx])
	}

	desc, err := describe(label, tier, zone)
	if err != nil {
		return model.Verdict{}, err
	}

	return model.Verdict{
		Label:       label,
		Confidence:  conf,
		Tier:        tier,
		Zone:        zone,
		Action:      actionFor(label, tier),
		Description: desc,
	}, nil
}

// actionFor is the single place downstream handling policy lives.
func actionFor(label string, tier model.Tier) model.Action {
	if label == model.NoDefectLabel {
		return model.ActionPass
	}
	switch tier {
	case model.TierA:
		return model.ActionReject
	case model.TierB:
		return model.ActionRework
	default:
		return model.ActionHold
	}
}

// validateVector guards the logit path: wrong length, NaN/Inf, and the
// all-zero vector (whose arg-max would silently pick index 0) are all
// fatal input-validation errors.
func validateVector(name string, v []float32, want int) error {
	if len(v) != want {
		return eris.Errorf("decision: %s vector has %d entries, want %d", name, len(v), want)
	}
	zero := true
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return eris.Errorf("decision: %s vector contains non-finite value", name)
		}
		if x != 0 {
			zero = false
		}
	}
	if zero {
		return eris.Errorf("decision: %s vector is all zero", name)
	}
	return nil
}

// validateProbs guards the probability path with the same rules plus a
// non-negativity check.
func validateProbs(name string, v []float64, want int) error {
	if len(v) != want {
		return eris.Errorf("decision: %s vector has %d entries, want %d", name, len(v), want)
	}
	zero := true
	for _, p := range v {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return eris.Errorf("decision: %s vector contains non-finite value", name)
		}
		if p < 0 {
			return eris.Errorf("decision: %s vector contains negative probability", name)
		}
		if p != 0 {
			zero = false
		}
	}
	if zero {
		return eris.Errorf("decision: %s vector is all zero", name)
	}
	return nil
}

// softmax converts logits to probabilities, shifted by the max for
// numerical stability.
func softmax(logits []float32) []float64 {
	max := float64(logits[0])
	for _, x := range logits[1:] {
		if float64(x) > max {
			max = float64(x)
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, x := range logits {
		probs[i] = math.Exp(float64(x) - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// argmax returns the index and value of the largest entry. Ties keep the
// first index, matching the model's original post-processing.
func argmax(probs []float64) (int, float64) {
	best, bestP := 0, probs[0]
	for i, p := range probs[1:] {
		if p > bestP {
			best, bestP = i+1, p
		}
	}
	return best, bestP
}
