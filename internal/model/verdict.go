package model

// Tier is a severity tier code exposed to callers, ordered high to low.
type Tier string

const (
	TierA Tier = "A" // severe
	TierB Tier = "B" // moderate
	TierC Tier = "C" // minor
)

// Tiers lists every valid tier code.
var Tiers = []Tier{TierA, TierB, TierC}

// Valid reports whether t is one of the three tier codes.
func (t Tier) Valid() bool {
	return t == TierA || t == TierB || t == TierC
}

// Zone is a spatial region of the inspected object where a defect can be
// reported. ZoneNone is the caller-side convention for no-finding records;
// the classifier itself never reports it.
type Zone string

const (
	ZoneFront Zone = "front"
	ZoneRear  Zone = "rear"
	ZoneSide  Zone = "side"
	ZoneNone  Zone = "none"
)

// Zones lists the zones the classifier can report, in model output order.
var Zones = []Zone{ZoneFront, ZoneRear, ZoneSide}

// Action is the downstream handling decision for an inspected item.
type Action string

const (
	ActionPass   Action = "Pass"
	ActionRework Action = "Rework"
	ActionHold   Action = "Hold"
	ActionReject Action = "Reject"
	ActionScrap  Action = "Scrap" // operator-assigned only, never produced by the engine
)

// Actions lists every valid action.
var Actions = []Action{ActionPass, ActionRework, ActionHold, ActionReject, ActionScrap}

// Verdict is the decision engine's sole output: one consistent business
// verdict derived from the classifier's three probability heads.
type Verdict struct {
	Label       string  `json:"label"`
	Confidence  float64 `json:"confidence"`
	Tier        Tier    `json:"severity"`
	Zone        Zone    `json:"location"`
	Action      Action  `json:"action"`
	Description string  `json:"description"`
}

// NoFinding reports whether the verdict carries the distinguished
// no-finding label.
func (v Verdict) NoFinding() bool {
	return v.Label == NoDefectLabel
}

// WithNoFindingDefaults forces the tier to the lowest code and the zone to
// ZoneNone when the verdict is a no-finding. The engine reports the raw
// arg-max tier and zone; neutralizing them for display and storage is the
// caller's responsibility, applied here.
func (v Verdict) WithNoFindingDefaults() Verdict {
	if v.NoFinding() {
		v.Tier = TierC
		v.Zone = ZoneNone
	}
	return v
}
