package decision

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/visionqc/inspect-cli/internal/model"
)

// noFindingDescription is the fixed sentence for abstained verdicts.
const noFindingDescription = "No visible defect was detected."

// Phrase tables keyed by the closed tier/zone enums. checkPhraseTables
// verifies both are exhaustive at engine construction; a gap is a
// programming error and must never degrade to an empty description.
var (
	tierPhrases = map[model.Tier]string{
		model.TierA: "severe",
		model.TierB: "moderate",
		model.TierC: "minor",
	}
	zonePhrases = map[model.Zone]string{
		model.ZoneFront: "front section",
		model.ZoneRear:  "rear section",
		model.ZoneSide:  "side panel",
	}
)

func checkPhraseTables() error {
	for _, t := range model.Tiers {
		if _, ok := tierPhrases[t]; !ok {
			return eris.Errorf("decision: no phrase for tier %q", t)
		}
	}
	for _, z := range model.Zones {
		if _, ok := zonePhrases[z]; !ok {
			return eris.Errorf("decision: no phrase for zone %q", z)
		}
	}
	return nil
}

// describe renders the human-readable verdict text from (label, tier,
// zone). Label text is humanized directly so labels that pass through the
// mapping unmapped still describe cleanly.
func describe(label string, tier model.Tier, zone model.Zone) (string, error) {
	if label == model.NoDefectLabel {
		return noFindingDescription, nil
	}
	tp, ok := tierPhrases[tier]
	if !ok {
		return "", eris.Errorf("decision: no phrase for tier %q", tier)
	}
	zp, ok := zonePhrases[zone]
	if !ok {
		return "", eris.Errorf("decision: no phrase for zone %q", zone)
	}
	noun := strings.ReplaceAll(label, "_", " ")
	return fmt.Sprintf("Location: %s; a %s %s defect was detected.", zp, tp, noun), nil
}
