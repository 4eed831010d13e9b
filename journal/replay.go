package journal

import (
	"fmt"

	"github.com/nathoo/dicecore/engine/dice"
	"github.com/nathoo/dicecore/engine/outcome"
	"github.com/nathoo/dicecore/types"
)

// Mismatch is a journaled value that replay could not reproduce.
type Mismatch struct {
	Seq   int64
	Field string
	Want  string
	Got   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("roll %d: %s recorded %s, replayed %s", m.Seq, m.Field, m.Want, m.Got)
}

// Replay rebuilds each roll from its stored faces and reclassifies it,
// reporting every net or outcome that differs from the journal.
func Replay(entries []Entry, cfg dice.Config, cls outcome.Classifier) ([]Mismatch, error) {
	var out []Mismatch
	for _, e := range entries {
		if e.Feature == string(types.FeatureDamage) {
			continue
		}
		roll, err := dice.FromFaces(e.Faces, cfg)
		if err != nil {
			return nil, fmt.Errorf("replay roll %d: %w", e.Seq, err)
		}
		if roll.Net != e.Net {
			out = append(out, Mismatch{Seq: e.Seq, Field: "net", Want: fmt.Sprint(e.Net), Got: fmt.Sprint(roll.Net)})
		}
		if e.DC < 1 {
			continue
		}
		c, err := cls.Classify(types.Feature(e.Feature), roll, e.DC)
		if err != nil {
			return nil, fmt.Errorf("replay roll %d: %w", e.Seq, err)
		}
		if got := c.Outcome.String(); got != e.Outcome {
			out = append(out, Mismatch{Seq: e.Seq, Field: "outcome", Want: e.Outcome, Got: got})
		}
	}
	return out, nil
}
