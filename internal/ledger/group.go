package ledger

import (
	"sync/atomic"

	"github.com/quantumauth-io/algo-quickstart/internal/constants"
	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

// Group is an ordered, all-or-nothing set of intents. The order given to
// Compose is the order submitted and the order of the resulting ids.
type Group struct {
	intents   []*Intent
	submitted atomic.Bool
}

// Compose consumes every intent. Nothing is consumed when it fails.
func Compose(intents ...*Intent) (*Group, error) {
	if len(intents) < constants.MinGroupSize || len(intents) > constants.MaxGroupSize {
		return nil, failure.Validationf("ledger: a group needs %d to %d intents, got %d",
			constants.MinGroupSize, constants.MaxGroupSize, len(intents))
	}

	seen := make(map[*Intent]struct{}, len(intents))
	for idx, in := range intents {
		if in == nil {
			return nil, failure.Validationf("ledger: group intent %d is nil", idx)
		}
		if _, dup := seen[in]; dup {
			return nil, failure.Validationf("ledger: group intent %d appears twice", idx)
		}
		seen[in] = struct{}{}
	}

	for idx, in := range intents {
		if err := in.consume(); err != nil {
			for _, taken := range intents[:idx] {
				taken.release()
			}
			return nil, err
		}
	}

	return &Group{intents: append([]*Intent(nil), intents...)}, nil
}

func (g *Group) Len() int { return len(g.intents) }

func (g *Group) Intents() []*Intent {
	return append([]*Intent(nil), g.intents...)
}

func (g *Group) claim() error {
	if !g.submitted.CompareAndSwap(false, true) {
		return failure.Validationf("ledger: group already submitted")
	}
	return nil
}
