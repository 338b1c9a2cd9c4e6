package growth

import "github.com/pkg/errors"

// State is the run state of a Grower. Every state but Running is terminal
// and permanent.
type State uint8

const (
	Running State = iota
	// Depleted means every attractor was consumed.
	Depleted
	// Stalled means the attractors left can never be reached.
	Stalled
	// NodeBudget means the skeleton hit Params.MaxNodes.
	NodeBudget
)

var stateNames = [...]string{
	Running:    "running",
	Depleted:   "depleted",
	Stalled:    "stalled",
	NodeBudget: "node_budget",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether growth has stopped.
func (s State) Terminal() bool {
	return s != Running
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return errors.Errorf("unknown growth state %q", text)
}
