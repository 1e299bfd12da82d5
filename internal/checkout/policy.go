package checkout

import "fmt"

// Policy decides how often a low item may trigger a restock notification.
type Policy string

const (
	// PolicyPerItem notifies once each time an item newly drops to or below
	// the threshold. A bulk count that lifts it back above re-arms it.
	PolicyPerItem Policy = "per-item"
	// PolicyOnce notifies for the first low item only, for the lifetime of
	// the service.
	PolicyOnce Policy = "once"
	// PolicyEvery notifies on every qualifying removal.
	PolicyEvery Policy = "every"
)

// ParsePolicy converts a configuration value to a Policy. Empty selects
// PolicyPerItem.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case "":
		return PolicyPerItem, nil
	case PolicyPerItem, PolicyOnce, PolicyEvery:
		return p, nil
	default:
		return "", fmt.Errorf("unknown notify policy %q (want per-item, once or every)", s)
	}
}
