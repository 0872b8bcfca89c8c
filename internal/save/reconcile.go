package save

import "fmt"

// Policy selects which snapshot wins a local/remote conflict. Reconciliation
// is whole-snapshot: the chosen side is taken as-is, fields are never merged
// across the two.
type Policy string

const (
	// PolicyLocal always keeps the local snapshot.
	PolicyLocal Policy = "local"
	// PolicyRemote always takes the remote snapshot.
	PolicyRemote Policy = "remote"
	// PolicyNewest keeps whichever snapshot carries the later timestamp,
	// preferring local on a tie.
	PolicyNewest Policy = "newest"
)

// ParsePolicy validates a policy string from config.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyLocal, PolicyRemote, PolicyNewest:
		return Policy(s), nil
	}
	return "", fmt.Errorf("save: unknown conflict policy %q", s)
}

// Reconcile picks the winning snapshot. A nil side loses automatically; two
// nil sides yield nil.
func Reconcile(local, remote *Snapshot, policy Policy) *Snapshot {
	if local == nil {
		return remote
	}
	if remote == nil {
		return local
	}
	switch policy {
	case PolicyLocal:
		return local
	case PolicyRemote:
		return remote
	default:
		if remote.Timestamp > local.Timestamp {
			return remote
		}
		return local
	}
}
