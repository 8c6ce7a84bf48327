// internal/app/lifecycle/reassign.go
package lifecycle

import "strings"

// ReassignPolicy controls what happens when CreateSubDepartment is
// given a head email that already belongs to an account.
//
// ReassignAlways repurposes the account unconditionally: role forced to
// subject head, hierarchy pointers and credential overwritten. This is
// the historical behavior and the default; it silently takes over an
// account if the same email is reused by unrelated people.
// ReassignUnaffiliated only repurposes accounts with no college or one
// already in the target college, and fails with ErrAccountAffiliated
// otherwise.
type ReassignPolicy string

const (
	ReassignAlways       ReassignPolicy = "always"
	ReassignUnaffiliated ReassignPolicy = "unaffiliated"
)

// ParseReassignPolicy maps a config string to a policy, defaulting to
// ReassignAlways for empty or unknown values.
func ParseReassignPolicy(s string) ReassignPolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(ReassignUnaffiliated)) {
		return ReassignUnaffiliated
	}
	return ReassignAlways
}
