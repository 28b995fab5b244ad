package types

import (
	"time"
)

// DefaultGuardDays is the check-in age floor of the guarded device flow
const DefaultGuardDays = 30

// GuardPolicy is a minimum age floor that always applies on top of the
// operator's own age threshold.
type GuardPolicy struct {
	Days int
}

// DefaultGuard returns the guard the devices flow runs with
func DefaultGuard() *GuardPolicy {
	return &GuardPolicy{Days: DefaultGuardDays}
}

// Cutoff returns the check-in instant a device must be strictly older than.
// A nil guard yields the operator cutoff alone; otherwise the older of the two
// cutoffs wins.
func Cutoff(now time.Time, minAgeDays int, guard *GuardPolicy) time.Time {
	days := minAgeDays
	if guard != nil && guard.Days > days {
		days = guard.Days
	}
	if days < 0 {
		days = 0
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// MatchMode selects how group names are matched
type MatchMode string

const (
	MatchPrefix    MatchMode = "prefix"
	MatchSubstring MatchMode = "substring"
	MatchPattern   MatchMode = "pattern"
	MatchEmpty     MatchMode = "empty"
)

// ParseMatchMode accepts the mode names and their one letter codes
func ParseMatchMode(s string) (MatchMode, bool) {
	switch s {
	case "prefix", "p", "1":
		return MatchPrefix, true
	case "substring", "contains", "s", "2":
		return MatchSubstring, true
	case "pattern", "regex", "r", "3":
		return MatchPattern, true
	case "empty", "e", "4":
		return MatchEmpty, true
	}
	return "", false
}

// DeviceCriteria holds the operator's device filter for one run
type DeviceCriteria struct {
	// ComplianceStates accepted; empty accepts every state
	ComplianceStates []ComplianceState
	// OSPrefixes are case-sensitive operatingSystem prefixes; empty accepts all
	OSPrefixes []string
	// OSVersionBelow excludes devices at or above this version when set
	OSVersionBelow string
	Owner          OwnerType
	// MinAgeDays is the operator's check-in age threshold, 0 is unconstrained
	MinAgeDays int
}

// AcceptsState reports whether state is in the accepted set
func (c DeviceCriteria) AcceptsState(state ComplianceState) bool {
	if len(c.ComplianceStates) == 0 {
		return true
	}
	for _, s := range c.ComplianceStates {
		if s == state {
			return true
		}
	}
	return false
}

// GroupCriteria holds the operator's group filter for one run
type GroupCriteria struct {
	Mode MatchMode
	Text string
}
