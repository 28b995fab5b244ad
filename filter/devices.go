// Package filter partitions fetched entities into action candidates.
package filter

import (
	"strings"
	"time"

	version "github.com/hashicorp/go-version"
	"github.com/mdmdirector/devicesweep/log"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
)

// Reason names the predicate that excluded a device
type Reason string

const (
	ReasonCompliance Reason = "compliance"
	ReasonOS         Reason = "os"
	ReasonOSVersion  Reason = "os-version"
	ReasonOwner      Reason = "owner"
	ReasonAge        Reason = "age"
	ReasonGuard      Reason = "guard"
)

// DeviceOutcome is the partition produced by Devices
type DeviceOutcome struct {
	Eligible []*types.ManagedDevice
	// GuardExcluded passed every predicate, including the operator's age
	// threshold, and was held back by the guard alone. These are reported but
	// never offered.
	GuardExcluded []*types.ManagedDevice
	// Excluded counts silently dropped devices per predicate
	Excluded map[Reason]int
}

// Empty is true when there is nothing to offer for selection
func (o DeviceOutcome) Empty() bool {
	return len(o.Eligible) == 0
}

// Cutoff is the check-in instant a device must be strictly older than
func Cutoff(now time.Time, criteria types.DeviceCriteria, guard *types.GuardPolicy) time.Time {
	return types.Cutoff(now, criteria.MinAgeDays, guard)
}

// Devices applies the device criteria and the guard. Predicates run in a
// fixed order: compliance, OS name, OS version, owner, then age.
func Devices(devices []*types.ManagedDevice, criteria types.DeviceCriteria, guard *types.GuardPolicy, now time.Time) (DeviceOutcome, error) {
	outcome := DeviceOutcome{Excluded: map[Reason]int{}}

	var below *version.Version
	if criteria.OSVersionBelow != "" {
		v, err := version.NewVersion(criteria.OSVersionBelow)
		if err != nil {
			return outcome, errors.Wrapf(err, "Devices: parse OS version %q", criteria.OSVersionBelow)
		}
		below = v
	}

	operatorCutoff := types.Cutoff(now, criteria.MinAgeDays, nil)
	cutoff := types.Cutoff(now, criteria.MinAgeDays, guard)
	log.Debugf("Effective check-in cutoff %v", cutoff.Format(time.RFC3339))

	for _, d := range devices {
		if !criteria.AcceptsState(d.ComplianceState) {
			outcome.Excluded[ReasonCompliance]++
			continue
		}
		if !matchesOS(d, criteria.OSPrefixes) {
			outcome.Excluded[ReasonOS]++
			continue
		}
		if below != nil && !versionBelow(d.OSVersion, below) {
			outcome.Excluded[ReasonOSVersion]++
			continue
		}
		if !matchesOwner(d, criteria.Owner) {
			outcome.Excluded[ReasonOwner]++
			continue
		}
		if tooRecent(d, operatorCutoff) {
			outcome.Excluded[ReasonAge]++
			continue
		}
		if tooRecent(d, cutoff) {
			outcome.GuardExcluded = append(outcome.GuardExcluded, d)
			outcome.Excluded[ReasonGuard]++
			continue
		}
		outcome.Eligible = append(outcome.Eligible, d)
	}

	return outcome, nil
}

func matchesOS(d *types.ManagedDevice, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	if d.OperatingSystem == "" {
		return false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(d.OperatingSystem, p) {
			return true
		}
	}
	return false
}

// versionBelow is false for versions that cannot be parsed
func versionBelow(raw string, below *version.Version) bool {
	v, err := version.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return v.LessThan(below)
}

func matchesOwner(d *types.ManagedDevice, owner types.OwnerType) bool {
	switch owner {
	case types.OwnerCompany, types.OwnerPersonal:
		return d.ManagedDeviceOwnerType == owner
	default:
		return true
	}
}

// tooRecent treats a device that never checked in as maximally old. A device
// is old enough only when its last check-in is strictly before the cutoff.
func tooRecent(d *types.ManagedDevice, cutoff time.Time) bool {
	if d.NeverSynced() {
		return false
	}
	return !d.LastSyncDateTime.Before(cutoff)
}
