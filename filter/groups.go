package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/mdmdirector/devicesweep/log"
	"github.com/mdmdirector/devicesweep/types"
)

// PatternTimeout bounds a single pattern evaluation
const PatternTimeout = time.Second

const groupProgressEvery = 25

// MemberLister pages through the members of a group
type MemberLister interface {
	ListGroupMembers(ctx context.Context, groupID string) ([]types.DirectoryObject, error)
}

// Warning is a per-entity problem that did not stop the run
type Warning struct {
	EntityID   string
	EntityName string
	Message    string
}

func (w Warning) String() string {
	return fmt.Sprintf("%v (%v): %v", w.EntityName, w.EntityID, w.Message)
}

// GroupOutcome is the partition produced by Groups
type GroupOutcome struct {
	Eligible []*types.Group
	Warnings []Warning
}

type nameMatcher func(name string) (bool, error)

// compileMatcher builds the name predicate for a match mode. Prefix and
// substring matching ignore case. A pattern that does not compile matches
// nothing and is reported once per group.
func compileMatcher(criteria types.GroupCriteria) (nameMatcher, error) {
	text := criteria.Text
	switch criteria.Mode {
	case types.MatchPrefix:
		lower := strings.ToLower(text)
		return func(name string) (bool, error) {
			return strings.HasPrefix(strings.ToLower(name), lower), nil
		}, nil
	case types.MatchSubstring:
		lower := strings.ToLower(text)
		return func(name string) (bool, error) {
			return strings.Contains(strings.ToLower(name), lower), nil
		}, nil
	case types.MatchPattern:
		re, err := compilePattern(text)
		if err != nil {
			return nil, err
		}
		return re.MatchString, nil
	}
	return nil, fmt.Errorf("unsupported match mode %q", criteria.Mode)
}

func compilePattern(pattern string) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = PatternTimeout
	return re, nil
}

// Groups applies the group criteria. Empty mode enumerates every member of
// every group, which is slow on large tenants.
func Groups(ctx context.Context, groups []*types.Group, criteria types.GroupCriteria, members MemberLister) GroupOutcome {
	if criteria.Mode == types.MatchEmpty {
		return emptyGroups(ctx, groups, members)
	}

	var outcome GroupOutcome
	match, compileErr := compileMatcher(criteria)
	for _, g := range groups {
		if compileErr != nil {
			outcome.Warnings = append(outcome.Warnings, warn(g, "invalid pattern: %v", compileErr))
			continue
		}
		ok, err := match(g.DisplayName)
		if err != nil {
			outcome.Warnings = append(outcome.Warnings, warn(g, "pattern evaluation failed: %v", err))
			continue
		}
		if ok {
			outcome.Eligible = append(outcome.Eligible, g)
		}
	}
	return outcome
}

func emptyGroups(ctx context.Context, groups []*types.Group, members MemberLister) GroupOutcome {
	var outcome GroupOutcome
	for i, g := range groups {
		if i > 0 && i%groupProgressEvery == 0 {
			log.Infof("Checked members of %d/%d groups", i, len(groups))
		}
		list, err := members.ListGroupMembers(ctx, g.ID)
		if err != nil {
			// Unreadable groups are assumed to have members.
			outcome.Warnings = append(outcome.Warnings, warn(g, "unable to list members: %v", err))
			continue
		}
		count := len(list)
		g.MemberCount = &count
		if count == 0 {
			outcome.Eligible = append(outcome.Eligible, g)
		}
	}
	log.Infof("Checked members of %d/%d groups", len(groups), len(groups))
	return outcome
}

func warn(g *types.Group, format string, args ...interface{}) Warning {
	return Warning{EntityID: g.ID, EntityName: g.DisplayName, Message: fmt.Sprintf(format, args...)}
}
