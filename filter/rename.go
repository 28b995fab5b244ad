package filter

import (
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
)

// ErrEmptyRenameRule is returned when a rename has nothing to replace
var ErrEmptyRenameRule = errors.New("rename rule has no match text")

// RenameRule rewrites group names. From is matched the same way the group
// filter matched; in pattern mode To may reference capture groups ($1, ${name}).
type RenameRule struct {
	Mode types.MatchMode
	From string
	To   string
}

// PlanRenames resolves the new name of every group before confirmation.
// Groups whose name would not change, or would become empty, are left out
// and reported.
func PlanRenames(groups []*types.Group, rule RenameRule) (types.RenamePlan, []Warning, error) {
	if rule.From == "" {
		return nil, nil, ErrEmptyRenameRule
	}

	rewrite, err := compileRewrite(rule)
	if err != nil {
		return nil, nil, errors.Wrap(err, "PlanRenames:compile")
	}

	plan := types.RenamePlan{}
	var warnings []Warning
	for _, g := range groups {
		newName, err := rewrite(g.DisplayName)
		if err != nil {
			warnings = append(warnings, warn(g, "rename failed: %v", err))
			continue
		}
		newName = strings.TrimSpace(newName)
		switch {
		case newName == "":
			warnings = append(warnings, warn(g, "rename would produce an empty name"))
		case newName == g.DisplayName:
			warnings = append(warnings, warn(g, "rename leaves the name unchanged"))
		default:
			plan[g.ID] = newName
		}
	}
	return plan, warnings, nil
}

// FilterPlanned keeps only the groups present in the plan
func FilterPlanned(groups []*types.Group, plan types.RenamePlan) []*types.Group {
	var out []*types.Group
	for _, g := range groups {
		if _, ok := plan[g.ID]; ok {
			out = append(out, g)
		}
	}
	return out
}

func compileRewrite(rule RenameRule) (func(string) (string, error), error) {
	switch rule.Mode {
	case types.MatchPrefix:
		return func(name string) (string, error) {
			if len(name) < len(rule.From) || !strings.EqualFold(name[:len(rule.From)], rule.From) {
				return name, nil
			}
			return rule.To + name[len(rule.From):], nil
		}, nil
	case types.MatchPattern:
		re, err := compilePattern(rule.From)
		if err != nil {
			return nil, err
		}
		return func(name string) (string, error) {
			return re.Replace(name, rule.To, -1, -1)
		}, nil
	default:
		re, err := compilePattern(regexp2.Escape(rule.From))
		if err != nil {
			return nil, err
		}
		literal := strings.ReplaceAll(rule.To, "$", "$$")
		return func(name string) (string, error) {
			return re.Replace(name, literal, -1, -1)
		}, nil
	}
}
