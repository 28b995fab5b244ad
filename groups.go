package main

import (
	"fmt"
	"strings"

	"github.com/mdmdirector/devicesweep/director"
	"github.com/mdmdirector/devicesweep/filter"
	"github.com/mdmdirector/devicesweep/prompt"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/mdmdirector/devicesweep/utils"
	"github.com/spf13/cobra"
)

type groupOptions struct {
	match      string
	text       string
	renameFrom string
	renameTo   string
}

func newGroupsCmd(opts *options, code *int) *cobra.Command {
	gopts := &groupOptions{}
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Delete or rename Entra groups by name or membership",
		Long: `Lists every Entra group, keeps the ones whose display name matches by prefix,
substring or pattern (or that have no members), and deletes or renames the
groups you select. Renaming is offered when --rename-to is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			report, err := runFlow(cmd.Context(), cfg, func(p *director.Pipeline, pr *prompt.Prompter) error {
				if opts.ask {
					askGroupCriteria(pr, gopts)
				}
				criteria, rule, err := gopts.criteria()
				if err != nil {
					return err
				}
				p.Flow = director.FlowGroups
				p.GroupCriteria = criteria
				p.Rename = rule
				p.Audit.Prefix = "GroupSweep"
				return nil
			})
			return finish(report, err, code)
		},
	}

	f := cmd.Flags()
	f.StringVar(&gopts.match, "match", utils.EnvString("MATCH", "prefix"), "Match mode: prefix, substring, pattern or empty")
	f.StringVar(&gopts.text, "text", utils.EnvString("MATCH_TEXT", ""), "Text or pattern to match against display names")
	f.StringVar(&gopts.renameFrom, "rename-from", utils.EnvString("RENAME_FROM", ""), "Part of the name to replace (default the match text)")
	f.StringVar(&gopts.renameTo, "rename-to", utils.EnvString("RENAME_TO", ""), "Replacement; pattern mode accepts $1 style group references")
	return cmd
}

func (o *groupOptions) criteria() (types.GroupCriteria, *filter.RenameRule, error) {
	mode, ok := types.ParseMatchMode(strings.ToLower(strings.TrimSpace(o.match)))
	if !ok {
		return types.GroupCriteria{}, nil, fmt.Errorf("unknown match mode %q", o.match)
	}
	criteria := types.GroupCriteria{Mode: mode, Text: o.text}
	if mode != types.MatchEmpty && o.text == "" {
		return criteria, nil, fmt.Errorf("--text is required for %v matching", mode)
	}

	if o.renameTo == "" {
		return criteria, nil, nil
	}
	rule := &filter.RenameRule{Mode: mode, From: o.renameFrom, To: o.renameTo}
	if rule.From == "" {
		rule.From = o.text
	}
	if mode == types.MatchEmpty {
		rule.Mode = types.MatchSubstring
	}
	if rule.From == "" {
		return criteria, nil, fmt.Errorf("--rename-from is required to rename empty groups")
	}
	return criteria, rule, nil
}

// askGroupCriteria prompts over the flag values until input runs out
func askGroupCriteria(p *prompt.Prompter, o *groupOptions) {
	var err error
	if o.match, err = p.Ask("Match mode (prefix, substring, pattern, empty)", o.match); err != nil {
		return
	}
	if mode, _ := types.ParseMatchMode(strings.ToLower(o.match)); mode != types.MatchEmpty {
		if o.text, err = p.Ask("Text to match", o.text); err != nil {
			return
		}
	}
	o.renameTo, _ = p.Ask("Rename to (blank to only delete)", o.renameTo)
}
