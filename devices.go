package main

import (
	"fmt"
	"strings"

	"github.com/mdmdirector/devicesweep/director"
	"github.com/mdmdirector/devicesweep/prompt"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/mdmdirector/devicesweep/utils"
	"github.com/spf13/cobra"
)

type deviceOptions struct {
	states      string
	osPrefixes  string
	osBelow     string
	owner       string
	minAgeDays  int
	deleteEntra bool
}

func newDevicesCmd(opts *options, code *int) *cobra.Command {
	dopts := &deviceOptions{}
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Delete, retire or wipe managed devices that have stopped checking in",
		Long: `Lists every Intune managed device, filters by compliance state, operating
system, owner and last check-in, and applies the chosen action to the devices
you select. Devices that checked in within the last 30 days are never offered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			report, err := runFlow(cmd.Context(), cfg, func(p *director.Pipeline, pr *prompt.Prompter) error {
				if opts.ask {
					askDeviceCriteria(pr, dopts)
				}
				criteria, err := dopts.criteria()
				if err != nil {
					return err
				}
				p.Flow = director.FlowDevices
				p.DeviceCriteria = criteria
				p.Guard = types.DefaultGuard()
				p.SecondaryRequested = dopts.deleteEntra
				p.Audit.Prefix = "DeviceSweep"
				return nil
			})
			return finish(report, err, code)
		},
	}

	f := cmd.Flags()
	f.StringVar(&dopts.states, "states", utils.EnvString("STATES", ""), "Comma separated compliance states to include (default all)")
	f.StringVar(&dopts.osPrefixes, "os", utils.EnvString("OS", ""), "Comma separated operating system prefixes, case sensitive (default all)")
	f.StringVar(&dopts.osBelow, "os-version-below", utils.EnvString("OS_VERSION_BELOW", ""), "Only devices running an OS version below this")
	f.StringVar(&dopts.owner, "owner", utils.EnvString("OWNER", "any"), "Owner type: any, company or personal")
	f.IntVar(&dopts.minAgeDays, "min-age-days", utils.EnvInt("MIN_AGE_DAYS", 0), "Only devices that have not checked in for this many days")
	f.BoolVar(&dopts.deleteEntra, "delete-entra", utils.EnvBool("DELETE_ENTRA", false), "Also delete the matching Entra device object (never for hybrid joined devices)")
	return cmd
}

func (o *deviceOptions) criteria() (types.DeviceCriteria, error) {
	criteria := types.DeviceCriteria{
		OSPrefixes:     utils.SplitList(o.osPrefixes),
		OSVersionBelow: strings.TrimSpace(o.osBelow),
		MinAgeDays:     o.minAgeDays,
	}
	if o.minAgeDays < 0 {
		return criteria, fmt.Errorf("--min-age-days must not be negative")
	}

	for _, s := range utils.SplitList(o.states) {
		state, ok := types.ParseComplianceState(s)
		if !ok {
			return criteria, fmt.Errorf("unknown compliance state %q", s)
		}
		criteria.ComplianceStates = append(criteria.ComplianceStates, state)
	}

	switch strings.ToLower(strings.TrimSpace(o.owner)) {
	case "", "any":
		criteria.Owner = types.OwnerAny
	case "company":
		criteria.Owner = types.OwnerCompany
	case "personal":
		criteria.Owner = types.OwnerPersonal
	default:
		return criteria, fmt.Errorf("unknown owner type %q", o.owner)
	}
	return criteria, nil
}

// askDeviceCriteria prompts over the flag values. End of input keeps
// whatever has been answered so far.
func askDeviceCriteria(p *prompt.Prompter, o *deviceOptions) {
	var err error
	p.Printf("Compliance states: %v\n", types.ComplianceStates)
	if o.states, err = p.Ask("States to include (comma separated, blank for all)", o.states); err != nil {
		return
	}
	if o.osPrefixes, err = p.Ask("Operating system prefixes (blank for all)", o.osPrefixes); err != nil {
		return
	}
	if o.osBelow, err = p.Ask("Only OS versions below (blank for any)", o.osBelow); err != nil {
		return
	}
	if o.owner, err = p.Ask("Owner (any, company, personal)", o.owner); err != nil {
		return
	}
	o.minAgeDays, _ = p.AskInt("Minimum days since last check-in", o.minAgeDays)
}
