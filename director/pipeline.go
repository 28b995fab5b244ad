package director

import (
	"context"
	"fmt"
	"time"

	"github.com/mdmdirector/devicesweep/audit"
	"github.com/mdmdirector/devicesweep/confirm"
	"github.com/mdmdirector/devicesweep/filter"
	"github.com/mdmdirector/devicesweep/log"
	"github.com/mdmdirector/devicesweep/prometheus"
	"github.com/mdmdirector/devicesweep/prompt"
	"github.com/mdmdirector/devicesweep/selection"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
)

// ErrEmptyInventory is returned when the tenant has nothing to list. No audit
// file is written.
var ErrEmptyInventory = errors.New("inventory is empty")

// Flow is the kind of entity a run works on
type Flow int

const (
	FlowDevices Flow = iota
	FlowGroups
)

func (f Flow) String() string {
	if f == FlowGroups {
		return "groups"
	}
	return "devices"
}

// Stage is where a run stopped
type Stage string

const (
	StageNothingToDo     Stage = "nothing-to-do"
	StageNothingSelected Stage = "nothing-selected"
	StageAborted         Stage = "aborted"
	StageCompleted       Stage = "completed"
)

// Pipeline wires the stages of one run together
type Pipeline struct {
	Session *Session
	Flow    Flow

	DeviceCriteria types.DeviceCriteria
	Guard          *types.GuardPolicy
	GroupCriteria  types.GroupCriteria
	// Rename, when set, is resolved into a plan before confirmation
	Rename *filter.RenameRule

	Surface            selection.Surface
	Prompter           *prompt.Prompter
	Preset             types.ActionKind
	SecondaryRequested bool

	Audit           *audit.Writer
	Sink            audit.Sink
	Metrics         *prometheus.Metrics
	MetricsTextfile string
}

// Report summarises a run for the operator
type Report struct {
	RunID         string
	Flow          Flow
	Stage         Stage
	Fetched       int
	Candidates    int
	GuardExcluded int
	// Cutoff is the effective check-in cutoff of a devices run
	Cutoff        time.Time
	Warnings      []filter.Warning
	Selected      int
	Decision      confirm.Decision
	Results       []types.ActionResult
	AuditFile     string
	ExcludedFile  string
}

// Failures counts results whose primary action failed
func (r *Report) Failures() int {
	n := 0
	for _, res := range r.Results {
		if res.Primary == types.PrimaryFailed {
			n++
		}
	}
	return n
}

type candidateSet struct {
	entities      []types.Entity
	guardExcluded []*types.ManagedDevice
}

// Run executes fetch, filter, select, confirm, execute and audit in order.
// Stopping early for lack of candidates, selection or confirmation is not an
// error and is reported through Report.Stage.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: p.Session.RunID, Flow: p.Flow}

	set, err := p.candidates(ctx, report)
	if err != nil {
		return report, err
	}
	p.Metrics.SetFiltered(report.Candidates, report.GuardExcluded)
	for _, w := range report.Warnings {
		log.Warnf("%v", w)
	}

	if len(set.entities) == 0 {
		log.Info("No candidates matched the criteria, nothing to do")
		report.Stage = StageNothingToDo
		p.exportMetrics()
		return report, nil
	}

	selected, err := p.Surface.Select(ctx, set.entities)
	if err != nil {
		return report, errors.Wrap(err, "Run:select")
	}
	report.Selected = len(selected)
	if len(selected) == 0 {
		log.Info("Nothing selected")
		report.Stage = StageNothingSelected
		p.exportMetrics()
		return report, nil
	}

	plan, err := p.planRenames(selected, report)
	if err != nil {
		return report, err
	}

	decision, err := confirm.Run(p.Prompter, p.confirmRequest(len(selected), len(plan) > 0))
	if err != nil {
		return report, errors.Wrap(err, "Run:confirm")
	}
	report.Decision = decision
	if !decision.Proceed() {
		log.Infof("Aborted: %v", decision.Reason)
		report.Stage = StageAborted
		p.exportMetrics()
		return report, nil
	}

	if decision.Action == types.ActionRename {
		selected = renameTargets(selected, plan)
	}

	executor := &Executor{
		Session:    p.Session,
		Action:     decision.Action,
		Secondary:  decision.Secondary,
		RenamePlan: plan,
		Metrics:    p.Metrics,
	}
	report.Results, err = executor.Execute(ctx, selected)
	if err != nil {
		return report, errors.Wrap(err, "Run:execute")
	}
	report.Stage = StageCompleted

	if err := p.writeAudit(ctx, report, set); err != nil {
		return report, err
	}
	p.exportMetrics()
	return report, nil
}

func (p *Pipeline) candidates(ctx context.Context, report *Report) (candidateSet, error) {
	var set candidateSet
	switch p.Flow {
	case FlowGroups:
		groups, err := p.Session.Client.ListGroups(ctx, types.GroupSelect)
		if err != nil {
			return set, errors.Wrap(err, "Run:fetch")
		}
		report.Fetched = len(groups)
		if len(groups) == 0 {
			return set, ErrEmptyInventory
		}
		outcome := filter.Groups(ctx, groups, p.GroupCriteria, p.Session.Client)
		report.Warnings = outcome.Warnings
		set.entities = types.GroupsToEntities(outcome.Eligible)

	default:
		devices, err := p.Session.Client.ListManagedDevices(ctx, types.ManagedDeviceSelect)
		if err != nil {
			return set, errors.Wrap(err, "Run:fetch")
		}
		report.Fetched = len(devices)
		if len(devices) == 0 {
			return set, ErrEmptyInventory
		}
		outcome, err := filter.Devices(devices, p.DeviceCriteria, p.Guard, p.Session.StartedAt)
		if err != nil {
			return set, errors.Wrap(err, "Run:filter")
		}
		for reason, n := range outcome.Excluded {
			log.Debugf("Excluded %d devices by %v", n, reason)
		}
		report.Cutoff = filter.Cutoff(p.Session.StartedAt, p.DeviceCriteria, p.Guard)
		set.guardExcluded = outcome.GuardExcluded
		set.entities = types.DevicesToEntities(outcome.Eligible)
		report.GuardExcluded = len(outcome.GuardExcluded)
		if report.GuardExcluded > 0 {
			log.Infof("%d devices checked in within the last %d days and were held back", report.GuardExcluded, p.Guard.Days)
		}
	}
	report.Candidates = len(set.entities)
	log.Infof("%d of %d %v are candidates", report.Candidates, report.Fetched, p.Flow)
	return set, nil
}

func (p *Pipeline) planRenames(selected []types.Entity, report *Report) (types.RenamePlan, error) {
	if p.Flow != FlowGroups || p.Rename == nil {
		return nil, nil
	}
	var groups []*types.Group
	for _, e := range selected {
		if g, ok := e.(*types.Group); ok {
			groups = append(groups, g)
		}
	}
	plan, warnings, err := filter.PlanRenames(groups, *p.Rename)
	if err != nil {
		return nil, errors.Wrap(err, "Run:rename")
	}
	for _, w := range warnings {
		log.Warnf("%v", w)
	}
	report.Warnings = append(report.Warnings, warnings...)
	for _, g := range filter.FilterPlanned(groups, plan) {
		p.Prompter.Printf("  %v -> %v\n", g.DisplayName, plan[g.ID])
	}
	return plan, nil
}

func renameTargets(selected []types.Entity, plan types.RenamePlan) []types.Entity {
	var out []types.Entity
	for _, e := range selected {
		if _, ok := plan[e.EntityID()]; ok {
			out = append(out, e)
		}
	}
	return out
}

func (p *Pipeline) confirmRequest(count int, renameAvailable bool) confirm.Request {
	req := confirm.Request{
		Preset:          p.Preset,
		RenameAvailable: renameAvailable,
		Count:           count,
		DryRun:          p.Session.DryRun,
	}
	if p.Flow == FlowGroups {
		req.Choices = types.GroupActions
		req.Default = types.ActionDelete
		return req
	}
	req.Choices = types.DeviceActions
	req.Default = types.ActionRetire
	req.SecondaryRequested = p.SecondaryRequested
	return req
}

func (p *Pipeline) writeAudit(ctx context.Context, report *Report, set candidateSet) error {
	path, err := p.Audit.WriteResults(p.Session.StartedAt, report.Results)
	if err != nil {
		return errors.Wrap(err, "Run:audit")
	}
	report.AuditFile = path

	if len(set.guardExcluded) > 0 {
		reason := fmt.Sprintf("checked in within %d days", p.Guard.Days)
		path, err := p.Audit.WriteExcluded(p.Session.StartedAt, set.guardExcluded, reason)
		if err != nil {
			return errors.Wrap(err, "Run:audit")
		}
		report.ExcludedFile = path
	}

	if p.Sink != nil {
		if err := p.Sink.Record(ctx, p.Session.TenantID, p.Session.DryRun, report.Results); err != nil {
			log.Errorf("Unable to record results in the audit database: %v", err)
		}
	}
	return nil
}

// exportMetrics failures are logged only
func (p *Pipeline) exportMetrics() {
	if err := p.Metrics.WriteTextfile(p.MetricsTextfile); err != nil {
		log.Errorf("%v", err)
	}
}
