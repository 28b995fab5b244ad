package director

import (
	"context"
	"fmt"

	"github.com/mdmdirector/devicesweep/confirm"
	"github.com/mdmdirector/devicesweep/log"
	"github.com/mdmdirector/devicesweep/mdm"
	"github.com/mdmdirector/devicesweep/prometheus"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
)

// primaryAction performs one action against one entity and returns the new
// name for renames
type primaryAction func(ctx context.Context, client mdm.Client, entity types.Entity, plan types.RenamePlan) (string, error)

var primaryActions = map[types.ActionKind]primaryAction{
	types.ActionDelete: deleteEntity,
	types.ActionRetire: retireDevice,
	types.ActionWipe:   wipeDevice,
	types.ActionRename: renameGroup,
}

func deleteEntity(ctx context.Context, client mdm.Client, entity types.Entity, _ types.RenamePlan) (string, error) {
	switch e := entity.(type) {
	case *types.ManagedDevice:
		return "", client.DeleteManagedDevice(ctx, e.ID)
	case *types.Group:
		return "", client.DeleteGroup(ctx, e.ID)
	}
	return "", fmt.Errorf("delete does not apply to %T", entity)
}

func retireDevice(ctx context.Context, client mdm.Client, entity types.Entity, _ types.RenamePlan) (string, error) {
	d, ok := entity.(*types.ManagedDevice)
	if !ok {
		return "", fmt.Errorf("retire does not apply to %T", entity)
	}
	return "", client.RetireManagedDevice(ctx, d.ID)
}

func wipeDevice(ctx context.Context, client mdm.Client, entity types.Entity, _ types.RenamePlan) (string, error) {
	d, ok := entity.(*types.ManagedDevice)
	if !ok {
		return "", fmt.Errorf("wipe does not apply to %T", entity)
	}
	return "", client.WipeManagedDevice(ctx, d.ID, types.PolicyWipeOptions)
}

func renameGroup(ctx context.Context, client mdm.Client, entity types.Entity, plan types.RenamePlan) (string, error) {
	g, ok := entity.(*types.Group)
	if !ok {
		return "", fmt.Errorf("rename does not apply to %T", entity)
	}
	newName, ok := plan[g.ID]
	if !ok {
		return "", fmt.Errorf("no new name planned for %v", g.DisplayName)
	}
	return newName, client.RenameGroup(ctx, g.ID, newName)
}

// plannedName is the rename target reported for a dry run
func plannedName(action types.ActionKind, entity types.Entity, plan types.RenamePlan) string {
	if action != types.ActionRename {
		return ""
	}
	return plan[entity.EntityID()]
}

// Executor applies one confirmed action to every selected entity in order.
// A failure on one entity never stops the others.
type Executor struct {
	Session    *Session
	Action     types.ActionKind
	Secondary  confirm.Secondary
	RenamePlan types.RenamePlan
	Metrics    *prometheus.Metrics
}

// Execute returns exactly one result per selected entity
func (e *Executor) Execute(ctx context.Context, selected []types.Entity) ([]types.ActionResult, error) {
	act, ok := primaryActions[e.Action]
	if !ok {
		return nil, fmt.Errorf("Execute: no handler for action %v", e.Action)
	}

	results := make([]types.ActionResult, 0, len(selected))
	for i, entity := range selected {
		result := e.primary(ctx, act, entity)
		result.Secondary, result.SecondaryError = e.secondary(ctx, entity)

		results = append(results, result)
		e.Metrics.Observe(result)
		logResult(result)
		log.Infof("Processed %d/%d", i+1, len(selected))
	}
	return results, nil
}

func (e *Executor) primary(ctx context.Context, act primaryAction, entity types.Entity) types.ActionResult {
	result := types.ActionResult{
		RunID:     e.Session.RunID,
		Timestamp: e.Session.Now(),
		Action:    e.Action,
		Entity:    entity,
	}

	if e.Session.DryRun {
		result.Primary = types.PrimaryWouldSucceed
		result.NewName = plannedName(e.Action, entity, e.RenamePlan)
	} else {
		newName, err := act(ctx, e.Session.Client, entity, e.RenamePlan)
		result.NewName = newName
		if err != nil {
			result.Primary = types.PrimaryFailed
			result.PrimaryError = errorMessage(err)
		} else {
			result.Primary = types.PrimarySucceeded
		}
	}
	result.Status = types.StatusLabel(e.Action, result.Primary)
	return result
}

// secondary removes the directory object of a managed device. Objects synced
// from an on-premises directory are never deleted, dry run or not.
func (e *Executor) secondary(ctx context.Context, entity types.Entity) (types.SecondaryOutcome, string) {
	device, ok := entity.(*types.ManagedDevice)
	if !ok {
		return types.SecondarySkipped, ""
	}

	switch e.Secondary {
	case confirm.SecondaryNotRequested:
		return types.SecondarySkipped, ""
	case confirm.SecondaryDeclined:
		return types.SecondaryNotAttempted, ""
	}

	if !device.HasDirectoryID() {
		return types.SecondarySkipped, ""
	}

	dir, err := e.Session.Client.FindDirectoryDevice(ctx, device.AzureADDeviceID)
	if errors.Is(err, mdm.ErrNotFound) {
		return types.SecondaryNotFound, ""
	}
	if err != nil {
		return types.SecondaryFailed, errorMessage(err)
	}
	if dir.Synced() {
		return types.SecondarySkippedHybrid, ""
	}
	if e.Session.DryRun {
		return types.SecondaryWouldDelete, ""
	}
	if err := e.Session.Client.DeleteDirectoryDevice(ctx, dir.ID); err != nil {
		return types.SecondaryFailed, errorMessage(err)
	}
	return types.SecondaryDeleted, ""
}

// errorMessage keeps the service's own wording for the audit log
func errorMessage(err error) string {
	return errors.Cause(err).Error()
}

func logResult(r types.ActionResult) {
	holder := LogHolder{
		RunID:           r.RunID,
		Action:          r.Action.String(),
		PrimaryStatus:   r.Status,
		SecondaryStatus: string(r.Secondary),
	}
	if r.Entity != nil {
		holder.EntityID = r.Entity.EntityID()
		holder.EntityName = r.Entity.EntityName()
	}

	switch {
	case r.Primary == types.PrimaryFailed:
		holder.Message = r.PrimaryError
		WarnLogger(holder)
	case r.Secondary == types.SecondaryFailed:
		holder.Message = r.SecondaryError
		WarnLogger(holder)
	default:
		holder.Message = fmt.Sprintf("%v %v", r.Status, holder.EntityName)
		InfoLogger(holder)
	}
}
