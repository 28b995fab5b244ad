package director

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/mdmdirector/devicesweep/confirm"
	"github.com/mdmdirector/devicesweep/mdm"
	"github.com/mdmdirector/devicesweep/mdm/mocks"
	"github.com/mdmdirector/devicesweep/prometheus"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func boolPtr(b bool) *bool { return &b }

func device(id, crossID string) *types.ManagedDevice {
	return &types.ManagedDevice{ID: id, DeviceName: "DEVICE-" + id, AzureADDeviceID: crossID}
}

func entities(devices ...*types.ManagedDevice) []types.Entity {
	return types.DevicesToEntities(devices)
}

func directoryDevices(objects map[string]*types.DirectoryDevice) func(context.Context, string) (*types.DirectoryDevice, error) {
	return func(ctx context.Context, deviceID string) (*types.DirectoryDevice, error) {
		if d, ok := objects[deviceID]; ok {
			return d, nil
		}
		return nil, mdm.ErrNotFound
	}
}

func TestExecutor_PartialFailureIsolation(t *testing.T) {
	client := &mocks.MockClient{
		RetireManagedDeviceFunc: func(ctx context.Context, id string) error {
			if id == "d2" {
				return errors.Wrap(&mdm.ServiceError{StatusCode: http.StatusBadRequest, Message: "Device is not in a retirable state"}, "RetireManagedDevice")
			}
			return nil
		},
	}
	metrics := prometheus.NewMetrics()
	executor := &Executor{
		Session: NewSession(client, "contoso", false, fixedClock),
		Action:  types.ActionRetire,
		Metrics: metrics,
	}

	results, err := executor.Execute(context.Background(), entities(device("d1", ""), device("d2", ""), device("d3", "")))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, []string{"d1", "d2", "d3"}, client.RetireManagedDeviceCalls)
	assert.Equal(t, "retired", results[0].Status)
	assert.Equal(t, "failed", results[1].Status)
	assert.Equal(t, types.PrimaryFailed, results[1].Primary)
	assert.Equal(t, "Device is not in a retirable state", results[1].PrimaryError)
	assert.Equal(t, "retired", results[2].Status)

	for _, r := range results {
		assert.Equal(t, executor.Session.RunID, r.RunID)
		assert.Equal(t, fixedNow, r.Timestamp)
		assert.Equal(t, types.SecondarySkipped, r.Secondary)
	}
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.Actions.WithLabelValues("Retire", "succeeded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Actions.WithLabelValues("Retire", "failed")))
}

func TestExecutor_HybridNeverDeleted(t *testing.T) {
	for _, dryRun := range []bool{false, true} {
		client := &mocks.MockClient{
			FindDirectoryDeviceFunc: directoryDevices(map[string]*types.DirectoryDevice{
				"hybrid": {ID: "obj-h", DeviceID: "hybrid", OnPremisesSyncEnabled: boolPtr(true)},
			}),
		}
		executor := &Executor{
			Session:   NewSession(client, "contoso", dryRun, fixedClock),
			Action:    types.ActionDelete,
			Secondary: confirm.SecondaryConfirmed,
		}

		results, err := executor.Execute(context.Background(), entities(device("d1", "hybrid")))
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, types.SecondarySkippedHybrid, results[0].Secondary, "dry run %v", dryRun)
		assert.Empty(t, client.DeleteDirectoryDeviceCalls)
	}
}

func TestExecutor_SecondaryOutcomes(t *testing.T) {
	lookups := map[string]*types.DirectoryDevice{
		"cloud": {ID: "obj-c", DeviceID: "cloud", OnPremisesSyncEnabled: boolPtr(false)},
		"nil":   {ID: "obj-n", DeviceID: "nil"},
		"fails": {ID: "obj-f", DeviceID: "fails"},
	}
	client := &mocks.MockClient{
		FindDirectoryDeviceFunc: func(ctx context.Context, deviceID string) (*types.DirectoryDevice, error) {
			if deviceID == "lookup-error" {
				return nil, errors.Wrap(&mdm.ServiceError{StatusCode: http.StatusForbidden, Message: "Insufficient privileges"}, "FindDirectoryDevice")
			}
			return directoryDevices(lookups)(ctx, deviceID)
		},
		DeleteDirectoryDeviceFunc: func(ctx context.Context, objectID string) error {
			if objectID == "obj-f" {
				return &mdm.ServiceError{StatusCode: http.StatusInternalServerError, Message: "boom"}
			}
			return nil
		},
	}
	executor := &Executor{
		Session:   NewSession(client, "contoso", false, fixedClock),
		Action:    types.ActionDelete,
		Secondary: confirm.SecondaryConfirmed,
	}

	results, err := executor.Execute(context.Background(), entities(
		device("d1", "cloud"),
		device("d2", "nil"),
		device("d3", "missing"),
		device("d4", ""),
		device("d5", "lookup-error"),
		device("d6", "fails"),
	))
	require.NoError(t, err)
	require.Len(t, results, 6)

	assert.Equal(t, types.SecondaryDeleted, results[0].Secondary)
	assert.Equal(t, types.SecondaryDeleted, results[1].Secondary)
	assert.Equal(t, types.SecondaryNotFound, results[2].Secondary)
	assert.Equal(t, types.SecondarySkipped, results[3].Secondary)
	assert.Equal(t, types.SecondaryFailed, results[4].Secondary)
	assert.Equal(t, "Insufficient privileges", results[4].SecondaryError)
	assert.Equal(t, types.SecondaryFailed, results[5].Secondary)
	assert.Equal(t, "boom", results[5].SecondaryError)

	assert.Equal(t, []string{"obj-c", "obj-n", "obj-f"}, client.DeleteDirectoryDeviceCalls)
	assert.Equal(t, []string{"cloud", "nil", "missing", "lookup-error", "fails"}, client.FindDirectoryDeviceCalls)
	assert.Len(t, client.DeleteManagedDeviceCalls, 6)
}

func TestExecutor_SecondaryDeclinedOrNotRequested(t *testing.T) {
	testCases := []struct {
		name      string
		secondary confirm.Secondary
		expected  types.SecondaryOutcome
	}{
		{"declined", confirm.SecondaryDeclined, types.SecondaryNotAttempted},
		{"not requested", confirm.SecondaryNotRequested, types.SecondarySkipped},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := &mocks.MockClient{}
			executor := &Executor{
				Session:   NewSession(client, "contoso", false, fixedClock),
				Action:    types.ActionRetire,
				Secondary: tc.secondary,
			}
			results, err := executor.Execute(context.Background(), entities(device("d1", "cloud")))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, results[0].Secondary)
			assert.Empty(t, client.FindDirectoryDeviceCalls)
		})
	}
}

func TestExecutor_DryRunMakesNoChanges(t *testing.T) {
	client := &mocks.MockClient{
		FindDirectoryDeviceFunc: directoryDevices(map[string]*types.DirectoryDevice{
			"cloud": {ID: "obj-c", DeviceID: "cloud"},
		}),
	}

	for _, action := range types.DeviceActions {
		executor := &Executor{
			Session:   NewSession(client, "contoso", true, fixedClock),
			Action:    action,
			Secondary: confirm.SecondaryConfirmed,
		}
		results, err := executor.Execute(context.Background(), entities(device("d1", "cloud"), device("d2", "")))
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, types.PrimaryWouldSucceed, results[0].Primary)
		assert.Equal(t, action.Spec().DryRun, results[0].Status)
		assert.Equal(t, types.SecondaryWouldDelete, results[0].Secondary)
		assert.Equal(t, types.SecondarySkipped, results[1].Secondary)
	}
	assert.Zero(t, client.MutatingCalls())
}

func TestExecutor_RoundTripDryRunRetire(t *testing.T) {
	client := &mocks.MockClient{}
	executor := &Executor{
		Session: NewSession(client, "contoso", true, fixedClock),
		Action:  types.ActionRetire,
	}
	results, err := executor.Execute(context.Background(), entities(device("A", "X")))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.ActionRetire, results[0].Action)
	assert.Equal(t, "would-retire", results[0].Status)
	assert.Equal(t, "", results[0].PrimaryError)
	assert.Zero(t, client.MutatingCalls())
}

func TestExecutor_Wipe(t *testing.T) {
	client := &mocks.MockClient{}
	executor := &Executor{Session: NewSession(client, "contoso", false, fixedClock), Action: types.ActionWipe}

	results, err := executor.Execute(context.Background(), entities(device("d1", "")))
	require.NoError(t, err)
	assert.Equal(t, "wiped", results[0].Status)
	require.Len(t, client.WipeManagedDeviceCalls, 1)
	assert.Equal(t, mocks.WipeCall{ID: "d1", Options: types.PolicyWipeOptions}, client.WipeManagedDeviceCalls[0])
}

func TestExecutor_Groups(t *testing.T) {
	groups := []*types.Group{
		{ID: "g1", DisplayName: "TEMP-Sales"},
		{ID: "g2", DisplayName: "TEMP-HR"},
	}
	plan := types.RenamePlan{"g1": "ARCHIVE-Sales"}

	t.Run("rename", func(t *testing.T) {
		client := &mocks.MockClient{}
		executor := &Executor{Session: NewSession(client, "contoso", false, fixedClock), Action: types.ActionRename, RenamePlan: plan}
		results, err := executor.Execute(context.Background(), types.GroupsToEntities(groups))
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "renamed", results[0].Status)
		assert.Equal(t, "ARCHIVE-Sales", results[0].NewName)
		assert.Equal(t, "failed", results[1].Status)
		assert.Contains(t, results[1].PrimaryError, "no new name planned")
		assert.Equal(t, []mocks.RenameCall{{GroupID: "g1", NewName: "ARCHIVE-Sales"}}, client.RenameGroupCalls)
		assert.Equal(t, types.SecondarySkipped, results[0].Secondary)
	})

	t.Run("rename dry run reports the planned name", func(t *testing.T) {
		client := &mocks.MockClient{}
		executor := &Executor{Session: NewSession(client, "contoso", true, fixedClock), Action: types.ActionRename, RenamePlan: plan}
		results, err := executor.Execute(context.Background(), types.GroupsToEntities(groups[:1]))
		require.NoError(t, err)
		assert.Equal(t, "would-rename", results[0].Status)
		assert.Equal(t, "ARCHIVE-Sales", results[0].NewName)
		assert.Zero(t, client.MutatingCalls())
	})

	t.Run("delete", func(t *testing.T) {
		client := &mocks.MockClient{}
		executor := &Executor{Session: NewSession(client, "contoso", false, fixedClock), Action: types.ActionDelete, Secondary: confirm.SecondaryConfirmed}
		results, err := executor.Execute(context.Background(), types.GroupsToEntities(groups))
		require.NoError(t, err)
		assert.Equal(t, []string{"g1", "g2"}, client.DeleteGroupCalls)
		assert.Equal(t, "deleted", results[1].Status)
		assert.Empty(t, client.FindDirectoryDeviceCalls)
	})

	t.Run("device action on a group fails per item", func(t *testing.T) {
		client := &mocks.MockClient{}
		executor := &Executor{Session: NewSession(client, "contoso", false, fixedClock), Action: types.ActionRetire}
		results, err := executor.Execute(context.Background(), types.GroupsToEntities(groups[:1]))
		require.NoError(t, err)
		assert.Equal(t, types.PrimaryFailed, results[0].Primary)
	})
}

func TestExecutor_UnknownAction(t *testing.T) {
	executor := &Executor{Session: NewSession(&mocks.MockClient{}, "contoso", false, fixedClock), Action: types.ActionNone}
	_, err := executor.Execute(context.Background(), entities(device("d1", "")))
	assert.Error(t, err)
}
