package main

import (
	"testing"

	"github.com/mdmdirector/devicesweep/director"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	kind, err := parseAction("")
	require.NoError(t, err)
	assert.Equal(t, types.ActionNone, kind)

	kind, err = parseAction("retire")
	require.NoError(t, err)
	assert.Equal(t, types.ActionRetire, kind)

	_, err = parseAction("explode")
	assert.Error(t, err)
}

func TestDeviceCriteria(t *testing.T) {
	o := &deviceOptions{states: "noncompliant, unknown", osPrefixes: "Windows,iOS", owner: "Company", minAgeDays: 45}
	criteria, err := o.criteria()
	require.NoError(t, err)
	assert.Equal(t, []types.ComplianceState{types.ComplianceNoncompliant, types.ComplianceUnknown}, criteria.ComplianceStates)
	assert.Equal(t, []string{"Windows", "iOS"}, criteria.OSPrefixes)
	assert.Equal(t, types.OwnerCompany, criteria.Owner)
	assert.Equal(t, 45, criteria.MinAgeDays)

	_, err = (&deviceOptions{states: "broken"}).criteria()
	assert.Error(t, err)
	_, err = (&deviceOptions{owner: "shared"}).criteria()
	assert.Error(t, err)
	_, err = (&deviceOptions{minAgeDays: -1}).criteria()
	assert.Error(t, err)
}

func TestGroupCriteria(t *testing.T) {
	criteria, rule, err := (&groupOptions{match: "prefix", text: "temp-", renameTo: "ARCHIVE-"}).criteria()
	require.NoError(t, err)
	assert.Equal(t, types.GroupCriteria{Mode: types.MatchPrefix, Text: "temp-"}, criteria)
	require.NotNil(t, rule)
	assert.Equal(t, "temp-", rule.From)

	_, rule, err = (&groupOptions{match: "empty"}).criteria()
	require.NoError(t, err)
	assert.Nil(t, rule)

	_, _, err = (&groupOptions{match: "substring"}).criteria()
	assert.Error(t, err)
	_, _, err = (&groupOptions{match: "fuzzy", text: "x"}).criteria()
	assert.Error(t, err)
	_, _, err = (&groupOptions{match: "empty", renameTo: "x"}).criteria()
	assert.Error(t, err)
}

func TestFinish(t *testing.T) {
	code := exitOK
	err := finish(nil, director.ErrEmptyInventory, &code)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permissions")

	report := &director.Report{Stage: director.StageCompleted, Results: []types.ActionResult{{Primary: types.PrimaryFailed}}}
	require.NoError(t, finish(report, nil, &code))
	assert.Equal(t, exitFailures, code)
}
