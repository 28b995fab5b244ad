package filter

import (
	"context"
	"net/http"
	"testing"

	"github.com/mdmdirector/devicesweep/mdm"
	"github.com/mdmdirector/devicesweep/mdm/mocks"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGroups(names ...string) []*types.Group {
	var out []*types.Group
	for _, n := range names {
		out = append(out, &types.Group{ID: "id-" + n, DisplayName: n})
	}
	return out
}

func groupNames(groups []*types.Group) []string {
	out := []string{}
	for _, g := range groups {
		out = append(out, g.DisplayName)
	}
	return out
}

func TestGroups_NameModes(t *testing.T) {
	groups := testGroups("TEMP-Sales", "temp-hr", "Finance-Temp", "Engineering")

	testCases := []struct {
		name     string
		criteria types.GroupCriteria
		expected []string
	}{
		{"prefix ignores case", types.GroupCriteria{Mode: types.MatchPrefix, Text: "temp-"}, []string{"TEMP-Sales", "temp-hr"}},
		{"substring ignores case", types.GroupCriteria{Mode: types.MatchSubstring, Text: "TEMP"}, []string{"TEMP-Sales", "temp-hr", "Finance-Temp"}},
		{"pattern", types.GroupCriteria{Mode: types.MatchPattern, Text: `^temp-(sales|hr)$`}, []string{"TEMP-Sales", "temp-hr"}},
		{"pattern lookahead", types.GroupCriteria{Mode: types.MatchPattern, Text: `^(?!temp).*`}, []string{"Finance-Temp", "Engineering"}},
		{"no match", types.GroupCriteria{Mode: types.MatchPrefix, Text: "zzz"}, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := Groups(context.Background(), groups, tc.criteria, &mocks.MockClient{})
			assert.Equal(t, tc.expected, groupNames(outcome.Eligible))
			assert.Empty(t, outcome.Warnings)
		})
	}
}

func TestGroups_MalformedPattern(t *testing.T) {
	groups := testGroups("a", "b")
	outcome := Groups(context.Background(), groups, types.GroupCriteria{Mode: types.MatchPattern, Text: "("}, &mocks.MockClient{})

	assert.Empty(t, outcome.Eligible)
	require.Len(t, outcome.Warnings, 2)
	assert.Equal(t, "id-a", outcome.Warnings[0].EntityID)
	assert.Contains(t, outcome.Warnings[0].Message, "invalid pattern")
}

func TestGroups_Empty(t *testing.T) {
	groups := testGroups("empty", "full", "forbidden")
	client := &mocks.MockClient{
		ListGroupMembersFunc: func(ctx context.Context, groupID string) ([]types.DirectoryObject, error) {
			switch groupID {
			case "id-full":
				return []types.DirectoryObject{{ID: "u1"}, {ID: "u2"}}, nil
			case "id-forbidden":
				return nil, errors.Wrap(&mdm.ServiceError{StatusCode: http.StatusForbidden, Code: "Authorization_RequestDenied"}, "ListGroupMembers")
			}
			return nil, nil
		},
	}

	outcome := Groups(context.Background(), groups, types.GroupCriteria{Mode: types.MatchEmpty}, client)

	assert.Equal(t, []string{"empty"}, groupNames(outcome.Eligible))
	assert.Equal(t, []string{"id-empty", "id-full", "id-forbidden"}, client.ListGroupMembersCalls)

	require.Len(t, outcome.Warnings, 1, "an unreadable group is kept out of the candidates")
	assert.Equal(t, "forbidden", outcome.Warnings[0].EntityName)

	require.NotNil(t, groups[0].MemberCount)
	assert.Equal(t, 0, *groups[0].MemberCount)
	require.NotNil(t, groups[1].MemberCount)
	assert.Equal(t, 2, *groups[1].MemberCount)
	assert.Nil(t, groups[2].MemberCount)
}

func TestPlanRenames(t *testing.T) {
	groups := testGroups("TEMP-Sales", "temp-hr", "Engineering")

	t.Run("prefix", func(t *testing.T) {
		plan, warnings, err := PlanRenames(groups, RenameRule{Mode: types.MatchPrefix, From: "temp-", To: "ARCHIVE-"})
		require.NoError(t, err)
		assert.Equal(t, types.RenamePlan{"id-TEMP-Sales": "ARCHIVE-Sales", "id-temp-hr": "ARCHIVE-hr"}, plan)
		require.Len(t, warnings, 1)
		assert.Equal(t, "id-Engineering", warnings[0].EntityID)
	})

	t.Run("substring replaces literally", func(t *testing.T) {
		plan, _, err := PlanRenames(groups, RenameRule{Mode: types.MatchSubstring, From: "TEMP", To: "$old"})
		require.NoError(t, err)
		assert.Equal(t, "$old-Sales", plan["id-TEMP-Sales"])
		assert.Equal(t, "$old-hr", plan["id-temp-hr"])
	})

	t.Run("pattern substitution", func(t *testing.T) {
		plan, _, err := PlanRenames(groups, RenameRule{Mode: types.MatchPattern, From: `^temp-(\w+)$`, To: "Legacy ($1)"})
		require.NoError(t, err)
		assert.Equal(t, "Legacy (Sales)", plan["id-TEMP-Sales"])
		assert.Equal(t, "Legacy (hr)", plan["id-temp-hr"])
		assert.Equal(t, []string{"TEMP-Sales", "temp-hr"}, groupNames(FilterPlanned(groups, plan)))
	})

	t.Run("empty result is dropped", func(t *testing.T) {
		plan, warnings, err := PlanRenames(testGroups("temp"), RenameRule{Mode: types.MatchPrefix, From: "temp", To: ""})
		require.NoError(t, err)
		assert.Empty(t, plan)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0].Message, "empty name")
	})

	t.Run("rule errors", func(t *testing.T) {
		_, _, err := PlanRenames(groups, RenameRule{Mode: types.MatchPrefix})
		assert.True(t, errors.Is(err, ErrEmptyRenameRule))

		_, _, err = PlanRenames(groups, RenameRule{Mode: types.MatchPattern, From: "("})
		assert.Error(t, err)
	})
}
