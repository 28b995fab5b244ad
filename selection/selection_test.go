package selection

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mdmdirector/devicesweep/prompt"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(names ...string) []types.Entity {
	var out []types.Entity
	for _, n := range names {
		out = append(out, &types.ManagedDevice{ID: "id-" + n, DeviceName: n, OperatingSystem: "Windows"})
	}
	return out
}

func entityIDs(entities []types.Entity) []string {
	out := []string{}
	for _, e := range entities {
		out = append(out, e.EntityID())
	}
	return out
}

func TestParseIndices(t *testing.T) {
	testCases := []struct {
		name     string
		answer   string
		n        int
		expected []bool
		wantErr  bool
	}{
		{"all", "ALL", 3, []bool{true, true, true}, false},
		{"list", "3, 1", 3, []bool{true, false, true}, false},
		{"duplicates", "2,2,2", 3, []bool{false, true, false}, false},
		{"out of range ignored", "1,99,0,-4", 3, []bool{true, false, false}, false},
		{"blank", "", 2, []bool{false, false}, false},
		{"not a number", "1,two", 3, nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mask, err := ParseIndices(tc.answer, tc.n)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, mask)
		})
	}
}

func TestIndexedSurface_Select(t *testing.T) {
	t.Run("out of range index against one candidate", func(t *testing.T) {
		var out bytes.Buffer
		s := &IndexedSurface{Prompter: prompt.New(strings.NewReader("1,99\n"), &out)}
		selected, err := s.Select(context.Background(), candidates("A"))
		require.NoError(t, err)
		assert.Equal(t, []string{"id-A"}, entityIDs(selected))
		assert.Contains(t, out.String(), "Device")
	})

	t.Run("order follows candidates", func(t *testing.T) {
		s := &IndexedSurface{Prompter: prompt.New(strings.NewReader("3,1\n"), io.Discard)}
		selected, err := s.Select(context.Background(), candidates("A", "B", "C"))
		require.NoError(t, err)
		assert.Equal(t, []string{"id-A", "id-C"}, entityIDs(selected))
	})

	t.Run("reprompts on bad tokens", func(t *testing.T) {
		var out bytes.Buffer
		s := &IndexedSurface{Prompter: prompt.New(strings.NewReader("x\n2\n"), &out)}
		selected, err := s.Select(context.Background(), candidates("A", "B"))
		require.NoError(t, err)
		assert.Equal(t, []string{"id-B"}, entityIDs(selected))
		assert.Contains(t, out.String(), `"x" is not a row number`)
	})

	t.Run("gives up after attempts", func(t *testing.T) {
		s := &IndexedSurface{Prompter: prompt.New(strings.NewReader("x\ny\nz\n1\n"), io.Discard)}
		selected, err := s.Select(context.Background(), candidates("A"))
		require.NoError(t, err)
		assert.Empty(t, selected)
	})

	t.Run("eof selects nothing", func(t *testing.T) {
		s := &IndexedSurface{Prompter: prompt.New(strings.NewReader(""), io.Discard)}
		selected, err := s.Select(context.Background(), candidates("A"))
		require.NoError(t, err)
		assert.Empty(t, selected)
	})
}

func press(m gridModel, keys ...tea.KeyMsg) gridModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(gridModel)
	}
	return m
}

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyAll   = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}
)

func TestGridModel(t *testing.T) {
	list := candidates("A", "B", "C")

	t.Run("toggle and accept", func(t *testing.T) {
		m := press(newGridModel("", list), keySpace, keyDown, keyDown, keySpace, keyEnter)
		assert.True(t, m.done)
		assert.Equal(t, []string{"id-A", "id-C"}, entityIDs(m.selected()))
		assert.Same(t, list[0], m.selected()[0])
	})

	t.Run("toggle all twice clears", func(t *testing.T) {
		m := press(newGridModel("", list), keyAll)
		assert.Equal(t, 3, m.count())
		m = press(m, keyAll, keyEnter)
		assert.Empty(t, m.selected())
	})

	t.Run("cancel discards checks", func(t *testing.T) {
		m := press(newGridModel("", list), keyAll, keyEsc)
		assert.True(t, m.cancelled)
		assert.Empty(t, m.selected())
	})

	t.Run("cursor stays in bounds", func(t *testing.T) {
		m := press(newGridModel("", list), keyDown, keyDown, keyDown, keyDown)
		assert.Equal(t, 2, m.cursor)
	})

	t.Run("view lists rows", func(t *testing.T) {
		view := newGridModel("Pick", list).View()
		assert.Contains(t, view, "Pick")
		assert.Contains(t, view, "B")
		assert.Contains(t, view, "0/3 selected")
	})
}
