package selection

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mdmdirector/devicesweep/log"
	"github.com/mdmdirector/devicesweep/prompt"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
)

// DefaultAttempts is how many unreadable answers are tolerated
const DefaultAttempts = 3

// IndexedSurface prints a numbered table and reads "all" or a comma
// separated list of row numbers
type IndexedSurface struct {
	Prompter *prompt.Prompter
	Attempts int
}

func (s *IndexedSurface) Select(ctx context.Context, candidates []types.Entity) ([]types.Entity, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	s.Prompter.Printf("%s\n", RenderTable(candidates))

	attempts := s.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		answer, err := s.Prompter.Ask("Rows to act on (e.g. 1,3,5 or all, blank for none)", "")
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "IndexedSurface:Ask")
		}
		mask, err := ParseIndices(answer, len(candidates))
		if err != nil {
			s.Prompter.Printf("%v\n", err)
			continue
		}
		return pick(candidates, mask), nil
	}

	log.Warnf("No valid selection after %d attempts, nothing selected", attempts)
	return nil, nil
}

// ParseIndices turns "all" or "1, 3,5" into a selection mask over n rows.
// Numbers outside 1..n are ignored and repeats select once. Anything that is
// not a whole number is an error.
func ParseIndices(answer string, n int) ([]bool, error) {
	mask := make([]bool, n)
	answer = strings.TrimSpace(answer)
	if strings.EqualFold(answer, "all") {
		for i := range mask {
			mask[i] = true
		}
		return mask, nil
	}

	for _, token := range strings.Split(answer, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		idx, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("%q is not a row number", token)
		}
		if idx < 1 || idx > n {
			log.Debugf("Ignoring out of range row %d", idx)
			continue
		}
		mask[idx-1] = true
	}
	return mask, nil
}

// RenderTable draws the candidates with a leading row number column
func RenderTable(candidates []types.Entity) string {
	if len(candidates) == 0 {
		return ""
	}
	headers := append([]string{"#"}, candidates[0].Columns()...)
	rows := make([][]string, 0, len(candidates))
	for i, c := range candidates {
		rows = append(rows, append([]string{strconv.Itoa(i + 1)}, c.Values()...))
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))).
		Headers(headers...).
		Rows(rows...).
		String()
}
