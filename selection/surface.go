// Package selection lets the operator pick which candidates to act on.
package selection

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/mdmdirector/devicesweep/log"
	"github.com/mdmdirector/devicesweep/prompt"
	"github.com/mdmdirector/devicesweep/types"
)

// Surface presents candidates and returns the subset the operator picked.
// The returned entities are the same values that were passed in, in
// candidate order. An empty result means nothing was selected.
type Surface interface {
	Select(ctx context.Context, candidates []types.Entity) ([]types.Entity, error)
}

// Probe picks the grid when both ends are terminals, the indexed text
// surface otherwise
func Probe(stdin, stdout *os.File, forceText bool, p *prompt.Prompter) Surface {
	if !forceText && isTerminal(stdin) && isTerminal(stdout) {
		log.Debug("Using interactive grid selection")
		return &GridSurface{In: stdin, Out: stdout}
	}
	log.Debug("Using indexed text selection")
	return &IndexedSurface{Prompter: p}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// pick returns candidates whose mask entry is set, keeping candidate order
func pick(candidates []types.Entity, mask []bool) []types.Entity {
	var out []types.Entity
	for i, c := range candidates {
		if i < len(mask) && mask[i] {
			out = append(out, c)
		}
	}
	return out
}
