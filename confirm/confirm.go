// Package confirm gates destructive actions behind typed confirmation phrases.
package confirm

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mdmdirector/devicesweep/log"
	"github.com/mdmdirector/devicesweep/prompt"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
)

// SecondaryPhrase confirms deletion of the directory device objects
const SecondaryPhrase = "DELETE ENTRA"

// State of the confirmation exchange
type State int

const (
	AwaitingActionChoice State = iota
	AwaitingPrimaryConfirm
	AwaitingSecondaryConfirm
	Confirmed
	Aborted
)

func (s State) String() string {
	switch s {
	case AwaitingActionChoice:
		return "awaiting-action-choice"
	case AwaitingPrimaryConfirm:
		return "awaiting-primary-confirm"
	case AwaitingSecondaryConfirm:
		return "awaiting-secondary-confirm"
	case Confirmed:
		return "confirmed"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}

// Secondary is what the operator decided about the directory deletion
type Secondary int

const (
	SecondaryNotRequested Secondary = iota
	SecondaryConfirmed
	SecondaryDeclined
)

// Request describes what is about to happen
type Request struct {
	// Choices in prompt order; the first code is 1
	Choices []types.ActionKind
	// Default is used when the choice answer is blank
	Default types.ActionKind
	// Preset skips the choice prompt when set
	Preset types.ActionKind
	// RenameAvailable must be set for Rename to be offered
	RenameAvailable bool
	// Count of selected entities
	Count              int
	SecondaryRequested bool
	DryRun             bool
}

// Decision is the terminal outcome of a confirmation exchange
type Decision struct {
	State     State
	Action    types.ActionKind
	Secondary Secondary
	Reason    string
}

// Proceed is true only for a confirmed decision
func (d Decision) Proceed() bool {
	return d.State == Confirmed
}

type machine struct {
	p        *prompt.Prompter
	req      Request
	decision Decision
	choices  []types.ActionKind
}

// Run walks the operator through action choice and confirmation phrases.
// Aborting is not an error; errors are only returned for unreadable input.
func Run(p *prompt.Prompter, req Request) (Decision, error) {
	m := &machine{p: p, req: req, decision: Decision{State: AwaitingActionChoice}}
	for _, c := range req.Choices {
		if c == types.ActionRename && !req.RenameAvailable {
			continue
		}
		m.choices = append(m.choices, c)
	}

	for m.decision.State != Confirmed && m.decision.State != Aborted {
		var err error
		switch m.decision.State {
		case AwaitingActionChoice:
			err = m.chooseAction()
		case AwaitingPrimaryConfirm:
			err = m.confirmPrimary()
		case AwaitingSecondaryConfirm:
			err = m.confirmSecondary()
		}
		if err != nil {
			return Decision{State: Aborted, Reason: "input error"}, err
		}
	}

	log.Debugf("Confirmation finished in state %v: %v", m.decision.State, m.decision.Reason)
	return m.decision, nil
}

func (m *machine) abort(reason string) {
	m.decision.State = Aborted
	m.decision.Reason = reason
}

func (m *machine) offered(kind types.ActionKind) bool {
	for _, c := range m.choices {
		if c == kind {
			return true
		}
	}
	return false
}

func (m *machine) chooseAction() error {
	if m.req.Preset != types.ActionNone {
		if !m.offered(m.req.Preset) {
			m.abort(fmt.Sprintf("action %v is not available here", m.req.Preset))
			return nil
		}
		m.decision.Action = m.req.Preset
		m.decision.State = AwaitingPrimaryConfirm
		return nil
	}

	for i, c := range m.choices {
		marker := ""
		if c == m.req.Default {
			marker = " (default)"
		}
		m.p.Printf("  %d/%s  %s%s\n", i+1, c.Spec().Code, c, marker)
	}
	answer, err := m.p.Ask("Action", "")
	if err != nil && err != io.EOF {
		return errors.Wrap(err, "chooseAction")
	}
	if err == io.EOF {
		m.abort("no action chosen")
		return nil
	}

	kind, ok := m.resolveChoice(answer)
	if !ok {
		m.abort(fmt.Sprintf("unknown action code %q", answer))
		return nil
	}
	m.decision.Action = kind
	m.decision.State = AwaitingPrimaryConfirm
	return nil
}

func (m *machine) resolveChoice(answer string) (types.ActionKind, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return m.req.Default, m.offered(m.req.Default)
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(m.choices) {
			return m.choices[n-1], true
		}
		return types.ActionNone, false
	}
	for _, c := range m.choices {
		if strings.EqualFold(answer, c.Spec().Code) {
			return c, true
		}
	}
	return types.ActionNone, false
}

func (m *machine) confirmPrimary() error {
	spec := m.decision.Action.Spec()
	if m.req.DryRun {
		m.p.Printf("Dry run: %v would apply to %d item(s), nothing will be changed\n", spec.Name, m.req.Count)
		m.afterPrimary()
		return nil
	}

	m.p.Printf("%v will be applied to %d item(s). This cannot be undone.\n", spec.Name, m.req.Count)
	answer, err := m.p.AskExact(fmt.Sprintf("Type %s to continue", spec.Phrase))
	if err != nil && err != io.EOF {
		return errors.Wrap(err, "confirmPrimary")
	}
	if answer != spec.Phrase {
		m.abort("primary confirmation phrase not entered")
		return nil
	}
	m.afterPrimary()
	return nil
}

func (m *machine) afterPrimary() {
	if m.req.SecondaryRequested && m.decision.Action != types.ActionRename {
		m.decision.State = AwaitingSecondaryConfirm
		return
	}
	m.decision.Secondary = SecondaryNotRequested
	m.decision.State = Confirmed
	m.decision.Reason = "confirmed"
}

func (m *machine) confirmSecondary() error {
	m.decision.State = Confirmed
	if m.req.DryRun {
		m.decision.Secondary = SecondaryConfirmed
		m.decision.Reason = "dry run"
		return nil
	}

	answer, err := m.p.AskExact(fmt.Sprintf("Type %s to also delete the directory device objects", SecondaryPhrase))
	if err != nil && err != io.EOF {
		return errors.Wrap(err, "confirmSecondary")
	}
	if answer == SecondaryPhrase {
		m.decision.Secondary = SecondaryConfirmed
		m.decision.Reason = "confirmed"
		return nil
	}
	m.p.Printf("Directory deletion will not be attempted\n")
	m.decision.Secondary = SecondaryDeclined
	m.decision.Reason = "secondary confirmation phrase not entered"
	return nil
}
