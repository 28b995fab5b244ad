// Package prompt reads operator answers from a line oriented terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mdmdirector/devicesweep/utils"
	"github.com/pkg/errors"
)

// Prompter asks questions on out and reads answers from in
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Printf writes to the prompter output
func (p *Prompter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

// Line reads one trimmed line. io.EOF is only returned when the input ended
// before anything was typed.
func (p *Prompter) Line() (string, error) {
	line, err := p.raw()
	return strings.TrimSpace(line), err
}

// raw reads one line without its line ending and keeps any other whitespace
func (p *Prompter) raw() (string, error) {
	line, err := p.in.ReadString('\n')
	line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
	if err != nil {
		if err == io.EOF && line != "" {
			return line, nil
		}
		return line, err
	}
	return line, nil
}

// Ask shows label and returns the answer, or def when the answer is blank
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		p.Printf("%s [%s]: ", label, def)
	} else {
		p.Printf("%s: ", label)
	}
	answer, err := p.Line()
	if err != nil && err != io.EOF {
		return "", errors.Wrap(err, "Ask")
	}
	if answer == "" {
		return def, err
	}
	return answer, nil
}

// AskExact shows label and returns the answer exactly as typed, without
// trimming. Confirmation phrases are compared against this.
func (p *Prompter) AskExact(label string) (string, error) {
	p.Printf("%s: ", label)
	answer, err := p.raw()
	if err != nil && err != io.EOF {
		return "", errors.Wrap(err, "AskExact")
	}
	return answer, err
}

// AskList splits a comma separated answer
func (p *Prompter) AskList(label, def string) ([]string, error) {
	answer, err := p.Ask(label, def)
	return utils.SplitList(answer), err
}

// AskInt re-asks until the answer is a non-negative integer
func (p *Prompter) AskInt(label string, def int) (int, error) {
	for {
		answer, err := p.Ask(label, strconv.Itoa(def))
		if err != nil {
			return def, err
		}
		n, convErr := strconv.Atoi(answer)
		if convErr == nil && n >= 0 {
			return n, nil
		}
		p.Printf("%q is not a whole number of days\n", answer)
	}
}
