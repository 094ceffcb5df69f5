package session

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompts shown before destructive edits.
const (
	DeletePropertyPrompt  = "Are you sure you want to delete this property?"
	DeleteArrayItemPrompt = "Are you sure you want to delete this array item?"
)

// Confirmer approves or declines a destructive edit.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) (bool, error) {
	return f(prompt)
}

var (
	// AlwaysConfirm approves every edit.
	AlwaysConfirm Confirmer = ConfirmFunc(func(string) (bool, error) { return true, nil })
	// NeverConfirm declines every edit.
	NeverConfirm Confirmer = ConfirmFunc(func(string) (bool, error) { return false, nil })
)

// PromptConfirmer asks on Out and reads the answer from In. Only "y" and
// "yes" approve; end of input declines.
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// Confirm writes prompt and waits for one line of input.
func (p *PromptConfirmer) Confirm(prompt string) (bool, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	if _, err := fmt.Fprintf(p.Out, "%s [y/N]: ", prompt); err != nil {
		return false, err
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
