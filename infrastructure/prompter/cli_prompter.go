// Package prompter asks the operator on the console whether an un-granted
// capability request may proceed.
package prompter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/reglet-dev/runguard/domain/ports"
	"golang.org/x/term"
)

// Ensure implementation satisfies the interface.
var _ ports.Prompter = (*CliPrompter)(nil)

const question = "Allow? [y/n] (y = yes, allow; n = no, deny) > "

// promptConfig holds configuration for the CliPrompter.
type promptConfig struct {
	subject    string // Who is asking, shown in the warning line
	clearLines *bool  // nil means clear only when out is a terminal
}

func defaultPromptConfig() promptConfig {
	return promptConfig{subject: "Program"}
}

// Option configures the CliPrompter.
type Option func(*promptConfig)

// WithSubject sets the name shown as the requester in the warning line.
func WithSubject(subject string) Option {
	return func(c *promptConfig) {
		c.subject = subject
	}
}

// WithClearLines forces clearing (or not) of the prompt once answered.
func WithClearLines(enabled bool) Option {
	return func(c *promptConfig) {
		c.clearLines = &enabled
	}
}

// CliPrompter implements ports.Prompter for CLI environments.
type CliPrompter struct {
	config promptConfig
	in     io.Reader // shared with the monitored program, never buffered
	out    io.Writer

	bold   lipgloss.Style
	italic lipgloss.Style
	risk   lipgloss.Style
}

// NewCliPrompter creates a new CliPrompter.
func NewCliPrompter(in io.Reader, out io.Writer, opts ...Option) *CliPrompter {
	cfg := defaultPromptConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	renderer := lipgloss.NewRenderer(out)
	return &CliPrompter{
		config: cfg,
		in:     in,
		out:    out,
		bold:   renderer.NewStyle().Bold(true),
		italic: renderer.NewStyle().Italic(true),
		risk:   renderer.NewStyle().Faint(true),
	}
}

// IsInteractive checks if the input is a terminal.
func (p *CliPrompter) IsInteractive() bool {
	return isTerminal(p.in)
}

// Prompt writes the request and reads answers until one is y or n.
// Returns io.EOF if input ends before an answer.
func (p *CliPrompter) Prompt(ctx context.Context, req ports.PromptRequest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	class := req.Request.Class.String()
	display := req.Display
	if display == "" {
		display = req.Request.Value
	}

	_, _ = fmt.Fprintln(p.out, "⚠️ ", p.bold.Render(fmt.Sprintf("%s requests %s to %q.", p.config.subject, class, display)))
	_, _ = fmt.Fprintln(p.out, p.italic.Render(fmt.Sprintf("Run again with %s to bypass this prompt.", req.Request.Class.Flag())))
	_, _ = fmt.Fprintln(p.out, p.risk.Render("Risk: "+req.Risk.String()))
	lines := 3

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		_, _ = fmt.Fprint(p.out, p.bold.Render(question))
		lines++

		answer, err := readLine(p.in)
		if err != nil && (!errors.Is(err, io.EOF) || answer == "") {
			if errors.Is(err, io.EOF) {
				return false, io.EOF
			}
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y":
			p.finish(lines, fmt.Sprintf("✅ Granted %s.", class))
			return true, nil
		case "n":
			p.finish(lines, fmt.Sprintf("❌ Denied %s.", class))
			return false, nil
		default:
			_, _ = fmt.Fprintln(p.out, "Unrecognized option.")
			lines++
		}
	}
}

// readLine reads up to and including '\n' one byte at a time, so nothing
// past the answer is taken from in.
func readLine(in io.Reader) (string, error) {
	var line []byte
	var b [1]byte
	for {
		n, err := in.Read(b[:])
		if n > 0 {
			line = append(line, b[0])
			if b[0] == '\n' {
				return string(line), nil
			}
		}
		if err != nil {
			return string(line), err
		}
	}
}

// finish replaces the prompt with a one-line summary.
func (p *CliPrompter) finish(lines int, summary string) {
	if p.shouldClear() {
		_, _ = io.WriteString(p.out, ansi.CursorUp(lines)+ansi.EraseScreenBelow)
	}
	_, _ = fmt.Fprintln(p.out, summary)
}

func (p *CliPrompter) shouldClear() bool {
	if p.config.clearLines != nil {
		return *p.config.clearLines
	}
	return isTerminal(p.out)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
