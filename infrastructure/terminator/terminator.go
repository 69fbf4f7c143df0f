// Package terminator ends the process when a capability is refused.
package terminator

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	domainerrors "github.com/reglet-dev/runguard/domain/errors"
	"github.com/reglet-dev/runguard/domain/ports"
)

// Ensure implementation satisfies the interface.
var _ ports.Terminator = (*ProcessTerminator)(nil)

// Option configures a ProcessTerminator.
type Option func(*ProcessTerminator)

// WithWriter sets where the termination message is written. Default is stderr.
func WithWriter(w io.Writer) Option {
	return func(t *ProcessTerminator) {
		t.out = w
	}
}

// WithExitFunc replaces os.Exit.
func WithExitFunc(fn func(int)) Option {
	return func(t *ProcessTerminator) {
		t.exit = fn
	}
}

// WithLogger sets the logger that records the structured termination
// reason. Default discards.
func WithLogger(l *slog.Logger) Option {
	return func(t *ProcessTerminator) {
		t.logger = l
	}
}

// WithBeforeExit registers a function run just before exiting, for example
// to flush logs or stop a metrics server.
func WithBeforeExit(fn func()) Option {
	return func(t *ProcessTerminator) {
		t.before = append(t.before, fn)
	}
}

// ProcessTerminator exits the process directly. Deferred functions and
// recover() in the monitored program never run.
type ProcessTerminator struct {
	out    io.Writer
	logger *slog.Logger
	exit   func(int)
	before []func()
}

// New creates a ProcessTerminator.
func New(opts ...Option) *ProcessTerminator {
	t := &ProcessTerminator{
		out:    os.Stderr,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		exit:   os.Exit,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Terminate logs the reason as an ErrorDetail, prints err unless it is nil
// or silent, runs the before-exit hooks and exits with code.
func (t *ProcessTerminator) Terminate(code int, err error) {
	if err != nil {
		t.logger.Info("program terminated", "exit_code", code, "reason", domainerrors.ToErrorDetail(err))
		if !domainerrors.IsSilent(err) {
			_, _ = fmt.Fprintln(t.out, err.Error())
		}
	}
	for _, fn := range t.before {
		fn()
	}
	t.exit(code)
}
