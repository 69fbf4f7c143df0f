package dispatcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/reglet-dev/runguard/domain/entities"
	"github.com/reglet-dev/runguard/domain/ports"
)

// dispatcherConfig holds configuration for the Dispatcher.
type dispatcherConfig struct {
	programPath string                 // Absolute path of the monitored program
	interactive bool                   // Prompt for un-granted requests instead of denying
	prompter    ports.Prompter         // Console collaborator
	terminator  ports.Terminator       // Hard termination primitive
	memo        ports.AddressMemo      // Optional address -> hostname memo
	logger      *slog.Logger           // Decision logging
	observer    ports.DecisionObserver // Invoked after every capability check
	risk        *entities.RiskAssessor // Risk level shown in prompts
	protected   map[string]struct{}    // Protected attributes of the environment view
}

func defaultDispatcherConfig() dispatcherConfig {
	return dispatcherConfig{
		interactive: false,
		prompter:    denyPrompter{},
		terminator:  panicTerminator{},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer:    NopObserver{},
		risk:        entities.NewRiskAssessor(),
		protected:   map[string]struct{}{},
	}
}

// Option configures the Dispatcher.
type Option func(*dispatcherConfig)

// WithProgramPath sets the path of the monitored program. Reading it with
// mode "r" is never checked.
func WithProgramPath(path string) Option {
	return func(c *dispatcherConfig) {
		c.programPath = path
	}
}

// WithInteractive enables or disables prompting. Default is false, which
// makes every un-granted request fatal.
func WithInteractive(enabled bool) Option {
	return func(c *dispatcherConfig) {
		c.interactive = enabled
	}
}

// WithPrompter sets the console collaborator used in interactive mode.
func WithPrompter(p ports.Prompter) Option {
	return func(c *dispatcherConfig) {
		c.prompter = p
	}
}

// WithTerminator sets the hard termination primitive.
func WithTerminator(t ports.Terminator) Option {
	return func(c *dispatcherConfig) {
		c.terminator = t
	}
}

// WithAddressMemo sets the memo consulted when displaying network prompts.
func WithAddressMemo(m ports.AddressMemo) Option {
	return func(c *dispatcherConfig) {
		c.memo = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *dispatcherConfig) {
		c.logger = l
	}
}

// WithObserver sets the decision observer.
func WithObserver(o ports.DecisionObserver) Option {
	return func(c *dispatcherConfig) {
		c.observer = o
	}
}

// WithRiskAssessor sets the assessor used to label prompts.
func WithRiskAssessor(r *entities.RiskAssessor) Option {
	return func(c *dispatcherConfig) {
		c.risk = r
	}
}

// WithProtectedAttributes sets the attributes of the environment view that
// the monitored program may never reassign.
func WithProtectedAttributes(attrs ...string) Option {
	return func(c *dispatcherConfig) {
		for _, a := range attrs {
			c.protected[a] = struct{}{}
		}
	}
}

// denyPrompter answers no to everything.
type denyPrompter struct{}

func (denyPrompter) IsInteractive() bool { return false }

func (denyPrompter) Prompt(_ context.Context, _ ports.PromptRequest) (bool, error) {
	return false, nil
}

// panicTerminator is used when no terminator is configured. Returning from
// a termination would let the denied operation proceed.
type panicTerminator struct{}

func (panicTerminator) Terminate(code int, err error) {
	panic(fmt.Sprintf("dispatcher: terminate(%d) without a terminator: %v", code, err))
}
