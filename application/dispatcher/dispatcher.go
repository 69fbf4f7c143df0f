// Package dispatcher classifies operation notifications from the monitored
// program and runs the authorization protocol for capability requests.
package dispatcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/reglet-dev/runguard/domain/entities"
	domainerrors "github.com/reglet-dev/runguard/domain/errors"
	"github.com/reglet-dev/runguard/domain/permission"
	"github.com/reglet-dev/runguard/domain/ports"
)

// Outcome is the result of handling one event.
type Outcome int

const (
	OutcomeIgnored            Outcome = iota // Not security relevant
	OutcomeInput                             // Console input, passed through
	OutcomeImport                            // Import began, next open suppressed
	OutcomeOpenImport                        // Open caused by an import
	OutcomeOpenProgram                       // Program reading its own source
	OutcomePermissionOK                      // Covered by an existing grant
	OutcomePermissionGranted                 // Approved by the operator
	OutcomeDenied                            // Refused, program terminated
	OutcomeIntegrityViolation                // Protected attribute reassigned
	OutcomeInterrupted                       // Operator interrupt
)

// String returns the string representation of an Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeInput:
		return "input"
	case OutcomeImport:
		return "import"
	case OutcomeOpenImport:
		return "open_import"
	case OutcomeOpenProgram:
		return "open_program"
	case OutcomePermissionOK:
		return "permission_ok"
	case OutcomePermissionGranted:
		return "permission_granted"
	case OutcomeDenied:
		return "denied"
	case OutcomeIntegrityViolation:
		return "integrity_violation"
	case OutcomeInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Dispatcher consumes the event stream of one monitored program.
type Dispatcher struct {
	config dispatcherConfig
	store  *permission.Store

	// mu serializes capability checks and import bookkeeping so that two
	// concurrent requests for the same resource cannot both prompt.
	mu      sync.Mutex
	imports int
}

// New creates a Dispatcher that owns store.
func New(store *permission.Store, opts ...Option) *Dispatcher {
	cfg := defaultDispatcherConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.programPath != "" {
		cfg.programPath = absPath(store.WorkingDirectory(), cfg.programPath)
	}
	return &Dispatcher{config: cfg, store: store}
}

// Subscribe registers the dispatcher as the sole subscriber of src.
func (d *Dispatcher) Subscribe(src ports.EventSource) {
	src.Subscribe(func(ctx context.Context, event entities.Event) error {
		_, err := d.Handle(ctx, event)
		return err
	})
}

// Interactive reports whether un-granted requests are put to the operator.
func (d *Dispatcher) Interactive() bool {
	return d.config.interactive
}

// Handle classifies a single event and, for capability requests, runs the
// authorization protocol. A terminal outcome is returned with its error
// after the terminator has been invoked.
func (d *Dispatcher) Handle(ctx context.Context, event entities.Event) (Outcome, error) {
	switch event.Kind {
	case entities.EventInput, entities.EventInputResult:
		// The prompt reads console input itself; checking it would recurse.
		return OutcomeInput, nil

	case entities.EventExceptHook:
		if event.Exception == entities.ExceptionInterrupt {
			err := &domainerrors.InterruptError{Exception: event.Exception}
			d.config.terminator.Terminate(domainerrors.ExitSignal, err)
			return OutcomeInterrupted, err
		}
		return OutcomeIgnored, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch event.Kind {
	case entities.EventSetAttr:
		if d.isProtected(event) {
			err := &domainerrors.IntegrityViolationError{Target: event.Target, Attr: event.Attr}
			d.config.logger.Warn("integrity violation", "target", event.Target, "attr", event.Attr)
			d.config.terminator.Terminate(err.ExitCode(), err)
			return OutcomeIntegrityViolation, err
		}
		return OutcomeIgnored, nil

	case entities.EventImport:
		d.imports++
		return OutcomeImport, nil

	case entities.EventOpen:
		return d.handleOpen(ctx, event)

	case entities.EventExec:
		return d.authorize(ctx, entities.NewCapabilityRequest(entities.ResourceRun, event.Path))

	case entities.EventEnvGet, entities.EventEnvSet, entities.EventEnvUnset:
		return d.authorize(ctx, entities.NewCapabilityRequest(entities.ResourceEnv, event.Name))

	case entities.EventConnect:
		addr := permission.JoinAddress(event.Host, event.Port)
		return d.authorize(ctx, entities.NewCapabilityRequest(entities.ResourceNet, addr))

	case entities.EventHostResolved:
		if d.config.memo != nil && event.Host != "" {
			d.config.memo.Record(event.Name, event.Host)
		}
		return OutcomeIgnored, nil

	default:
		return OutcomeIgnored, nil
	}
}

func (d *Dispatcher) handleOpen(ctx context.Context, event entities.Event) (Outcome, error) {
	if d.imports > 0 {
		d.imports--
		return OutcomeOpenImport, nil
	}

	path := absPath(d.store.WorkingDirectory(), event.Path)
	mode := event.Mode
	if mode == "" {
		mode = "r"
	}

	if path == d.config.programPath && mode == "r" {
		return OutcomeOpenProgram, nil
	}

	switch {
	case strings.Contains(mode, "r"):
		return d.authorize(ctx, entities.NewCapabilityRequest(entities.ResourceRead, path))
	case strings.ContainsAny(mode, "wax"):
		return d.authorize(ctx, entities.NewCapabilityRequest(entities.ResourceWrite, path))
	default:
		return OutcomeIgnored, nil
	}
}

// authorize runs the check / prompt / terminate protocol. Callers hold d.mu.
func (d *Dispatcher) authorize(ctx context.Context, req entities.CapabilityRequest) (Outcome, error) {
	logger := d.config.logger.With("class", req.Class.String(), "value", req.Value)

	if d.store.IsAllowed(req) {
		logger.Debug("capability allowed")
		d.config.observer.OnDecision(req, entities.DecisionAllowed)
		return OutcomePermissionOK, nil
	}

	if !d.config.interactive {
		return d.deny(logger, req, false)
	}

	granted, err := d.config.prompter.Prompt(ctx, ports.PromptRequest{
		Request: req,
		Display: d.display(req),
		Risk:    d.config.risk.AssessRequest(req),
	})
	if err != nil {
		logger.Warn("prompt failed, denying", "error", err)
		return d.deny(logger, req, true)
	}
	if !granted {
		return d.deny(logger, req, true)
	}

	d.store.Grant(req.Class, entities.ValueOf(req.Value))
	logger.Debug("capability granted interactively")
	d.config.observer.OnDecision(req, entities.DecisionGranted)
	return OutcomePermissionGranted, nil
}

func (d *Dispatcher) deny(logger *slog.Logger, req entities.CapabilityRequest, prompted bool) (Outcome, error) {
	err := &domainerrors.CapabilityDeniedError{Class: req.Class, Value: req.Value, Prompted: prompted}
	logger.Warn("capability denied", "prompted", prompted)
	d.config.observer.OnDecision(req, entities.DecisionDenied)
	d.config.terminator.Terminate(err.ExitCode(), err)
	return OutcomeDenied, err
}

// display annotates a network value with the hostname its address was
// resolved from, when known.
func (d *Dispatcher) display(req entities.CapabilityRequest) string {
	if req.Class != entities.ResourceNet || d.config.memo == nil {
		return req.Value
	}
	addr, err := permission.ParseAddress(req.Value)
	if err != nil {
		return req.Value
	}
	if host, ok := d.config.memo.Lookup(addr.Host); ok {
		return req.Value + " (" + host + ")"
	}
	return req.Value
}

func (d *Dispatcher) isProtected(event entities.Event) bool {
	if event.Target != entities.EnvironTarget {
		return false
	}
	_, ok := d.config.protected[event.Attr]
	return ok
}

func absPath(cwd, path string) string {
	if !filepath.IsAbs(path) && cwd != "" {
		path = filepath.Join(cwd, path)
	}
	return filepath.Clean(path)
}
