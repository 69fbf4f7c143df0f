package host

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/reglet-dev/runguard/domain/entities"
	"github.com/reglet-dev/runguard/domain/ports"
	"github.com/reglet-dev/runguard/infrastructure/environ"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/experimental/sysfs"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// ErrNoSubscriber is returned by Run when nothing has subscribed.
var ErrNoSubscriber = errors.New("host: no event subscriber")

// Ensure implementation satisfies the interface.
var _ ports.EventSource = (*Runner)(nil)

// Runner runs one monitored WebAssembly program at a time.
type Runner struct {
	config  runnerConfig
	runtime wazero.Runtime
	environ *environ.Environ

	mu      sync.Mutex
	handler ports.EventHandler
	refusal error              // first refused operation of the current run
	cancel  context.CancelFunc // aborts the current run
}

// NewRunner creates a wazero runtime with WASI and the host module.
func NewRunner(ctx context.Context, opts ...Option) (*Runner, error) {
	cfg := defaultRunnerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Runner{config: cfg}
	r.environ = environ.New(
		environ.WithVariables(cfg.environment),
		environ.WithObserver(r.emit))

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	r.runtime = rt

	if err := r.registerHostFunctions(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host functions: %w", err)
	}
	return r, nil
}

// Subscribe implements ports.EventSource.
func (r *Runner) Subscribe(handler ports.EventHandler) {
	r.mu.Lock()
	r.handler = handler
	r.mu.Unlock()
}

// Environ returns the environment view served to the guest.
func (r *Runner) Environ() *environ.Environ {
	return r.environ
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// Run opens, compiles and runs the program at path with args. The program's
// own open is reported first. It returns the guest's exit code; a refused
// operation aborts the guest and is returned as the error.
func (r *Runner) Run(ctx context.Context, path string, args ...string) (int, error) {
	r.mu.Lock()
	if r.handler == nil {
		r.mu.Unlock()
		return 0, ErrNoSubscriber
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.refusal = nil
	r.mu.Unlock()
	defer cancel()

	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve program path: %w", err)
	}
	if err := r.emit(ctx, entities.Event{Kind: entities.EventOpen, Path: abs, Mode: "r"}); err != nil {
		return 1, err
	}
	wasmBytes, err := os.ReadFile(abs)
	if err != nil {
		return 0, fmt.Errorf("failed to read program: %w", err)
	}

	if r.config.relayInterrupt {
		stop := r.relayInterrupts(ctx)
		defer stop()
	}

	compiled, err := r.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return 0, fmt.Errorf("failed to compile module: %w", err)
	}
	defer compiled.Close(ctx)

	guestFS := &guardedFS{
		FS:     sysfs.DirFS(r.config.fsRoot),
		root:   r.config.fsRoot,
		runner: r,
		ctx:    ctx,
	}
	fsConfig := wazero.NewFSConfig().(sysfs.FSConfig).WithSysFSMount(guestFS, "/")

	modConfig := wazero.NewModuleConfig().
		WithName(filepath.Base(abs)).
		WithArgs(append([]string{filepath.Base(abs)}, args...)...).
		WithStdin(r.config.stdin).
		WithStdout(r.config.stdout).
		WithStderr(r.config.stderr).
		WithFSConfig(fsConfig).
		WithSysWalltime().
		WithSysNanotime().
		WithRandSource(rand.Reader)

	mod, runErr := r.runtime.InstantiateModule(ctx, compiled, modConfig)
	if mod != nil {
		defer mod.Close(ctx)
	}

	if refusal := r.takeRefusal(); refusal != nil {
		return 1, refusal
	}

	var exitErr *sys.ExitError
	if errors.As(runErr, &exitErr) {
		return int(exitErr.ExitCode()), nil
	}
	if runErr != nil {
		return 1, fmt.Errorf("failed to run module: %w", runErr)
	}
	return 0, nil
}

// emit reports one operation to the subscriber. A refusal is remembered and
// aborts the current run.
func (r *Runner) emit(ctx context.Context, event entities.Event) error {
	if r.config.onEvent != nil {
		r.config.onEvent(event)
	}

	r.mu.Lock()
	handler := r.handler
	r.mu.Unlock()
	if handler == nil {
		return ErrNoSubscriber
	}

	err := handler(ctx, event)
	if err != nil {
		r.config.logger.Debug("operation refused", "kind", string(event.Kind), "error", err)
		r.refuse(err)
	}
	return err
}

func (r *Runner) refuse(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refusal == nil {
		r.refusal = err
	}
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Runner) takeRefusal() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.refusal
	r.refusal = nil
	r.cancel = nil
	return err
}

// relayInterrupts reports SIGINT as an interrupt notification until stop is
// called.
func (r *Runner) relayInterrupts(ctx context.Context) (stop func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	done := make(chan struct{})

	go func() {
		select {
		case <-sigs:
			_ = r.emit(context.WithoutCancel(ctx), entities.Event{
				Kind:      entities.EventExceptHook,
				Exception: entities.ExceptionInterrupt,
			})
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}
