package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/runguard/application/config"
	"github.com/reglet-dev/runguard/application/dispatcher"
	"github.com/reglet-dev/runguard/application/validation"
	"github.com/reglet-dev/runguard/domain/entities"
	"github.com/reglet-dev/runguard/domain/permission"
	"github.com/reglet-dev/runguard/host"
	"github.com/reglet-dev/runguard/infrastructure/environ"
	"github.com/reglet-dev/runguard/infrastructure/grantstore"
	"github.com/reglet-dev/runguard/infrastructure/metrics"
	"github.com/reglet-dev/runguard/infrastructure/prompter"
	"github.com/reglet-dev/runguard/infrastructure/resolver"
	"github.com/reglet-dev/runguard/infrastructure/terminator"
	runguardlog "github.com/reglet-dev/runguard/log"
)

// runOptions are the flags of the run command.
type runOptions struct {
	grants      entities.GrantConfig
	grantsFile  string
	saveGrants  string
	noPrompt    bool
	metricsAddr string
}

func newRunCmd(env cliEnv) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [flags] PROGRAM.wasm [ARGS...]",
		Short: "Run a WebAssembly program with capability checks",
		Example: `  runguard run --allow-read=/tmp --allow-env=HOME,PATH prog.wasm
  runguard run -A prog.wasm arg1 arg2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(cmd.Context(), env, opts, args[0], args[1:])
		},
	}

	fs := cmd.Flags()
	fs.SetInterspersed(false)
	addGrantFlags(fs, &opts.grants)
	fs.StringVar(&opts.grantsFile, "grants", "", "load initial grants from a YAML file")
	fs.StringVar(&opts.saveGrants, "save-grants", "", "save the final grants to a YAML file after a normal run")
	fs.BoolVar(&opts.noPrompt, "no-prompt", false, "deny anything not granted instead of prompting (also "+config.EnvNoPrompt+")")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the program runs")
	return cmd
}

func runProgram(ctx context.Context, env cliEnv, opts *runOptions, program string, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	settings, err := config.LoadSettings(env.getenv)
	if err != nil {
		return err
	}
	logger := runguardlog.NewLogger(
		runguardlog.WithLevel(settings.LogLevel),
		runguardlog.WithFormat(settings.LogFormat),
		runguardlog.WithWriter(env.stderr))

	grants, err := initialGrants(opts)
	if err != nil {
		return err
	}
	store := permission.NewStore()
	store.Apply(grants)
	logger.Debug("initial grants applied", "rules", store.Len())

	recorder := metrics.NewRecorder()
	var cleanup cleanupList
	defer cleanup.run()
	if opts.metricsAddr != "" {
		stop, err := serveMetrics(opts.metricsAddr, recorder, logger)
		if err != nil {
			return err
		}
		cleanup.add(stop)
	}

	memo := resolver.NewMemo()
	runner, err := host.NewRunner(ctx,
		host.WithStdio(env.stdin, env.stdout, env.stderr),
		host.WithEnvironment(env.environ),
		host.WithResolver(resolver.NewRecordingResolver(nil, memo)),
		host.WithLogger(logger),
		host.WithEventHook(func(ev entities.Event) { recorder.ObserveEvent(ev.Kind) }))
	if err != nil {
		return err
	}
	defer func() { _ = runner.Close(context.Background()) }()

	console := prompter.NewCliPrompter(env.stdin, env.stderr)
	interactive := !opts.noPrompt && !settings.NoPrompt && console.IsInteractive()

	d := dispatcher.New(store,
		dispatcher.WithProgramPath(program),
		dispatcher.WithInteractive(interactive),
		dispatcher.WithPrompter(console),
		dispatcher.WithTerminator(terminator.New(
			terminator.WithWriter(env.stderr),
			terminator.WithLogger(logger),
			terminator.WithExitFunc(env.exit),
			terminator.WithBeforeExit(cleanup.run))),
		dispatcher.WithAddressMemo(memo),
		dispatcher.WithLogger(logger),
		dispatcher.WithObserver(dispatcher.MultiObserver{&dispatcher.LogObserver{Logger: logger}, recorder}),
		dispatcher.WithProtectedAttributes(environ.ProtectedAttributes()...))
	d.Subscribe(runner)

	start := time.Now()
	code, err := runner.Run(ctx, program, args...)
	recorder.ObserveRun(time.Since(start))
	if err != nil {
		return err
	}

	if opts.saveGrants != "" && code == 0 {
		if err := grantstore.NewFileStore(grantstore.WithPath(opts.saveGrants)).Save(store.Snapshot()); err != nil {
			return err
		}
		logger.Info("grants saved", "path", opts.saveGrants)
	}
	if code != 0 {
		return exitStatus(code)
	}
	return nil
}

// initialGrants merges the grants file, if any, into the flag grants and
// validates the result.
func initialGrants(opts *runOptions) (*entities.GrantConfig, error) {
	grants := opts.grants.Clone()
	if opts.grantsFile != "" {
		if _, err := os.Stat(opts.grantsFile); err != nil {
			return nil, fmt.Errorf("grants file: %w", err)
		}
		validator, err := validation.NewGrantsValidator()
		if err != nil {
			return nil, err
		}
		fromFile, err := grantstore.NewFileStore(
			grantstore.WithPath(opts.grantsFile),
			grantstore.WithValidator(validator)).Load()
		if err != nil {
			return nil, err
		}
		grants.Merge(fromFile)
	}
	if err := config.ValidateGrantConfig(grants); err != nil {
		return nil, err
	}
	return grants, nil
}

// serveMetrics serves recorder on addr until the returned stop is called.
func serveMetrics(addr string, recorder *metrics.Recorder, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on metrics address: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// cleanupList runs registered functions once, in reverse order. It runs
// both on normal return and before a hard termination.
type cleanupList struct {
	mu   sync.Mutex
	fns  []func()
	done bool
}

func (c *cleanupList) add(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fns = append(c.fns, fn)
}

func (c *cleanupList) run() {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.done = true
	fns := c.fns
	c.mu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
