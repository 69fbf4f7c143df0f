package host

import (
	"io"
	"log/slog"
	"os"

	"github.com/reglet-dev/runguard/domain/entities"
	"github.com/reglet-dev/runguard/domain/ports"
)

// DefaultMaxRequestSize limits payloads read from guest memory.
const DefaultMaxRequestSize = 1 << 20

// runnerConfig holds configuration for the Runner.
type runnerConfig struct {
	moduleName     string               // Host module name imported by guests
	fsRoot         string               // Host directory mounted at the guest's "/"
	stdin          io.Reader            // Guest stdin
	stdout         io.Writer            // Guest stdout
	stderr         io.Writer            // Guest stderr
	environment    []string             // KEY=VALUE pairs served through env_get
	resolver       ports.DNSResolver    // Backs the resolve host function
	logger         *slog.Logger         // Runner and guest log output
	relayInterrupt bool                 // Report SIGINT as an interrupt notification
	maxRequestSize uint32               // Limit for payloads read from guest memory
	onEvent        func(entities.Event) // Called for every notification, before the subscriber
}

func defaultRunnerConfig() runnerConfig {
	return runnerConfig{
		moduleName:     "runguard",
		fsRoot:         "/",
		stdin:          os.Stdin,
		stdout:         os.Stdout,
		stderr:         os.Stderr,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		relayInterrupt: true,
		maxRequestSize: DefaultMaxRequestSize,
	}
}

// Option configures the Runner.
type Option func(*runnerConfig)

// WithModuleName sets the host module name (default: "runguard").
func WithModuleName(name string) Option {
	return func(c *runnerConfig) {
		c.moduleName = name
	}
}

// WithFSRoot sets the host directory mounted at the guest's "/".
// Default is "/", so guest paths equal host paths.
func WithFSRoot(dir string) Option {
	return func(c *runnerConfig) {
		c.fsRoot = dir
	}
}

// WithStdio sets the guest's standard streams.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(c *runnerConfig) {
		c.stdin = stdin
		c.stdout = stdout
		c.stderr = stderr
	}
}

// WithEnvironment sets the variables visible through env_get, as KEY=VALUE
// pairs. The guest's WASI environment is always empty.
func WithEnvironment(pairs []string) Option {
	return func(c *runnerConfig) {
		c.environment = pairs
	}
}

// WithResolver sets the resolver behind the resolve host function.
func WithResolver(r ports.DNSResolver) Option {
	return func(c *runnerConfig) {
		c.resolver = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *runnerConfig) {
		c.logger = l
	}
}

// WithInterruptRelay enables or disables reporting SIGINT. Default is true.
func WithInterruptRelay(enabled bool) Option {
	return func(c *runnerConfig) {
		c.relayInterrupt = enabled
	}
}

// WithMaxRequestSize sets the maximum request size from guest memory.
func WithMaxRequestSize(size uint32) Option {
	return func(c *runnerConfig) {
		c.maxRequestSize = size
	}
}

// WithEventHook registers fn to see every notification, for example to
// count them.
func WithEventHook(fn func(entities.Event)) Option {
	return func(c *runnerConfig) {
		c.onEvent = fn
	}
}
