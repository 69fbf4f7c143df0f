package host

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"os/exec"

	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/runguard/domain/entities"
	runguardlog "github.com/reglet-dev/runguard/log"
)

// execRequest is the payload of the exec host function.
type execRequest struct {
	Path string   `json:"path"`
	Args []string `json:"args,omitempty"`
}

// guestReportable lists the kinds a guest may report through audit. The
// host observes every other kind itself.
var guestReportable = map[entities.EventKind]bool{
	entities.EventConnect:     true,
	entities.EventInput:       true,
	entities.EventInputResult: true,
	entities.EventSetAttr:     true,
}

// Results of the audit host function.
const (
	auditOK         uint32 = 0
	auditMalformed  uint32 = 1
	auditNotAllowed uint32 = 2
)

// registerHostFunctions instantiates the host module imported by guests.
func (r *Runner) registerHostFunctions(ctx context.Context) error {
	_, err := r.runtime.NewHostModuleBuilder(r.config.moduleName).
		NewFunctionBuilder().WithFunc(r.hostAudit).Export("audit").
		NewFunctionBuilder().WithFunc(r.hostEnvGet).Export("env_get").
		NewFunctionBuilder().WithFunc(r.hostEnvSet).Export("env_set").
		NewFunctionBuilder().WithFunc(r.hostEnvUnset).Export("env_unset").
		NewFunctionBuilder().WithFunc(r.hostResolve).Export("resolve").
		NewFunctionBuilder().WithFunc(r.hostExec).Export("exec").
		NewFunctionBuilder().WithFunc(r.hostLog).Export("log").
		Instantiate(ctx)
	return err
}

// abort stops the guest after a refused operation.
func (r *Runner) abort(ctx context.Context, mod api.Module) {
	_ = mod.CloseWithExitCode(ctx, 1)
}

// hostAudit reports a guest-described event. Returns auditOK when allowed,
// auditMalformed for a bad payload and auditNotAllowed for a kind the guest
// may not report; a refusal aborts the guest.
func (r *Runner) hostAudit(ctx context.Context, mod api.Module, packed uint64) uint32 {
	data, err := readGuest(mod, packed, r.config.maxRequestSize)
	if err != nil {
		r.config.logger.Error("audit: bad payload", "error", err)
		return auditMalformed
	}
	var event entities.Event
	if err := json.Unmarshal(data, &event); err != nil {
		r.config.logger.Error("audit: bad event", "error", err)
		return auditMalformed
	}
	if !guestReportable[event.Kind] {
		r.config.logger.Warn("audit: kind not reportable by guest", "kind", string(event.Kind), "module", mod.Name())
		return auditNotAllowed
	}
	if err := r.emit(ctx, event); err != nil {
		r.abort(ctx, mod)
	}
	return auditOK
}

// hostEnvGet returns the packed value of a variable, or 0 when unset.
func (r *Runner) hostEnvGet(ctx context.Context, mod api.Module, name uint64) uint64 {
	key, err := readGuest(mod, name, r.config.maxRequestSize)
	if err != nil {
		r.config.logger.Error("env_get: bad payload", "error", err)
		return 0
	}
	value, ok, err := r.environ.Get(ctx, string(key))
	if err != nil {
		r.abort(ctx, mod)
		return 0
	}
	if !ok {
		return 0
	}
	out, err := writeGuest(ctx, mod, []byte(value))
	if err != nil {
		r.config.logger.Error("env_get: write failed", "error", err)
		return 0
	}
	return out
}

func (r *Runner) hostEnvSet(ctx context.Context, mod api.Module, name, value uint64) uint32 {
	key, err := readGuest(mod, name, r.config.maxRequestSize)
	if err != nil {
		return 1
	}
	val, err := readGuest(mod, value, r.config.maxRequestSize)
	if err != nil {
		return 1
	}
	if err := r.environ.Set(ctx, string(key), string(val)); err != nil {
		r.abort(ctx, mod)
	}
	return 0
}

func (r *Runner) hostEnvUnset(ctx context.Context, mod api.Module, name uint64) uint32 {
	key, err := readGuest(mod, name, r.config.maxRequestSize)
	if err != nil {
		return 1
	}
	if err := r.environ.Unset(ctx, string(key)); err != nil {
		r.abort(ctx, mod)
	}
	return 0
}

// hostResolve resolves a hostname and returns the packed JSON array of
// addresses, or 0 on failure. Each address is reported as resolved.
func (r *Runner) hostResolve(ctx context.Context, mod api.Module, name uint64) uint64 {
	host, err := readGuest(mod, name, r.config.maxRequestSize)
	if err != nil {
		return 0
	}
	resolver := r.config.resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	addrs, err := resolver.LookupHost(ctx, string(host))
	if err != nil {
		r.config.logger.Debug("resolve failed", "host", string(host), "error", err)
		return 0
	}
	for _, addr := range addrs {
		event := entities.Event{Kind: entities.EventHostResolved, Name: string(host), Host: addr}
		if err := r.emit(ctx, event); err != nil {
			r.abort(ctx, mod)
			return 0
		}
	}
	data, err := json.Marshal(addrs)
	if err != nil {
		return 0
	}
	out, err := writeGuest(ctx, mod, data)
	if err != nil {
		r.config.logger.Error("resolve: write failed", "error", err)
		return 0
	}
	return out
}

// hostExec runs a host process once allowed. Returns its exit code, or -1
// when it could not be started.
func (r *Runner) hostExec(ctx context.Context, mod api.Module, packed uint64) int32 {
	data, err := readGuest(mod, packed, r.config.maxRequestSize)
	if err != nil {
		return -1
	}
	var req execRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Path == "" {
		return -1
	}
	if err := r.emit(ctx, entities.Event{Kind: entities.EventExec, Path: req.Path, Args: req.Args}); err != nil {
		r.abort(ctx, mod)
		return -1
	}

	cmd := exec.CommandContext(ctx, req.Path, req.Args...) //nolint:gosec // G204: allowed by the run capability check above
	cmd.Stdin = r.config.stdin
	cmd.Stdout = r.config.stdout
	cmd.Stderr = r.config.stderr
	err = cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return int32(exitErr.ExitCode()) //nolint:gosec // G115: exit codes fit in 32 bits
	default:
		r.config.logger.Debug("exec failed", "path", req.Path, "error", err)
		return -1
	}
}

// hostLog replays a guest log record through the runner's logger.
func (r *Runner) hostLog(ctx context.Context, mod api.Module, packed uint64) {
	data, err := readGuest(mod, packed, r.config.maxRequestSize)
	if err != nil {
		return
	}
	runguardlog.Replay(ctx, r.config.logger, data, slog.String("module", mod.Name()))
}
