// Package environ provides the environment variable view handed to the
// monitored program. Every read and write is reported to an observer before
// it takes effect, so a refused access never happens.
package environ

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/reglet-dev/runguard/domain/entities"
	"github.com/reglet-dev/runguard/domain/ports"
)

// Internal attributes of the view. Reassigning either would let the program
// read the environment without being observed.
const (
	AttrLookup   = "lookup"
	AttrObserver = "observer"
)

// ProtectedAttributes lists the attributes the program may never reassign.
func ProtectedAttributes() []string {
	return []string{AttrLookup, AttrObserver}
}

// LookupFunc reads a variable from the backing store.
type LookupFunc func(name string) (string, bool)

// Option configures an Environ.
type Option func(*Environ)

// WithVariables seeds the view from KEY=VALUE pairs, as returned by
// os.Environ. Entries without "=" are skipped.
func WithVariables(pairs []string) Option {
	return func(e *Environ) {
		for _, kv := range pairs {
			if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
				e.vars[k] = v
			}
		}
	}
}

// WithObserver sets the observer notified of every access.
func WithObserver(h ports.EventHandler) Option {
	return func(e *Environ) {
		e.observer = h
	}
}

// Environ is an injectable environment accessor. It is safe for concurrent
// use.
type Environ struct {
	mu       sync.RWMutex
	vars     map[string]string
	lookup   LookupFunc
	observer ports.EventHandler
}

// New creates an empty Environ.
func New(opts ...Option) *Environ {
	e := &Environ{vars: make(map[string]string)}
	e.lookup = e.fromMap
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromOS creates an Environ seeded with the current process environment.
func FromOS(opts ...Option) *Environ {
	return New(append([]Option{WithVariables(os.Environ())}, opts...)...)
}

// Get returns the value of name once the observer allows the read.
func (e *Environ) Get(ctx context.Context, name string) (string, bool, error) {
	if err := e.notify(ctx, entities.Event{Kind: entities.EventEnvGet, Name: name}); err != nil {
		return "", false, err
	}
	e.mu.RLock()
	lookup := e.lookup
	e.mu.RUnlock()
	v, ok := lookup(name)
	return v, ok, nil
}

// Set assigns name once the observer allows the write.
func (e *Environ) Set(ctx context.Context, name, value string) error {
	if err := e.notify(ctx, entities.Event{Kind: entities.EventEnvSet, Name: name, Value: value}); err != nil {
		return err
	}
	e.mu.Lock()
	e.vars[name] = value
	e.mu.Unlock()
	return nil
}

// Unset removes name once the observer allows the write.
func (e *Environ) Unset(ctx context.Context, name string) error {
	if err := e.notify(ctx, entities.Event{Kind: entities.EventEnvUnset, Name: name}); err != nil {
		return err
	}
	e.mu.Lock()
	delete(e.vars, name)
	e.mu.Unlock()
	return nil
}

// ReplaceLookup swaps the function that reads variables. The change is
// reported as an attribute reassignment first.
func (e *Environ) ReplaceLookup(ctx context.Context, fn LookupFunc) error {
	if err := e.notifySetAttr(ctx, AttrLookup); err != nil {
		return err
	}
	e.mu.Lock()
	e.lookup = fn
	e.mu.Unlock()
	return nil
}

// ReplaceObserver swaps the observer. The change is reported to the current
// observer first.
func (e *Environ) ReplaceObserver(ctx context.Context, h ports.EventHandler) error {
	if err := e.notifySetAttr(ctx, AttrObserver); err != nil {
		return err
	}
	e.mu.Lock()
	e.observer = h
	e.mu.Unlock()
	return nil
}

// Pairs returns the variables as sorted KEY=VALUE pairs without notifying
// the observer. It is meant for the substrate when it starts the program.
func (e *Environ) Pairs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]string, 0, len(e.vars))
	for k, v := range e.vars {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func (e *Environ) fromMap(name string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vars[name]
	return v, ok
}

func (e *Environ) notifySetAttr(ctx context.Context, attr string) error {
	return e.notify(ctx, entities.Event{
		Kind:   entities.EventSetAttr,
		Target: entities.EnvironTarget,
		Attr:   attr,
	})
}

func (e *Environ) notify(ctx context.Context, event entities.Event) error {
	e.mu.RLock()
	observer := e.observer
	e.mu.RUnlock()
	if observer == nil {
		return nil
	}
	return observer(ctx, event)
}
