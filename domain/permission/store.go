// Package permission holds the set of granted capabilities and answers
// matching queries with class-specific semantics.
package permission

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/reglet-dev/runguard/domain/entities"
)

// storeConfig holds configuration for the Store.
type storeConfig struct {
	cwd string // Working directory for relative path resolution
}

func defaultStoreConfig() storeConfig {
	cwd, _ := os.Getwd() // Best effort; empty cwd leaves relative paths relative
	return storeConfig{cwd: cwd}
}

// StoreOption configures the Store.
type StoreOption func(*storeConfig)

// WithWorkingDirectory sets the directory relative Read/Write paths are
// resolved against. Resolution happens at grant time, not at check time.
func WithWorkingDirectory(cwd string) StoreOption {
	return func(c *storeConfig) {
		c.cwd = cwd
	}
}

// Store is the set of granted capability rules. Rules are only ever added.
// It is safe for concurrent use.
type Store struct {
	config storeConfig

	mu    sync.RWMutex
	rules map[entities.GrantRule]struct{}
}

// NewStore creates an empty Store.
func NewStore(opts ...StoreOption) *Store {
	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{
		config: cfg,
		rules:  make(map[entities.GrantRule]struct{}),
	}
}

// WorkingDirectory returns the directory relative paths are resolved against.
func (s *Store) WorkingDirectory() string {
	return s.config.cwd
}

// Grant adds a rule. Read and Write paths are made absolute and cleaned;
// Net values keep "host:port" when a port is present and are reduced to the
// bare host otherwise. Granting an existing rule is a no-op.
func (s *Store) Grant(class entities.ResourceClass, value entities.CapabilityValue) {
	rule := s.normalize(class, value)

	s.mu.Lock()
	s.rules[rule] = struct{}{}
	s.mu.Unlock()
}

// Apply grants every rule of an initial grant configuration.
func (s *Store) Apply(cfg *entities.GrantConfig) {
	for _, rule := range cfg.Rules() {
		s.Grant(rule.Class, rule.Value)
	}
}

// IsAllowed reports whether a granted rule covers the request.
func (s *Store) IsAllowed(req entities.CapabilityRequest) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.has(req.Class, entities.All) {
		return true
	}

	switch req.Class {
	case entities.ResourceEnv, entities.ResourceRun:
		return s.matchExact(req)
	case entities.ResourceRead, entities.ResourceWrite:
		return s.matchPrefix(req)
	case entities.ResourceNet:
		return s.matchNet(req)
	default:
		return false
	}
}

// Len returns the number of distinct rules.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Snapshot returns the current grants as a GrantConfig with sorted values.
func (s *Store) Snapshot() *entities.GrantConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := &entities.GrantConfig{}
	for rule := range s.rules {
		sel := cfg.Selection(rule.Class)
		if sel == nil {
			continue
		}
		if rule.Value.IsAll() {
			sel.All = true
			continue
		}
		sel.Values = append(sel.Values, rule.Value.Token())
	}
	for _, c := range entities.ResourceClasses() {
		sel := cfg.Selection(c)
		if sel.All {
			sel.Values = nil
		}
		sort.Strings(sel.Values)
	}
	return cfg
}

func (s *Store) has(class entities.ResourceClass, value entities.CapabilityValue) bool {
	_, ok := s.rules[entities.GrantRule{Class: class, Value: value}]
	return ok
}

// matchExact implements Env and Run: only the exact value matches.
func (s *Store) matchExact(req entities.CapabilityRequest) bool {
	return s.has(req.Class, entities.ValueOf(req.Value))
}

// matchPrefix implements Read and Write. A grant matches when it is a plain
// string prefix of the normalized request path, so a grant for "/tmp" also
// matches "/tmpfile". This is not a path containment check.
func (s *Store) matchPrefix(req entities.CapabilityRequest) bool {
	path := s.absPath(req.Value)
	for rule := range s.rules {
		if rule.Class != req.Class || rule.Value.IsAll() {
			continue
		}
		if strings.HasPrefix(path, rule.Value.Token()) {
			return true
		}
	}
	return false
}

// matchNet implements Net: a host-only grant matches any port on that host,
// a host:port grant matches only that pair.
func (s *Store) matchNet(req entities.CapabilityRequest) bool {
	if addr, err := ParseAddress(req.Value); err == nil {
		if s.has(entities.ResourceNet, entities.ValueOf(addr.Host)) {
			return true
		}
	}
	return s.has(entities.ResourceNet, entities.ValueOf(req.Value))
}

func (s *Store) normalize(class entities.ResourceClass, value entities.CapabilityValue) entities.GrantRule {
	if value.IsAll() {
		return entities.GrantRule{Class: class, Value: value}
	}

	token := value.Token()
	switch class {
	case entities.ResourceRead, entities.ResourceWrite:
		token = s.absPath(token)
	case entities.ResourceNet:
		if addr, err := ParseAddress(token); err == nil {
			token = addr.String()
		}
	}
	return entities.GrantRule{Class: class, Value: entities.ValueOf(token)}
}

func (s *Store) absPath(path string) string {
	if !filepath.IsAbs(path) && s.config.cwd != "" {
		path = filepath.Join(s.config.cwd, path)
	}
	return filepath.Clean(path)
}
