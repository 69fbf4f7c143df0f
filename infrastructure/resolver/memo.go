// Package resolver resolves hostnames for the monitored program and
// remembers which hostname each address came from.
package resolver

import (
	"sync"

	"github.com/reglet-dev/runguard/domain/ports"
)

// Ensure implementation satisfies the interface.
var _ ports.AddressMemo = (*Memo)(nil)

// Memo is an in-memory AddressMemo. The latest hostname recorded for an
// address wins.
type Memo struct {
	mu    sync.RWMutex
	hosts map[string]string
}

// NewMemo creates an empty Memo.
func NewMemo() *Memo {
	return &Memo{hosts: make(map[string]string)}
}

// Record remembers that addr was resolved from host.
func (m *Memo) Record(host, addr string) {
	if host == "" || addr == "" || host == addr {
		return
	}
	m.mu.Lock()
	m.hosts[addr] = host
	m.mu.Unlock()
}

// Lookup returns the hostname addr was resolved from.
func (m *Memo) Lookup(addr string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	host, ok := m.hosts[addr]
	return host, ok
}
