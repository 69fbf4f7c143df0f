package resolver

import (
	"context"
	"net"

	"github.com/reglet-dev/runguard/domain/ports"
)

// Ensure implementation satisfies the interface.
var _ ports.DNSResolver = (*RecordingResolver)(nil)

// RecordingResolver resolves through an underlying resolver and records
// every returned address in a memo.
type RecordingResolver struct {
	next ports.DNSResolver
	memo ports.AddressMemo
}

// NewRecordingResolver wraps next. A nil next uses the system resolver.
func NewRecordingResolver(next ports.DNSResolver, memo ports.AddressMemo) *RecordingResolver {
	if next == nil {
		next = net.DefaultResolver
	}
	return &RecordingResolver{next: next, memo: memo}
}

// LookupHost resolves host and records each address.
func (r *RecordingResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	addrs, err := r.next.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}
	for _, addr := range addrs {
		r.memo.Record(host, addr)
	}
	return addrs, nil
}
