package ports

import (
	"context"
)

// DNSResolver resolves hostnames for the monitored program.
type DNSResolver interface {
	// LookupHost resolves IP addresses for a given hostname.
	// Returns A and AAAA records as string slices.
	LookupHost(ctx context.Context, host string) ([]string, error)
}
