package host

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// packPtrLen packs a pointer and length into a single i64.
// Upper 32 bits: pointer, lower 32 bits: length.
func packPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << 32) | uint64(length)
}

// unpackPtrLen unpacks a pointer and length from a packed i64.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)           //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF) //nolint:gosec // G115: Packed format stores 32-bit values
	return ptr, length
}

// readGuest copies a packed ptr+len region out of guest memory.
func readGuest(mod api.Module, packed uint64, limit uint32) ([]byte, error) {
	ptr, length := unpackPtrLen(packed)
	if length > limit {
		return nil, fmt.Errorf("request size %d exceeds maximum %d bytes", length, limit)
	}
	data, ok := mod.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("failed to read %d bytes at %#x from guest memory", length, ptr)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// writeGuest allocates memory in the guest and writes data to it.
// Returns packed ptr+len.
func writeGuest(ctx context.Context, mod api.Module, data []byte) (uint64, error) {
	allocate := mod.ExportedFunction("allocate")
	if allocate == nil {
		return 0, fmt.Errorf("guest module missing 'allocate' export")
	}

	results, err := allocate.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to call guest allocate: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("allocate returned no results")
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit

	if !mod.Memory().Write(ptr, data) {
		return 0, fmt.Errorf("failed to write response to guest memory")
	}
	return packPtrLen(ptr, uint32(len(data))), nil //nolint:gosec // G115: Data length is bounded by guest memory
}
