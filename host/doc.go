// Package host is the interception substrate. It runs a WebAssembly (WASI)
// program with wazero and reports every sensitive operation the program
// attempts to a single subscriber before the operation takes effect.
//
// Operations are observed at three points:
//
//   - file opens, creations and removals, through a filesystem mounted in
//     the guest that reports before delegating to the host directory
//   - host functions in the "runguard" module: env_get, env_set, env_unset,
//     resolve, exec, audit and log. audit only accepts the kinds the host
//     cannot observe itself: socket.connect, input, input/result and
//     object.setattr
//   - SIGINT, relayed as an interrupt notification
//
// Host functions exchange data through the guest's linear memory as a packed
// i64 (upper 32 bits pointer, lower 32 bits length). Responses are written to
// memory obtained from the guest's "allocate" export.
package host
