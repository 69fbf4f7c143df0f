// Command runguard runs a WebAssembly program under a capability gate:
// environment, network, filesystem and subprocess access must be granted
// by flags or approved interactively.
package main

import (
	"fmt"
	"os"

	domainerrors "github.com/reglet-dev/runguard/domain/errors"
)

func main() {
	if err := newRootCmd(defaultEnv()).Execute(); err != nil {
		if !domainerrors.IsSilent(err) {
			fmt.Fprintln(os.Stderr, "runguard:", err)
		}
		os.Exit(domainerrors.ExitCode(err))
	}
}

// exitStatus carries the monitored program's own non-zero exit code.
type exitStatus int

func (e exitStatus) Error() string { return fmt.Sprintf("program exited with code %d", int(e)) }

func (e exitStatus) ExitCode() int { return int(e) }

func (e exitStatus) Silent() bool { return true }
