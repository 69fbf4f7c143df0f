package ports

// Terminator ends the monitored program. Production implementations never
// return; the program cannot intercept or recover from the call.
type Terminator interface {
	// Terminate exits with code. A nil err or a silent error prints nothing.
	Terminate(code int, err error)
}
