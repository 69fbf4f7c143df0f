package entities

// EventKind tags an operation notification reported by the interception
// substrate. Kinds the dispatcher does not know are ignored.
type EventKind string

const (
	EventInput        EventKind = "input"          // Program requests console input
	EventInputResult  EventKind = "input/result"   // Console input completed
	EventSetAttr      EventKind = "object.setattr" // Attribute reassignment on a tracked object
	EventOpen         EventKind = "open"           // File open
	EventExec         EventKind = "exec"           // Process exec
	EventEnvGet       EventKind = "env.get"        // Environment read
	EventEnvSet       EventKind = "env.set"        // Environment write
	EventEnvUnset     EventKind = "env.unset"      // Environment delete
	EventConnect      EventKind = "socket.connect" // Outbound network connect
	EventHostResolved EventKind = "dns.resolve"    // Hostname resolved to an address
	EventImport       EventKind = "import"         // Dependency module import begins
	EventExceptHook   EventKind = "excepthook"     // Uncaught exception reached the top level
)

// ExceptionInterrupt is the exception type reported when the operator
// interrupts the program (Ctrl-C).
const ExceptionInterrupt = "KeyboardInterrupt"

// EnvironTarget names the process-wide environment view in setattr events.
const EnvironTarget = "environ"

// Event is a single operation notification. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind EventKind `json:"kind"`

	// open, exec
	Path string   `json:"path,omitempty"`
	Mode string   `json:"mode,omitempty"`
	Args []string `json:"args,omitempty"`

	// env.*, dns.resolve (hostname)
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`

	// socket.connect, dns.resolve (address)
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// object.setattr
	Target string `json:"target,omitempty"`
	Attr   string `json:"attr,omitempty"`

	// excepthook
	Exception string `json:"exception,omitempty"`

	// import
	Module string `json:"module,omitempty"`
}
