package core

// commandKind describes what the transport asks the hub to do.
type commandKind int

const (
	// commandRegister adds a freshly accepted session.
	commandRegister commandKind = iota
	// commandDispatch handles one inbound frame of a session.
	commandDispatch
	// commandUnregister runs the disconnect cascade for a closed session.
	commandUnregister
	// commandSnapshot copies the room listing for read-only callers.
	commandSnapshot
)

// command travels through the hub mailbox. A single mailbox keeps the
// commands of one session in submission order.
type command struct {
	kind     commandKind
	client   *Client
	frame    []byte
	snapshot chan<- []RoomSnapshot
}
