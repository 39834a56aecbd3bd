package ipc

// Commands understood by the daemon socket.
const (
	CommandStatus = "status"
	CommandReload = "reload"
)

type Request struct {
	Command string `json:"command"`
}

type Response struct {
	OK           bool   `json:"ok"`
	State        string `json:"state,omitempty"`
	PendingPaste bool   `json:"pending_paste,omitempty"`
	Session      string `json:"session,omitempty"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
}
