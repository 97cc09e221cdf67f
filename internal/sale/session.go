package sale

// SessionState is the wallet connection state.
type SessionState int

const (
	Disconnected SessionState = iota
	Connecting
	Connected
)

func (s SessionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "disconnected"
}

// Session is a copy of the controller's wallet session. Account is set only
// while State is Connected.
type Session struct {
	State   SessionState
	Account string
}

// IsConnected reports whether a signing account is available.
func (s Session) IsConnected() bool { return s.State == Connected }
