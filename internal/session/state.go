package session

// State is the session lifecycle state. Denied is terminal for the
// rejected identity; Denied and sign-out both return to Unknown.
type State int

const (
	StateUnknown State = iota
	StateAuthenticating
	StateDenied
	StatePendingConsent
	StateActive
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateDenied:
		return "denied"
	case StatePendingConsent:
		return "pending_consent"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}
