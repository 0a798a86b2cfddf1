package models

// AuthStatus is the tri-state outcome reported by the identity provider.
type AuthStatus int

const (
	AuthSignedOut AuthStatus = iota
	AuthSignedIn
	AuthSessionExpired
)

func (s AuthStatus) String() string {
	switch s {
	case AuthSignedIn:
		return "signed_in"
	case AuthSessionExpired:
		return "session_expired"
	default:
		return "signed_out"
	}
}
