package models

// StateKind tags the active AppState variant.
type StateKind int

const (
	StateSignedOut StateKind = iota
	StateLoading
	StateDataAvailable
	StateError
)

func (k StateKind) String() string {
	switch k {
	case StateLoading:
		return "loading"
	case StateDataAvailable:
		return "data_available"
	case StateError:
		return "error"
	default:
		return "signed_out"
	}
}

// AppState is what the view should render. Notes is only meaningful for
// StateDataAvailable and Err only for StateError. Values handed to
// observers own their Notes slice.
type AppState struct {
	Kind  StateKind
	Notes []Note
	Err   error
}

func SignedOutState() AppState {
	return AppState{Kind: StateSignedOut}
}

func LoadingState() AppState {
	return AppState{Kind: StateLoading}
}

func DataAvailableState(notes []Note) AppState {
	return AppState{Kind: StateDataAvailable, Notes: notes}
}

func ErrorState(err error) AppState {
	return AppState{Kind: StateError, Err: err}
}
