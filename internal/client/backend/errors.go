package backend

import "fmt"

// AuthError reports a session or identity failure.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("auth %s: %v", e.Op, e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// ApiError reports a failure of the record API.
type ApiError struct {
	Op  string
	Err error
}

func (e *ApiError) Error() string { return fmt.Sprintf("api %s: %v", e.Op, e.Err) }
func (e *ApiError) Unwrap() error { return e.Err }

// StorageError reports a blob store failure.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}
func (e *StorageError) Unwrap() error { return e.Err }
