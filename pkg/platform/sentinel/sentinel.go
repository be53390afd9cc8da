package sentinel

import "errors"

// Infrastructure facts returned (optionally wrapped) by stores. Services translate
// them into domain errors; they never reach a transport directly.
//
//   - ErrNotFound: no record matched the key
//   - ErrConflict: a uniqueness constraint rejected the write
//   - ErrInvalidState: the input cannot address a record (e.g. malformed id)
//   - ErrUnavailable: the backing resource could not be reached
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
