package state

import (
	"errors"
	"strings"
)

// Error kinds for core operations. Callers match with errors.Is; operations
// wrap these with a human-readable detail via fmt.Errorf and %w. Every
// operation either fully applies and persists its transition or fails before
// anything is written.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrWrongMode          = errors.New("wrong mode")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrPreconditionFailed = errors.New("precondition failed")
)

// CycleError reports that a dependency addition would create a cycle.
// Path is the offending cycle in order, closing back to the first ID.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	closed := append(append([]string{}, e.Path...), e.Path[0])
	return "dependency cycle: " + strings.Join(closed, " → ")
}
