package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a command arrives while another one is still
	// running.
	ErrBusy = errors.New("editor: command already in progress")
	// ErrClosed is returned by every command once the session is closed.
	ErrClosed = errors.New("editor: session closed")
)

// SerializationError means the surface could not produce or load a
// document. History is left as it was.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// PersistenceError means the document store rejected a save.
type PersistenceError struct {
	DesignID string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save design %q: %v", e.DesignID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
