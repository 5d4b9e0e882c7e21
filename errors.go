package libemit

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidType     = errors.New("event type must be a string or *Sym")
	ErrInvalidHandler  = errors.New("handler must implement Handler or be a func(*Event) error or func(*Event)")
	ErrInvalidTarget   = errors.New("target must be a non-nil comparable value")
	ErrInvalidListener = errors.New("listener is nil")
	ErrForeignListener = errors.New("listener is owned by another registry")
	ErrNilRegistry     = errors.New("registry is nil")
	ErrAlreadyExtended = errors.New("target is already extended")
)

// ErrHandler reports a handler failure during a dispatch pass. It carries the
// event type and target under dispatch and the listener whose handler failed.
type ErrHandler struct {
	err      error
	typ      any
	target   any
	listener *Listener
}

func (e ErrHandler) Error() string {
	return fmt.Sprintf("handler for %q failed: %s", displayName(e.typ), e.err)
}

func (e ErrHandler) Unwrap() error { return e.err }

// Type returns the event-type token that was being dispatched.
func (e ErrHandler) Type() any { return e.typ }

// Target returns the target the event was addressed to.
func (e ErrHandler) Target() any { return e.target }

// Listener returns the listener whose handler returned the error.
func (e ErrHandler) Listener() *Listener { return e.listener }

func WrapErrorHandler(err error, l *Listener, typ, target any) *ErrHandler {
	if err == nil {
		return nil
	}
	return &ErrHandler{
		err:      err,
		typ:      typ,
		target:   target,
		listener: l,
	}
}
