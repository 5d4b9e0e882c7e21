package libemit

import (
	"fmt"
	"reflect"
)

// Event is an immutable record of a single delivery: the type that matched,
// the target it was addressed to, the payload, and the chain of events it was
// forwarded through. Handlers receive an Event and may call Stop to end the
// emit pass early.
type Event struct {
	target   any
	typ      any
	name     string
	args     []any
	data     any
	orig     *Event
	prev     *Event
	listener *Listener
	status   *Status
}

// newEvent builds an Event around the emit arguments. A leading *Event
// argument forwards: its payload and origin are adopted, the event itself is
// recorded as the previous hop and dropped from the arguments. A leading
// object becomes the payload and stays in place. Anything else leaves the
// payload empty. The composed setup callback runs last, after every field is
// in place.
func newEvent(l *Listener, typ, target any, args []any, st *Status, eff effective) *Event {
	ev := &Event{
		target:   target,
		typ:      typ,
		name:     displayName(typ),
		listener: l,
		status:   st,
	}
	ev.args = make([]any, len(args))
	copy(ev.args, args)
	ev.orig = ev
	if len(ev.args) > 0 {
		if prev, ok := ev.args[0].(*Event); ok && prev != nil {
			ev.data = prev.data
			ev.orig = prev.orig
			ev.prev = prev
			ev.args = ev.args[1:]
		} else if isObject(ev.args[0]) {
			ev.data = ev.args[0]
		}
	}
	if eff.setupEvent != nil {
		eff.setupEvent(ev)
	}
	return ev
}

// Target returns the value the event was dispatched to.
func (e *Event) Target() any { return e.target }

// Type returns the event-type token the event was emitted under.
func (e *Event) Type() any { return e.typ }

// Name returns the display name of the event type.
func (e *Event) Name() string { return e.name }

// Args returns the positional arguments, without a forwarded leading event.
func (e *Event) Args() []any { return e.args }

// Data returns the extracted payload, nil when none was given.
func (e *Event) Data() any { return e.data }

// Orig returns the first event of a forwarding chain, the event itself when it
// was not forwarded.
func (e *Event) Orig() *Event { return e.orig }

// Prev returns the event this one was forwarded from, nil otherwise.
func (e *Event) Prev() *Event { return e.prev }

// Listener returns the listener the event was delivered to, nil for replay
// snapshots.
func (e *Event) Listener() *Listener { return e.listener }

// Stop asks the emit pass that produced the event to end after the current
// delivery. On replayed events it has no effect.
func (e *Event) Stop() {
	if e.status != nil {
		e.status.requestStop()
	}
}

func (e *Event) String() string {
	return fmt.Sprintf("Event{type=%s,target=%v,args=%d}",
		e.name, e.target, len(e.args))
}

// isObject reports whether v counts as a structured payload: maps, slices,
// arrays, structs and non-nil pointers qualify, scalars and nil do not.
func isObject(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	case reflect.Pointer:
		return !rv.IsNil()
	default:
		return false
	}
}
