package libemit

type (
	// Emitter is the subset of the Registry surface the extension adapter and
	// test doubles program against.
	Emitter interface {
		// Listen subscribes a handler to the given event types.
		Listen(types, handler any, opts ...ListenerOption) (*Listener, error)

		// Once subscribes a handler that unsubscribes after its first delivery.
		Once(types, handler any, opts ...ListenerOption) (*Listener, error)

		// Emit dispatches the given types to every matching listener.
		Emit(types any, args ...any) (*Status, error)

		// Remove drops a listener, an event type, or, given the wildcard
		// token, every listener.
		Remove(v any) bool

		// SetType configures a single event type.
		SetType(typ any, opts ...TypeOption) error

		// Register adds dispatch targets.
		Register(targets ...any) error

		// Unregister removes dispatch targets.
		Unregister(targets ...any)
	}
)

var _ Emitter = (*Registry)(nil)
