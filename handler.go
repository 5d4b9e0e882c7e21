package libemit

type (
	// Handler receives events dispatched by a Registry. Returning a non-nil
	// error aborts the emit pass that delivered the event.
	Handler interface {
		// HandleEvent is invoked synchronously, once per delivery.
		HandleEvent(ev *Event) error
	}

	// HandlerFunc adapts a plain function to the Handler interface.
	HandlerFunc func(ev *Event) error

	// SetupEvent is invoked once right after an Event is fully constructed,
	// before its handler runs. It is meant for side effects on the event's
	// surroundings, not for mutating the event.
	SetupEvent func(ev *Event)

	// SetupListener is invoked once right after a Listener is constructed.
	SetupListener func(l *Listener)
)

func (f HandlerFunc) HandleEvent(ev *Event) error { return f(ev) }

// handler is the normalized form a listener callback is stored in. Exactly one
// of fn and obj is set.
type handler struct {
	fn  HandlerFunc
	obj Handler
}

// newHandler validates and normalizes the accepted callback shapes. Anything
// else yields ErrInvalidHandler.
func newHandler(v any) (handler, error) {
	switch h := v.(type) {
	case nil:
		return handler{}, ErrInvalidHandler
	case HandlerFunc:
		if h == nil {
			return handler{}, ErrInvalidHandler
		}
		return handler{fn: h}, nil
	case func(ev *Event) error:
		if h == nil {
			return handler{}, ErrInvalidHandler
		}
		return handler{fn: h}, nil
	case func(ev *Event):
		if h == nil {
			return handler{}, ErrInvalidHandler
		}
		return handler{fn: func(ev *Event) error {
			h(ev)
			return nil
		}}, nil
	case Handler:
		return handler{obj: h}, nil
	default:
		return handler{}, ErrInvalidHandler
	}
}

func (h handler) invoke(ev *Event) error {
	if h.fn != nil {
		return h.fn(ev)
	}
	return h.obj.HandleEvent(ev)
}
