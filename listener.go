package libemit

import (
	"fmt"

	"github.com/google/uuid"
)

// Listener binds one handler to a set of event-type tokens. A listener is
// owned by the registry that created it for its whole lifetime; its type set
// may shrink through partial removals and the listener is deregistered when
// the set empties.
type Listener struct {
	id    uuid.UUID
	reg   *Registry
	h     handler
	opts  listenerOptions
	types []any
	index map[any]struct{}
}

func newListener(r *Registry, tokens []any, h handler, opts ...ListenerOption) *Listener {
	l := &Listener{
		id:    uuid.New(),
		reg:   r,
		h:     h,
		types: tokens,
		index: make(map[any]struct{}, len(tokens)),
	}
	for _, tok := range tokens {
		l.index[tok] = struct{}{}
	}
	for _, opt := range opts {
		opt(&l.opts)
	}
	return l
}

// ID returns the unique identifier assigned at construction.
func (l *Listener) ID() string { return l.id.String() }

// Types returns the tokens the listener is currently subscribed to, in
// subscription order.
func (l *Listener) Types() []any {
	l.reg.lock.RLock()
	defer l.reg.lock.RUnlock()
	out := make([]any, len(l.types))
	copy(out, l.types)
	return out
}

// Has reports whether the listener is subscribed to the given token.
func (l *Listener) Has(typ any) bool {
	l.reg.lock.RLock()
	defer l.reg.lock.RUnlock()
	_, ok := l.index[typ]
	return ok
}

func (l *Listener) String() string {
	return fmt.Sprintf("Listener{id=%s,types=%d}", l.id, len(l.types))
}

// dispatch delivers one event to the listener's handler. Single-use listeners
// are queued on the status for removal after the pass; the registry tables are
// never touched mid-pass.
func (l *Listener) dispatch(typ, target any, args []any, st *Status, eff effective) (*Event, error) {
	ev := newEvent(l, typ, target, args, st, eff)
	err := l.h.invoke(ev)
	if eff.once {
		st.deferRemoval(l)
	}
	return ev, err
}

// dropType removes tok from the listener's type set, reporting whether the set
// is now empty. Callers hold the registry lock.
func (l *Listener) dropType(tok any) bool {
	if _, ok := l.index[tok]; !ok {
		return len(l.types) == 0
	}
	delete(l.index, tok)
	for i, t := range l.types {
		if t == tok {
			l.types = append(l.types[:i], l.types[i+1:]...)
			break
		}
	}
	return len(l.types) == 0
}
