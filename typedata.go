package libemit

// DefaultKeepState is how many events a stateful type retains when no explicit
// bound is configured.
const DefaultKeepState = 1

// TypeData holds the per-type configuration of a Registry: whether listeners
// of the type are single use by default and, for stateful types, the bounded
// history replayed to late subscribers. Histories are kept most recent first.
type TypeData struct {
	oneTime    bool
	oneTimeSet bool
	stateful   bool
	keepState  int
	history    []*Event
}

// OneTime reports whether listeners of the type unsubscribe after their first
// delivery unless they configure their own once setting.
func (td TypeData) OneTime() bool { return td.oneTime }

// Stateful reports whether emits of the type are recorded for replay.
func (td TypeData) Stateful() bool { return td.stateful }

// KeepState returns the history bound, zero for stateless types.
func (td TypeData) KeepState() int { return td.keepState }

// History returns the recorded events, most recent first.
func (td TypeData) History() []*Event { return td.history }

// apply reconciles the given options into the existing configuration. Marking
// a type stateful defaults its listeners to single use unless one-time was set
// explicitly at some point; un-marking it discards any recorded history.
func (td *TypeData) apply(opts *typeOptions) {
	if opts.keepState != nil {
		td.stateful = true
		td.keepState = *opts.keepState
	}
	if opts.stateful != nil {
		if *opts.stateful {
			td.stateful = true
			if td.keepState < 1 {
				td.keepState = DefaultKeepState
			}
		} else {
			td.stateful = false
			td.keepState = 0
			td.history = nil
		}
	}
	if opts.oneTime != nil {
		td.oneTime = *opts.oneTime
		td.oneTimeSet = true
	}
	if td.stateful && !td.oneTimeSet {
		td.oneTime = true
	}
	if n := td.keepState; td.stateful && len(td.history) > n {
		td.history = td.history[:n]
	}
}

// push records ev at the front of the history, evicting the oldest entry when
// the bound is reached. It is a no-op for stateless types.
func (td *TypeData) push(ev *Event) {
	if !td.stateful || td.keepState < 1 {
		return
	}
	if len(td.history) < td.keepState {
		td.history = append(td.history, nil)
	}
	copy(td.history[1:], td.history)
	td.history[0] = ev
}

// clone returns a detached copy safe to hand out without holding the registry
// lock.
func (td *TypeData) clone() TypeData {
	out := *td
	out.history = make([]*Event, len(td.history))
	copy(out.history, td.history)
	return out
}
