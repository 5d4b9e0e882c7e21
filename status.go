package libemit

import (
	"fmt"

	"github.com/google/uuid"
)

// Status is the outcome of a single emit pass: which types were requested,
// which targets were resolved, and every Event that was delivered, in
// dispatch order. A Status is mutated only by the pass that created it and is
// read-only once Emit returns.
type Status struct {
	id         uuid.UUID
	types      []any
	targets    []any
	multiMatch bool
	invoked    map[*Listener]struct{}
	events     []*Event
	removals   []*Listener
	removed    map[*Listener]struct{}
	stop       bool
}

func newStatus(types []any, multiMatch bool) *Status {
	return &Status{
		id:         uuid.New(),
		types:      types,
		multiMatch: multiMatch,
		invoked:    make(map[*Listener]struct{}),
		removed:    make(map[*Listener]struct{}),
	}
}

// ID returns a unique identifier for the pass, usable to correlate log lines.
func (s *Status) ID() string { return s.id.String() }

// Types returns the normalized event-type tokens the pass was emitted with.
func (s *Status) Types() []any { return s.types }

// Targets returns the resolved targets the pass dispatched to.
func (s *Status) Targets() []any { return s.targets }

// Events returns every delivered event in dispatch order.
func (s *Status) Events() []*Event { return s.events }

// Len returns the number of delivered events.
func (s *Status) Len() int { return len(s.events) }

// MultiMatch returns the registry-wide multi-match default the pass was
// emitted under. Listener-level overrides are not reflected here.
func (s *Status) MultiMatch() bool { return s.multiMatch }

// Stopped reports whether a handler ended the pass early.
func (s *Status) Stopped() bool { return s.stop }

func (s *Status) String() string {
	return fmt.Sprintf("Status{types=%d,targets=%d,events=%d,stopped=%t}",
		len(s.types), len(s.targets), len(s.events), s.stop)
}

// beginTarget resets the per-target dedupe set.
func (s *Status) beginTarget() {
	if len(s.invoked) > 0 {
		s.invoked = make(map[*Listener]struct{})
	}
}

func (s *Status) alreadyInvoked(l *Listener) bool {
	_, ok := s.invoked[l]
	return ok
}

func (s *Status) markInvoked(l *Listener) {
	s.invoked[l] = struct{}{}
}

func (s *Status) record(ev *Event) {
	s.events = append(s.events, ev)
}

// deferRemoval queues a single-use listener for removal once the pass ends.
func (s *Status) deferRemoval(l *Listener) {
	if _, ok := s.removed[l]; ok {
		return
	}
	s.removed[l] = struct{}{}
	s.removals = append(s.removals, l)
}

func (s *Status) requestStop() {
	s.stop = true
}
