// Package libemit implements a synchronous in-process event dispatcher with
// wildcard matching, fan-out over registered targets, bounded per-type event
// history and listener lifecycle control.
package libemit

import (
	"sync"

	"github.com/pkg/errors"
)

// Registry routes emitted events to listeners. All methods are safe for
// concurrent use; handlers run synchronously on the emitting goroutine with no
// internal lock held, so they may call back into the registry freely.
type Registry struct {
	lock       sync.RWMutex
	cfg        config
	listeners  map[any][]*Listener
	members    map[*Listener]struct{}
	types      map[any]*TypeData
	targets    []any
	targetIdx  map[any]struct{}
	hadTargets bool
	repo       *targetRepo
	resolved   []any
	cached     bool
	logger     logger
}

// replayEntry is one token's worth of recorded history owed to a freshly
// attached listener.
type replayEntry struct {
	tok    any
	events []*Event
	eff    effective
}

// New builds a Registry. Invalid option values are clamped or dropped rather
// than reported; target validation failures are logged.
func New(opts ...Option) *Registry {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	r := &Registry{
		cfg:       cfg,
		listeners: make(map[any][]*Listener),
		members:   make(map[*Listener]struct{}),
		types:     make(map[any]*TypeData),
		targetIdx: make(map[any]struct{}),
		logger:    cfg.logger.WithField("type", "registry"),
	}
	for _, t := range sanitizeTargets(cfg.targets, r.logger) {
		r.addTarget(t)
	}
	if cfg.source != nil {
		repo := newTargetRepo(cfg.logger, cfg.source)
		r.repo = &repo
		if len(r.targets) > 0 {
			r.logger.Warnln("fixed targets are shadowed by the target source")
		}
	}
	return r
}

// Register adds dispatch targets. Duplicates are no-ops and order is
// preserved. If any target is invalid the whole call fails without side
// effects.
func (r *Registry) Register(targets ...any) error {
	for _, t := range targets {
		if !validTarget(t) {
			return errors.Wrapf(ErrInvalidTarget, "%T", t)
		}
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, t := range targets {
		r.addTarget(t)
	}
	return nil
}

// Unregister removes dispatch targets. Unknown targets are ignored.
func (r *Registry) Unregister(targets ...any) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, t := range targets {
		if _, ok := r.targetIdx[t]; !ok {
			continue
		}
		delete(r.targetIdx, t)
		for i, cur := range r.targets {
			if cur == t {
				r.targets = append(r.targets[:i], r.targets[i+1:]...)
				break
			}
		}
	}
}

// Targets returns the fixed target set in registration order. Targets coming
// from a TargetSource are not included.
func (r *Registry) Targets() []any {
	r.lock.RLock()
	defer r.lock.RUnlock()
	out := make([]any, len(r.targets))
	copy(out, r.targets)
	return out
}

func (r *Registry) addTarget(t any) {
	r.hadTargets = true
	if _, ok := r.targetIdx[t]; ok {
		return
	}
	r.targetIdx[t] = struct{}{}
	r.targets = append(r.targets, t)
}

// targetless reports whether the registry never had any target configured, in
// which case Emit dispatches once per type with a nil target instead of
// fanning out.
func (r *Registry) targetless() bool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return !r.hadTargets && r.repo == nil
}

// Listen subscribes handler to the given event types and returns the
// Listener. Types with recorded history are replayed to the handler before
// Listen returns; if a replayed delivery fails, the listener is returned
// alongside the error and stays subscribed to its remaining types.
func (r *Registry) Listen(types, handler any, opts ...ListenerOption) (*Listener, error) {
	l, err := r.NewListener(types, handler, opts...)
	if err != nil {
		return nil, err
	}
	return l, r.Add(l)
}

// Once subscribes handler with the single-use flag forced on, overriding any
// once setting given in opts.
func (r *Registry) Once(types, handler any, opts ...ListenerOption) (*Listener, error) {
	return r.Listen(types, handler, append(opts, WithOnce(true))...)
}

// NewListener constructs a detached listener owned by this registry. It
// receives nothing until attached with Add. The handler may be a Handler
// implementation, a HandlerFunc, a func(*Event) error or a func(*Event).
func (r *Registry) NewListener(types, handler any, opts ...ListenerOption) (*Listener, error) {
	tokens, err := r.NormalizeTypes(types)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, errors.Wrap(ErrInvalidType, "empty type set")
	}
	h, err := newHandler(handler)
	if err != nil {
		return nil, err
	}
	l := newListener(r, tokens, h, opts...)
	if r.cfg.setupListener != nil {
		r.cfg.setupListener(l)
	}
	r.logger.Debugf("listener %s created, types=%d", l.ID(), len(tokens))
	return l, nil
}

// Add attaches a listener created by NewListener and replays any recorded
// history for its types, newest first. Attaching twice is a no-op; listeners
// owned by another registry are rejected with ErrForeignListener.
func (r *Registry) Add(l *Listener) error {
	if l == nil {
		return ErrInvalidListener
	}
	if l.reg != r {
		return ErrForeignListener
	}
	r.lock.Lock()
	if _, ok := r.members[l]; ok {
		r.lock.Unlock()
		return nil
	}
	if len(l.types) == 0 {
		r.lock.Unlock()
		return errors.Wrap(ErrInvalidType, "empty type set")
	}
	r.members[l] = struct{}{}
	for _, tok := range l.types {
		r.listeners[tok] = append(r.listeners[tok], l)
	}
	entries := r.replayPlan(l)
	r.lock.Unlock()
	r.logger.Debugf("listener %s attached", l.ID())
	return r.replay(l, entries)
}

// replayPlan collects the history owed to l. Caller holds the write lock.
func (r *Registry) replayPlan(l *Listener) []replayEntry {
	var entries []replayEntry
	for _, tok := range l.types {
		td, ok := r.types[tok]
		if !ok || !td.stateful || len(td.history) == 0 {
			continue
		}
		events := make([]*Event, len(td.history))
		copy(events, td.history)
		entries = append(entries, replayEntry{
			tok:    tok,
			events: events,
			eff:    compose(&r.cfg, td, &l.opts),
		})
	}
	return entries
}

// replay delivers recorded events to a freshly attached listener, outside the
// lock so the handler can use the registry. A failing delivery aborts the
// remaining replay and surfaces as *ErrHandler. Tokens whose type is single
// use are dropped from the listener once their history was delivered.
func (r *Registry) replay(l *Listener, entries []replayEntry) error {
	if len(entries) == 0 {
		return nil
	}
	var errOut error
	var drop []any
	for _, en := range entries {
		r.logger.Debugf("<= [REPLAY] %s to listener %s, events=%d",
			displayName(en.tok), l.ID(), len(en.events))
		delivered := false
		for _, ev := range en.events {
			err := l.h.invoke(ev)
			delivered = true
			if err != nil {
				errOut = WrapErrorHandler(err, l, en.tok, ev.Target())
				break
			}
		}
		if delivered && en.eff.once {
			drop = append(drop, en.tok)
		}
		if errOut != nil {
			break
		}
	}
	r.dropListenerTokens(l, drop)
	return errOut
}

// dropListenerTokens shrinks l's type set, deregistering the listener when it
// empties.
func (r *Registry) dropListenerTokens(l *Listener, toks []any) {
	if len(toks) == 0 {
		return
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.members[l]; !ok {
		return
	}
	for _, tok := range toks {
		r.listeners[tok] = without(r.listeners[tok], l)
		if len(r.listeners[tok]) == 0 {
			delete(r.listeners, tok)
		}
		if l.dropType(tok) {
			delete(r.members, l)
		}
	}
}

// RemoveListeners detaches the given listeners. Unknown, detached or nil
// listeners are ignored.
func (r *Registry) RemoveListeners(ls ...*Listener) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, l := range ls {
		if l == nil {
			continue
		}
		if r.removeListener(l) {
			r.logger.Debugf("listener %s removed", l.ID())
		}
	}
}

// removeListener drops l from every table, reporting whether it was attached.
// The listener keeps its type set so it can be attached again. Caller holds
// the write lock.
func (r *Registry) removeListener(l *Listener) bool {
	if _, ok := r.members[l]; !ok {
		return false
	}
	delete(r.members, l)
	for _, tok := range l.types {
		r.listeners[tok] = without(r.listeners[tok], l)
		if len(r.listeners[tok]) == 0 {
			delete(r.listeners, tok)
		}
	}
	return true
}

// RemoveTypes unsubscribes every listener from the given event types and
// forgets the types' configuration and history. Listeners left with an empty
// type set are deregistered. Invalid inputs are ignored.
func (r *Registry) RemoveTypes(types ...any) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, v := range types {
		tokens, err := r.NormalizeTypes(v)
		if err != nil {
			r.logger.Warnf("skipping removal of %v: %s", v, err)
			continue
		}
		for _, tok := range tokens {
			r.removeType(tok)
		}
	}
}

// removeType drops one token. Caller holds the write lock.
func (r *Registry) removeType(tok any) {
	for _, l := range r.listeners[tok] {
		if l.dropType(tok) {
			delete(r.members, l)
		}
	}
	delete(r.listeners, tok)
	delete(r.types, tok)
}

// Remove accepts a *Listener, an event-type token, or a compound type string,
// which is delimiter-split like everywhere else. The wildcard token clears
// every listener. It reports whether anything was removed.
func (r *Registry) Remove(v any) bool {
	switch t := v.(type) {
	case *Listener:
		if t == nil {
			return false
		}
		r.lock.Lock()
		defer r.lock.Unlock()
		return r.removeListener(t)
	case string:
		r.lock.Lock()
		defer r.lock.Unlock()
		removed := false
		for _, name := range splitNames(t, r.cfg.delimiter) {
			if name == r.cfg.wildcard {
				removed = removed || len(r.members) > 0
				r.listeners = make(map[any][]*Listener)
				r.members = make(map[*Listener]struct{})
				continue
			}
			removed = r.removeToken(name) || removed
		}
		return removed
	case *Sym:
		if t == nil {
			return false
		}
		r.lock.Lock()
		defer r.lock.Unlock()
		return r.removeToken(t)
	default:
		return false
	}
}

// removeToken drops one token and its configuration, reporting whether any
// listener was subscribed to it. Caller holds the write lock.
func (r *Registry) removeToken(tok any) bool {
	if len(r.listeners[tok]) == 0 {
		delete(r.types, tok)
		delete(r.listeners, tok)
		return false
	}
	r.removeType(tok)
	return true
}

// RemoveAll detaches every listener. Type configuration and recorded history
// are kept. It reports whether any listener was removed.
func (r *Registry) RemoveAll() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	removed := len(r.members) > 0
	r.listeners = make(map[any][]*Listener)
	r.members = make(map[*Listener]struct{})
	return removed
}

// SetType configures a single event type, creating or reconciling its
// TypeData. The type must normalize to exactly one token.
func (r *Registry) SetType(typ any, opts ...TypeOption) error {
	tokens, err := r.NormalizeTypes(typ)
	if err != nil {
		return err
	}
	if len(tokens) != 1 {
		return errors.Wrapf(ErrInvalidType, "expected a single type, got %d", len(tokens))
	}
	var to typeOptions
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&to)
	}
	tok := tokens[0]
	r.lock.Lock()
	defer r.lock.Unlock()
	td, ok := r.types[tok]
	if !ok {
		td = &TypeData{}
		r.types[tok] = td
	}
	td.apply(&to)
	r.logger.Debugf("type %s configured: stateful=%t keepState=%d oneTime=%t",
		displayName(tok), td.stateful, td.keepState, td.oneTime)
	return nil
}

// TypeData returns a detached copy of the configuration for typ, and whether
// the type was ever configured.
func (r *Registry) TypeData(typ any) (TypeData, bool) {
	tokens, err := r.NormalizeTypes(typ)
	if err != nil || len(tokens) != 1 {
		return TypeData{}, false
	}
	r.lock.RLock()
	defer r.lock.RUnlock()
	td, ok := r.types[tokens[0]]
	if !ok {
		return TypeData{}, false
	}
	return td.clone(), true
}

// EventTypes returns every token with at least one listener, in no particular
// order.
func (r *Registry) EventTypes() []any {
	r.lock.RLock()
	defer r.lock.RUnlock()
	out := make([]any, 0, len(r.listeners))
	for tok := range r.listeners {
		out = append(out, tok)
	}
	return out
}

// ListenerCount returns the number of distinct listeners subscribed to the
// given tokens, or to the whole registry when called without arguments.
func (r *Registry) ListenerCount(types ...any) int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if len(types) == 0 {
		return len(r.members)
	}
	seen := make(map[*Listener]struct{})
	for _, tok := range types {
		for _, l := range r.listeners[tok] {
			seen[l] = struct{}{}
		}
	}
	return len(seen)
}

// HasListeners reports whether any listener is subscribed to any token the
// given value normalizes to.
func (r *Registry) HasListeners(typ any) bool {
	tokens, err := r.NormalizeTypes(typ)
	if err != nil {
		return false
	}
	r.lock.RLock()
	defer r.lock.RUnlock()
	for _, tok := range tokens {
		if len(r.listeners[tok]) > 0 {
			return true
		}
	}
	return false
}

// Len returns the number of tokens with at least one listener.
func (r *Registry) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.listeners)
}

// SplitNames splits a compound type string on the registry delimiter,
// collapsing repeated delimiters.
func (r *Registry) SplitNames(s string) []string {
	return splitNames(s, r.cfg.delimiter)
}

// NormalizeTypes turns the accepted type shapes into a deduped token list:
// strings are delimiter-split, a *Sym stands alone, and slices are taken
// element-wise without further splitting.
func (r *Registry) NormalizeTypes(v any) ([]any, error) {
	switch t := v.(type) {
	case string:
		names := splitNames(t, r.cfg.delimiter)
		tokens := make([]any, 0, len(names))
		for _, name := range names {
			tokens = append(tokens, name)
		}
		return dedupTokens(tokens), nil
	case *Sym:
		if t == nil {
			return nil, ErrInvalidType
		}
		return []any{t}, nil
	case []string:
		tokens := make([]any, 0, len(t))
		for _, name := range t {
			if name == "" {
				continue
			}
			tokens = append(tokens, name)
		}
		return dedupTokens(tokens), nil
	case []*Sym:
		tokens := make([]any, 0, len(t))
		for _, s := range t {
			if s == nil {
				return nil, ErrInvalidType
			}
			tokens = append(tokens, s)
		}
		return dedupTokens(tokens), nil
	case []any:
		tokens := make([]any, 0, len(t))
		for _, el := range t {
			if !validToken(el) {
				return nil, errors.Wrapf(ErrInvalidType, "%T", el)
			}
			tokens = append(tokens, el)
		}
		return dedupTokens(tokens), nil
	default:
		return nil, errors.Wrapf(ErrInvalidType, "%T", v)
	}
}

// Delimiter returns the compiled type-string separator.
func (r *Registry) Delimiter() string { return r.cfg.delimiter }

// Wildcard returns the compiled wildcard token.
func (r *Registry) Wildcard() string { return r.cfg.wildcard }

// MultiMatch returns the registry-wide multi-match default.
func (r *Registry) MultiMatch() bool { return r.cfg.multiMatch }

// Overwrite reports whether Extend may rebind already-extended targets.
func (r *Registry) Overwrite() bool { return r.cfg.overwrite }

func without(ls []*Listener, l *Listener) []*Listener {
	for i, cur := range ls {
		if cur == l {
			return append(ls[:i], ls[i+1:]...)
		}
	}
	return ls
}
