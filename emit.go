package libemit

// typePlan is the dispatch snapshot for one (type, target) step: the deduped
// union of type-specific and wildcard listeners in registration order, the
// composed option view per candidate, and whether the type records history.
type typePlan struct {
	candidates []*Listener
	effs       []effective
	stateful   bool
	base       effective
}

// Emit dispatches the given types to every matching listener across the
// resolved targets, in order: for each target, for each requested type, the
// union of type-specific and wildcard listeners runs synchronously. Unless
// multi-match applies, a listener fires at most once per target even when it
// matches several of the requested types. The returned Status carries every
// delivered Event; a handler error aborts the pass and is returned with a nil
// Status, after pending single-use removals are applied.
func (r *Registry) Emit(types any, args ...any) (*Status, error) {
	tokens, err := r.NormalizeTypes(types)
	if err != nil {
		return nil, err
	}
	st := newStatus(tokens, r.cfg.multiMatch)
	st.targets = r.resolveTargets(st)
	r.logger.Debugf("=> [EMIT] %s types=%d targets=%d", st.ID(), len(tokens), len(st.targets))
	herr := r.dispatch(st, args)
	r.applyRemovals(st)
	if herr != nil {
		return nil, herr
	}
	return st, nil
}

func (r *Registry) dispatch(st *Status, args []any) error {
	targets := st.targets
	if len(targets) == 0 {
		if !r.targetless() {
			// A configured target set that resolved empty means zero
			// deliveries, even when it was emptied after the fact.
			return nil
		}
		targets = []any{nil}
	}
	for _, target := range targets {
		st.beginTarget()
		for _, tok := range st.types {
			plan := r.typePlan(tok)
			for i, l := range plan.candidates {
				eff := plan.effs[i]
				if !eff.multiMatch && st.alreadyInvoked(l) {
					continue
				}
				st.markInvoked(l)
				ev, err := l.dispatch(tok, target, args, st, eff)
				st.record(ev)
				if err != nil {
					r.logger.Errorf("handler error on %s: %s", displayName(tok), err)
					return WrapErrorHandler(err, l, tok, target)
				}
				if st.stop {
					r.logger.Debugf("=> [EMIT] %s stopped by listener %s", st.ID(), l.ID())
					return nil
				}
			}
			if plan.stateful {
				r.recordState(tok, target, args, plan.base)
			}
		}
	}
	return nil
}

// typePlan snapshots the candidates for one type under the read lock, so that
// handlers run lock-free and re-entrant registry calls cannot deadlock.
// Mutations made mid-pass show up in later snapshots of the same pass.
func (r *Registry) typePlan(tok any) typePlan {
	r.lock.RLock()
	defer r.lock.RUnlock()
	var p typePlan
	td := r.types[tok]
	if td != nil && td.stateful {
		p.stateful = true
		p.base = compose(&r.cfg, td, nil)
	}
	specific := r.listeners[tok]
	wild := r.listeners[r.cfg.wildcard]
	if len(specific)+len(wild) == 0 {
		return p
	}
	seen := make(map[*Listener]struct{}, len(specific)+len(wild))
	add := func(l *Listener) {
		if _, ok := seen[l]; ok {
			return
		}
		seen[l] = struct{}{}
		p.candidates = append(p.candidates, l)
		p.effs = append(p.effs, compose(&r.cfg, td, &l.opts))
	}
	for _, l := range specific {
		add(l)
	}
	for _, l := range wild {
		add(l)
	}
	return p
}

// recordState pushes one listener-independent snapshot Event onto the type's
// history, so that a later subscriber can replay the emit even when nobody was
// listening. The snapshot carries no status: once the recording pass returns,
// its Status is read-only, so a Stop during replay must stay inert. The event
// is built outside the lock because setup callbacks may use the registry.
func (r *Registry) recordState(tok, target any, args []any, eff effective) {
	ev := newEvent(nil, tok, target, args, nil, eff)
	r.lock.Lock()
	td, ok := r.types[tok]
	if ok && td.stateful {
		td.push(ev)
	}
	r.lock.Unlock()
	if ok {
		r.logger.Debugf("=> [STATE] %s recorded, target=%v", displayName(tok), target)
	}
}

// resolveTargets yields the target set for one pass: the source when one is
// configured (cached on first use unless on-demand), the fixed set otherwise.
func (r *Registry) resolveTargets(st *Status) []any {
	if r.repo != nil {
		if r.cfg.onDemand {
			return r.repo.get(st)
		}
		r.lock.RLock()
		if r.cached {
			out := r.resolved
			r.lock.RUnlock()
			return out
		}
		r.lock.RUnlock()
		targets := r.repo.get(st)
		r.lock.Lock()
		if !r.cached {
			r.resolved = targets
			r.cached = true
		}
		out := r.resolved
		r.lock.Unlock()
		return out
	}
	r.lock.RLock()
	defer r.lock.RUnlock()
	out := make([]any, len(r.targets))
	copy(out, r.targets)
	return out
}

// applyRemovals deregisters every listener queued for single-use removal
// during the pass. Listeners already removed mid-pass are skipped.
func (r *Registry) applyRemovals(st *Status) {
	if len(st.removals) == 0 {
		return
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, l := range st.removals {
		if r.removeListener(l) {
			r.logger.Debugf("listener %s removed after single use", l.ID())
		}
	}
}
