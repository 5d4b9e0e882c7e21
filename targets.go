package libemit

import (
	"reflect"
)

type (
	// TargetSource resolves the target set for an emit pass. The status exposes
	// the requested types, so a source can answer differently per emit.
	TargetSource func(st *Status) []any

	// targetRepo wraps a TargetSource with validation and logging.
	targetRepo struct {
		logger logger
		source TargetSource
	}
)

func newTargetRepo(logger logger, source TargetSource) targetRepo {
	return targetRepo{source: source, logger: logger.WithField("type", "targetRepo")}
}

func (r targetRepo) get(st *Status) []any {
	targets := sanitizeTargets(r.source(st), r.logger)
	r.logger.Debugf("resolved %d targets", len(targets))
	return targets
}

// validTarget reports whether v can key the dispatch tables: non-nil and of a
// comparable dynamic type.
func validTarget(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Comparable()
}

// sanitizeTargets drops invalid targets and duplicates, preserving first
// occurrence order.
func sanitizeTargets(targets []any, logger logger) []any {
	seen := make(map[any]struct{}, len(targets))
	out := make([]any, 0, len(targets))
	for _, t := range targets {
		if !validTarget(t) {
			logger.Warnf("dropping invalid target %v: %s", t, ErrInvalidTarget)
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
