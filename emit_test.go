package libemit

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEmitDedupePerTarget(t *testing.T) {
	reg := New()
	calls := 0

	_, err := reg.Listen("open close", func(ev *Event) {
		calls++
	})
	require.NoError(t, err)

	st, err := reg.Emit("open close")
	require.NoError(t, err)

	// Without multi-match, matching two requested types still means a single
	// delivery per target.
	require.Equal(t, 1, calls)
	require.Equal(t, 1, st.Len())
	require.Equal(t, "open", st.Events()[0].Name())
	require.False(t, st.MultiMatch())
}

func TestEmitMultiMatchPerListener(t *testing.T) {
	reg := New()
	var names []string

	_, err := reg.Listen("open close", func(ev *Event) {
		names = append(names, ev.Name())
	}, WithListenerMultiMatch(true))
	require.NoError(t, err)

	_, err = reg.Emit("open close")
	require.NoError(t, err)

	require.Equal(t, []string{"open", "close"}, names)
}

func TestEmitWildcard(t *testing.T) {
	reg := New()
	var got []string

	_, err := reg.Listen("*", func(ev *Event) {
		got = append(got, ev.Name())
	})
	require.NoError(t, err)

	st, err := reg.Emit("x")
	require.NoError(t, err)

	require.Equal(t, []string{"x"}, got)
	require.Equal(t, "x", st.Events()[0].Type())
}

func TestEmitWildcardAndSpecificDedupe(t *testing.T) {
	reg := New()
	calls := 0

	// A listener present both as type-specific and wildcard candidate fires
	// once per type.
	_, err := reg.Listen([]string{"x", "*"}, func(ev *Event) {
		calls++
	}, WithListenerMultiMatch(true))
	require.NoError(t, err)

	_, err = reg.Emit("x")
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestEmitListenerOrder(t *testing.T) {
	reg := New()
	var order []string

	_, err := reg.Listen("tick", func(ev *Event) { order = append(order, "first") })
	require.NoError(t, err)
	_, err = reg.Listen("tick", func(ev *Event) { order = append(order, "second") })
	require.NoError(t, err)
	_, err = reg.Listen("*", func(ev *Event) { order = append(order, "wildcard") })
	require.NoError(t, err)

	_, err = reg.Emit("tick")
	require.NoError(t, err)

	// Type-specific listeners run before wildcard ones, in registration order.
	require.Equal(t, []string{"first", "second", "wildcard"}, order)
}

func TestEmitTargetFanOut(t *testing.T) {
	reg := New(WithTargets("A", "B"))
	var targets []any

	_, err := reg.Listen("greet", func(ev *Event) {
		targets = append(targets, ev.Target())
		require.Equal(t, "world", ev.Data().(map[string]any)["who"])
	})
	require.NoError(t, err)

	st, err := reg.Emit("greet", map[string]any{"who": "world"})
	require.NoError(t, err)

	require.Equal(t, []any{"A", "B"}, targets)
	require.Equal(t, 2, st.Len())
	require.Equal(t, []any{"A", "B"}, st.Targets())
}

func TestEmitTargetSourceCached(t *testing.T) {
	calls := 0
	reg := New(WithTargetSource(func(st *Status) []any {
		calls++
		return []any{"A"}
	}))

	_, err := reg.Listen("ping", func(ev *Event) {})
	require.NoError(t, err)

	_, err = reg.Emit("ping")
	require.NoError(t, err)
	_, err = reg.Emit("ping")
	require.NoError(t, err)

	// Without on-demand resolution the source runs once and the result is
	// reused.
	require.Equal(t, 1, calls)
}

func TestEmitTargetSourceOnDemand(t *testing.T) {
	calls := 0
	reg := New(
		WithTargetSource(func(st *Status) []any {
			calls++
			require.NotEmpty(t, st.Types())
			return []any{calls}
		}),
		WithOnDemandTargets(true),
	)

	var seen []any
	_, err := reg.Listen("ping", func(ev *Event) {
		seen = append(seen, ev.Target())
	})
	require.NoError(t, err)

	_, err = reg.Emit("ping")
	require.NoError(t, err)
	_, err = reg.Emit("ping")
	require.NoError(t, err)

	require.Equal(t, 2, calls)
	require.Equal(t, []any{1, 2}, seen)
}

func TestEmitStop(t *testing.T) {
	reg := New()
	var order []int

	_, err := reg.Listen("halt", func(ev *Event) { order = append(order, 1) })
	require.NoError(t, err)
	_, err = reg.Listen("halt", func(ev *Event) {
		order = append(order, 2)
		ev.Stop()
	})
	require.NoError(t, err)
	_, err = reg.Listen("halt", func(ev *Event) { order = append(order, 3) })
	require.NoError(t, err)

	st, err := reg.Emit("halt")
	require.NoError(t, err)

	require.Equal(t, []int{1, 2}, order)
	require.True(t, st.Stopped())
	require.Equal(t, 2, st.Len())
}

func TestEmitStopSkipsRemainingTargets(t *testing.T) {
	reg := New(WithTargets("A", "B"))
	var targets []any

	_, err := reg.Listen("halt", func(ev *Event) {
		targets = append(targets, ev.Target())
		ev.Stop()
	})
	require.NoError(t, err)

	st, err := reg.Emit("halt")
	require.NoError(t, err)

	require.Equal(t, []any{"A"}, targets)
	require.True(t, st.Stopped())
}

func TestOnceAcrossTargets(t *testing.T) {
	reg := New(WithTargets("A", "B"))
	calls := 0

	_, err := reg.Once("boom", func(ev *Event) {
		calls++
	})
	require.NoError(t, err)
	require.Equal(t, 1, reg.ListenerCount())

	_, err = reg.Emit("boom")
	require.NoError(t, err)

	// The single-use listener was delivered once per target within the pass,
	// then removed.
	require.Equal(t, 2, calls)
	require.Equal(t, 0, reg.ListenerCount())

	st, err := reg.Emit("boom")
	require.NoError(t, err)
	require.Equal(t, 0, st.Len())
	require.Equal(t, 2, calls)
}

func TestOncePresentDuringPass(t *testing.T) {
	reg := New()

	_, err := reg.Once("boom", func(ev *Event) {
		// Removal only happens once the whole pass is over.
		require.Equal(t, 1, reg.ListenerCount("boom"))
	})
	require.NoError(t, err)

	_, err = reg.Emit("boom")
	require.NoError(t, err)
	require.Equal(t, 0, reg.ListenerCount("boom"))
}

func TestEmitRecursive(t *testing.T) {
	reg := New()
	var order []string

	_, err := reg.Listen("outer", func(ev *Event) {
		order = append(order, "outer-start")
		_, err := reg.Emit("inner")
		require.NoError(t, err)
		order = append(order, "outer-end")
	})
	require.NoError(t, err)
	_, err = reg.Listen("inner", func(ev *Event) {
		order = append(order, "inner")
	})
	require.NoError(t, err)

	_, err = reg.Emit("outer")
	require.NoError(t, err)

	require.Equal(t, []string{"outer-start", "inner", "outer-end"}, order)
}

func TestEmitHandlerError(t *testing.T) {
	reg := New()
	cause := errors.New("boom")
	afterRan := false

	first, err := reg.Once("fail", func(ev *Event) error {
		return cause
	})
	require.NoError(t, err)
	_, err = reg.Listen("fail", func(ev *Event) {
		afterRan = true
	})
	require.NoError(t, err)

	st, err := reg.Emit("fail")
	require.Nil(t, st)
	require.Error(t, err)
	require.True(t, errors.Is(err, cause))

	var herr *ErrHandler
	require.True(t, errors.As(err, &herr))
	require.Equal(t, "fail", herr.Type())
	require.Same(t, first, herr.Listener())

	// Later candidates never ran, but the failing single-use listener was
	// still removed.
	require.False(t, afterRan)
	require.Equal(t, 1, reg.ListenerCount("fail"))
}

func TestEmitMockedHandler(t *testing.T) {
	reg := New()
	m := &mockHandler{}
	m.On("HandleEvent", mock.Anything).Return(nil)

	_, err := reg.Listen("job", m)
	require.NoError(t, err)

	_, err = reg.Emit("job", 1)
	require.NoError(t, err)
	_, err = reg.Emit("job", 2)
	require.NoError(t, err)

	m.AssertNumberOfCalls(t, "HandleEvent", 2)
	m.AssertExpectations(t)
}

func TestEmitSymToken(t *testing.T) {
	reg := New()
	open := NewSym("open")
	hidden := NewSym("")
	var names []string

	_, err := reg.Listen([]*Sym{open, hidden}, func(ev *Event) {
		names = append(names, ev.Name())
	}, WithListenerMultiMatch(true))
	require.NoError(t, err)

	_, err = reg.Emit([]any{open, hidden})
	require.NoError(t, err)

	require.Equal(t, []string{"open", "unknown"}, names)
}

func TestEmitInvalidTypes(t *testing.T) {
	reg := New()

	_, err := reg.Emit(42)
	require.True(t, errors.Is(err, ErrInvalidType))

	_, err = reg.Emit([]any{"ok", 42})
	require.True(t, errors.Is(err, ErrInvalidType))
}

func TestEmitEmptyTypeString(t *testing.T) {
	reg := New()
	calls := 0
	_, err := reg.Listen("*", func(ev *Event) { calls++ })
	require.NoError(t, err)

	st, err := reg.Emit("")
	require.NoError(t, err)
	require.Equal(t, 0, st.Len())
	require.Empty(t, st.Types())
	require.Equal(t, 0, calls)
}

func TestEmitWithoutTargets(t *testing.T) {
	reg := New()
	var target any = "sentinel"

	_, err := reg.Listen("bare", func(ev *Event) {
		target = ev.Target()
	})
	require.NoError(t, err)

	_, err = reg.Emit("bare")
	require.NoError(t, err)
	require.Nil(t, target)
}

func TestEmitEmptiedTargetSet(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register("A"))
	reg.Unregister("A")

	calls := 0
	_, err := reg.Listen("ping", func(ev *Event) { calls++ })
	require.NoError(t, err)

	st, err := reg.Emit("ping")
	require.NoError(t, err)

	// A registry that once had targets keeps its fan-out semantics: an
	// emptied set means zero deliveries, not a target-less dispatch.
	require.Equal(t, 0, calls)
	require.Equal(t, 0, st.Len())
}
