package libemit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureEvent(t *testing.T, reg *Registry, typ string) func(args ...any) *Event {
	t.Helper()
	var last *Event
	_, err := reg.Listen(typ, func(ev *Event) {
		last = ev
	})
	require.NoError(t, err)
	return func(args ...any) *Event {
		_, err := reg.Emit(typ, args...)
		require.NoError(t, err)
		require.NotNil(t, last)
		return last
	}
}

func TestEventPayloadExtraction(t *testing.T) {
	reg := New()
	emit := captureEvent(t, reg, "load")

	payload := map[string]any{"who": "world"}
	ev := emit(payload, "extra")
	require.Equal(t, payload, ev.Data())
	// A payload object stays in the argument list.
	require.Len(t, ev.Args(), 2)
	require.Equal(t, payload, ev.Args()[0])

	ev = emit(42, "extra")
	require.Nil(t, ev.Data())
	require.Equal(t, []any{42, "extra"}, ev.Args())
	require.Same(t, ev, ev.Orig())
	require.Nil(t, ev.Prev())

	ev = emit()
	require.Nil(t, ev.Data())
	require.Empty(t, ev.Args())

	type box struct{ n int }
	ev = emit(box{n: 7})
	require.Equal(t, box{n: 7}, ev.Data())

	ev = emit(&box{n: 9})
	require.Equal(t, &box{n: 9}, ev.Data())

	ev = emit(nil, "tail")
	require.Nil(t, ev.Data())
	require.Equal(t, []any{nil, "tail"}, ev.Args())
}

func TestEventForwarding(t *testing.T) {
	reg := New()
	emitFirst := captureEvent(t, reg, "first")
	emitSecond := captureEvent(t, reg, "second")
	emitThird := captureEvent(t, reg, "third")

	payload := map[string]any{"who": "world"}
	first := emitFirst(payload)
	second := emitSecond(first, "hop")
	third := emitThird(second)

	// A forwarded event hands its payload and origin down the chain and is
	// shifted out of the argument list.
	require.Equal(t, payload, second.Data())
	require.Same(t, first, second.Orig())
	require.Same(t, first, second.Prev())
	require.Equal(t, []any{"hop"}, second.Args())

	require.Equal(t, payload, third.Data())
	require.Same(t, first, third.Orig())
	require.Same(t, second, third.Prev())
	require.Empty(t, third.Args())

	// Forwarding never rewrites the earlier events.
	require.Equal(t, []any{payload}, first.Args())
	require.Same(t, first, first.Orig())
}

func TestEventForwardingNilEvent(t *testing.T) {
	reg := New()
	emit := captureEvent(t, reg, "load")

	var none *Event
	ev := emit(none, "tail")
	require.Nil(t, ev.Data())
	require.Nil(t, ev.Prev())
	require.Same(t, ev, ev.Orig())
	require.Equal(t, []any{none, "tail"}, ev.Args())
}

func TestEventNames(t *testing.T) {
	reg := New()

	var names []string
	_, err := reg.Listen([]any{"plain", NewSym("fancy"), NewSym("")}, func(ev *Event) {
		names = append(names, ev.Name())
	}, WithListenerMultiMatch(true))
	require.NoError(t, err)

	_, err = reg.Emit([]any{"plain", NewSym("ghost")})
	require.NoError(t, err)
	// The second Sym is a different token; only the wildcard would match it.
	require.Equal(t, []string{"plain"}, names)

	require.Equal(t, "fancy", NewSym("fancy").String())
	require.Equal(t, "unknown", NewSym("").String())
}

func TestEventString(t *testing.T) {
	reg := New(WithTargets("w"))
	emit := captureEvent(t, reg, "greet")

	ev := emit("x")
	require.Equal(t, "Event{type=greet,target=w,args=1}", fmt.Sprintf("%s", ev))
}

func TestEventSetupCallback(t *testing.T) {
	var seen []any
	reg := New(WithSetupEvent(func(ev *Event) {
		// The callback observes a fully built event.
		seen = append(seen, ev.Data())
	}))

	_, err := reg.Listen("ready", func(ev *Event) {})
	require.NoError(t, err)

	payload := map[string]any{"ok": true}
	_, err = reg.Emit("ready", payload)
	require.NoError(t, err)

	require.Equal(t, []any{payload}, seen)
}
