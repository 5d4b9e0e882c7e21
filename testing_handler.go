package libemit

import (
	"github.com/stretchr/testify/mock"
)

type mockHandler struct {
	mock.Mock

	tapHandle func(ev *Event)
}

func (m *mockHandler) HandleEvent(ev *Event) error {
	if m.tapHandle != nil {
		m.tapHandle(ev)
	}
	args := m.Called(ev)
	return args.Error(0)
}

type fakeHandler struct {
	HandleEventFunc func(ev *Event) error
}

func (f *fakeHandler) HandleEvent(ev *Event) error {
	if f.HandleEventFunc == nil {
		return nil
	}
	return f.HandleEventFunc(ev)
}

type fakeEmitter struct {
	ListenFunc     func(types, handler any, opts ...ListenerOption) (*Listener, error)
	OnceFunc       func(types, handler any, opts ...ListenerOption) (*Listener, error)
	EmitFunc       func(types any, args ...any) (*Status, error)
	RemoveFunc     func(v any) bool
	SetTypeFunc    func(typ any, opts ...TypeOption) error
	RegisterFunc   func(targets ...any) error
	UnregisterFunc func(targets ...any)
}

func (f *fakeEmitter) Listen(types, handler any, opts ...ListenerOption) (*Listener, error) {
	return f.ListenFunc(types, handler, opts...)
}

func (f *fakeEmitter) Once(types, handler any, opts ...ListenerOption) (*Listener, error) {
	return f.OnceFunc(types, handler, opts...)
}

func (f *fakeEmitter) Emit(types any, args ...any) (*Status, error) {
	return f.EmitFunc(types, args...)
}

func (f *fakeEmitter) Remove(v any) bool {
	return f.RemoveFunc(v)
}

func (f *fakeEmitter) SetType(typ any, opts ...TypeOption) error {
	return f.SetTypeFunc(typ, opts...)
}

func (f *fakeEmitter) Register(targets ...any) error {
	return f.RegisterFunc(targets...)
}

func (f *fakeEmitter) Unregister(targets ...any) {
	f.UnregisterFunc(targets...)
}
