package libemit

import (
	"sync"

	"github.com/pkg/errors"
)

// The extension table is package-global: a target is bound to at most one
// proxy across all registries, mirroring how extended objects carry a single
// hidden binding in comparable systems.
var (
	proxyLock sync.Mutex
	proxies   = make(map[any]*Proxy)
)

// Proxy gives a registered target an emitter-shaped surface of its own. Every
// call forwards to the shared registry, so listeners attached through a proxy
// observe events for every target, not just the proxy's own.
type Proxy struct {
	e      Emitter
	reg    *Registry
	target any
}

// Extend registers target on r and binds a Proxy to it. A target already
// bound elsewhere is rejected with ErrAlreadyExtended unless r was built
// WithOverwrite(true), in which case the old binding is released first.
func Extend(r *Registry, target any) (*Proxy, error) {
	if r == nil {
		return nil, ErrNilRegistry
	}
	if !validTarget(target) {
		return nil, errors.Wrapf(ErrInvalidTarget, "%T", target)
	}
	proxyLock.Lock()
	defer proxyLock.Unlock()
	if cur, ok := proxies[target]; ok {
		if !r.Overwrite() {
			return nil, errors.Wrapf(ErrAlreadyExtended, "%v", target)
		}
		cur.reg.Unregister(target)
	}
	if err := r.Register(target); err != nil {
		return nil, err
	}
	p := &Proxy{e: r, reg: r, target: target}
	proxies[target] = p
	return p, nil
}

// Extended returns the proxy bound to target, if any.
func Extended(target any) (*Proxy, bool) {
	proxyLock.Lock()
	defer proxyLock.Unlock()
	p, ok := proxies[target]
	return p, ok
}

// Release unbinds whatever proxy holds target and unregisters the target from
// its registry. It reports whether a binding existed.
func Release(target any) bool {
	proxyLock.Lock()
	p, ok := proxies[target]
	if ok {
		delete(proxies, target)
	}
	proxyLock.Unlock()
	if !ok {
		return false
	}
	p.reg.Unregister(target)
	return true
}

// Target returns the value the proxy is bound to.
func (p *Proxy) Target() any { return p.target }

// Registry returns the registry the proxy dispatches through.
func (p *Proxy) Registry() *Registry { return p.reg }

// On subscribes a handler through the underlying registry.
func (p *Proxy) On(types, handler any, opts ...ListenerOption) (*Listener, error) {
	return p.e.Listen(types, handler, opts...)
}

// Once subscribes a single-use handler through the underlying registry.
func (p *Proxy) Once(types, handler any, opts ...ListenerOption) (*Listener, error) {
	return p.e.Once(types, handler, opts...)
}

// Off removes a listener or event type from the underlying registry.
func (p *Proxy) Off(v any) bool {
	return p.e.Remove(v)
}

// Emit dispatches through the underlying registry, reaching every target.
func (p *Proxy) Emit(types any, args ...any) (*Status, error) {
	return p.e.Emit(types, args...)
}

// Set configures an event type on the underlying registry.
func (p *Proxy) Set(typ any, opts ...TypeOption) error {
	return p.e.SetType(typ, opts...)
}

// Release unbinds this proxy, unless the target was already rebound to
// another one.
func (p *Proxy) Release() bool {
	proxyLock.Lock()
	cur, ok := proxies[p.target]
	if !ok || cur != p {
		proxyLock.Unlock()
		return false
	}
	delete(proxies, p.target)
	proxyLock.Unlock()
	p.reg.Unregister(p.target)
	return true
}
