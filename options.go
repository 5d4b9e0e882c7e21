package libemit

import (
	"github.com/charmbracelet/log"
)

const (
	// DefaultDelimiter separates event names inside a compound type string.
	DefaultDelimiter = " "
	// DefaultWildcard is the token whose listeners match every emitted type.
	DefaultWildcard = "*"
)

type (
	// Option configures a Registry at construction time.
	Option func(cfg *config)

	// ListenerOption configures a single Listener. Listener settings override
	// type-level and registry-level ones.
	ListenerOption func(opts *listenerOptions)

	// TypeOption configures a single event type through Registry.SetType.
	TypeOption func(opts *typeOptions)

	config struct {
		delimiter     string
		wildcard      string
		multiMatch    bool
		overwrite     bool
		targets       []any
		source        TargetSource
		onDemand      bool
		setupEvent    SetupEvent
		setupListener SetupListener
		logger        logger
	}

	listenerOptions struct {
		once       *bool
		multiMatch *bool
		setupEvent SetupEvent
	}

	typeOptions struct {
		oneTime   *bool
		keepState *int
		stateful  *bool
	}

	// effective is the option view a single delivery runs under, composed from
	// the registry, type and listener layers, later layers winning.
	effective struct {
		once       bool
		multiMatch bool
		setupEvent SetupEvent
	}
)

func defaultConfig() config {
	return config{
		delimiter: DefaultDelimiter,
		wildcard:  DefaultWildcard,
		logger:    noopLogger{},
	}
}

// WithDelimiter sets the separator used to split compound type strings.
// Empty delimiters are ignored.
func WithDelimiter(delimiter string) Option {
	return func(cfg *config) {
		if delimiter == "" {
			return
		}
		cfg.delimiter = delimiter
	}
}

// WithWildcard sets the token whose listeners receive every emitted type.
// Empty wildcards are ignored.
func WithWildcard(wildcard string) Option {
	return func(cfg *config) {
		if wildcard == "" {
			return
		}
		cfg.wildcard = wildcard
	}
}

// WithMultiMatch sets the registry default for repeated delivery: when true, a
// listener subscribed to several of the emitted types is invoked once per
// matching type instead of at most once per target.
func WithMultiMatch(multiMatch bool) Option {
	return func(cfg *config) {
		cfg.multiMatch = multiMatch
	}
}

// WithOverwrite allows Extend to rebind targets that are already extended
// elsewhere.
func WithOverwrite(overwrite bool) Option {
	return func(cfg *config) {
		cfg.overwrite = overwrite
	}
}

// WithTargets registers a fixed set of dispatch targets. Targets must be
// comparable; invalid ones are dropped at construction time.
func WithTargets(targets ...any) Option {
	return func(cfg *config) {
		cfg.targets = append(cfg.targets, targets...)
	}
}

// WithTargetSource installs a callback that resolves the target set for each
// emit pass. When set, it takes precedence over any fixed target set.
func WithTargetSource(source TargetSource) Option {
	return func(cfg *config) {
		cfg.source = source
	}
}

// WithOnDemandTargets controls when a target source is consulted: on every
// emit pass when true, once on first use otherwise.
func WithOnDemandTargets(onDemand bool) Option {
	return func(cfg *config) {
		cfg.onDemand = onDemand
	}
}

// WithSetupEvent installs a registry-wide callback invoked after each Event is
// constructed. A listener-level setup callback replaces it for that listener.
func WithSetupEvent(setup SetupEvent) Option {
	return func(cfg *config) {
		cfg.setupEvent = setup
	}
}

// WithSetupListener installs a callback invoked after each Listener is
// constructed.
func WithSetupListener(setup SetupListener) Option {
	return func(cfg *config) {
		cfg.setupListener = setup
	}
}

// WithLogger routes internal diagnostics through the given logger.
func WithLogger(l *log.Logger) Option {
	return func(cfg *config) {
		if l == nil {
			return
		}
		cfg.logger = newCharmLogger(l)
	}
}

// withLogger injects an internal logger implementation directly.
func withLogger(l logger) Option {
	return func(cfg *config) {
		if l == nil {
			return
		}
		cfg.logger = l
	}
}

// WithOnce sets whether the listener unsubscribes itself after its first
// delivery, overriding any one-time default configured for the event type.
func WithOnce(once bool) ListenerOption {
	return func(opts *listenerOptions) {
		opts.once = &once
	}
}

// WithListenerMultiMatch overrides the registry's multi-match default for this
// listener only.
func WithListenerMultiMatch(multiMatch bool) ListenerOption {
	return func(opts *listenerOptions) {
		opts.multiMatch = &multiMatch
	}
}

// WithListenerSetup installs a setup callback invoked for each Event delivered
// to this listener, replacing the registry-wide one.
func WithListenerSetup(setup SetupEvent) ListenerOption {
	return func(opts *listenerOptions) {
		opts.setupEvent = setup
	}
}

// WithOneTime sets whether listeners of the type unsubscribe after their first
// delivery, unless they specify their own once setting.
func WithOneTime(oneTime bool) TypeOption {
	return func(opts *typeOptions) {
		opts.oneTime = &oneTime
	}
}

// WithKeepState makes the type stateful and bounds its replay history to the n
// most recent events. Values below one are ignored.
func WithKeepState(n int) TypeOption {
	return func(opts *typeOptions) {
		if n < 1 {
			return
		}
		opts.keepState = &n
	}
}

// WithStateful toggles history recording for the type. Enabling it without
// WithKeepState keeps DefaultKeepState events; disabling it discards any
// recorded history.
func WithStateful(stateful bool) TypeOption {
	return func(opts *typeOptions) {
		opts.stateful = &stateful
	}
}

// compose flattens the three option layers into the view one delivery uses.
// td may be nil when the type has never been configured.
func compose(cfg *config, td *TypeData, lo *listenerOptions) effective {
	eff := effective{
		multiMatch: cfg.multiMatch,
		setupEvent: cfg.setupEvent,
	}
	if td != nil {
		eff.once = td.oneTime
	}
	if lo != nil {
		if lo.once != nil {
			eff.once = *lo.once
		}
		if lo.multiMatch != nil {
			eff.multiMatch = *lo.multiMatch
		}
		if lo.setupEvent != nil {
			eff.setupEvent = lo.setupEvent
		}
	}
	return eff
}
