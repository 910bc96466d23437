package wpe

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// state is published once and never changes afterwards.
type state struct {
	lib   Library
	name  string
	iface *LoaderInterface // nil when the backend exports no interface table
}

// Loader holds at most one backend library and dispatches object requests
// to it. The zero value is not usable; create one with New.
//
// A Loader is safe for concurrent use. Loading happens at most once; after
// that, reads take a single atomic load.
type Loader struct {
	strategy Strategy
	opener   Opener
	bind     Binder
	reporter *Reporter

	mu    sync.Mutex // serializes the transition to loaded
	state atomic.Pointer[state]
}

// Option configures a Loader.
type Option func(*Loader)

// WithOpener replaces the native dynamic loader.
func WithOpener(o Opener) Option {
	return func(l *Loader) {
		l.opener = o
	}
}

// WithBinder replaces BindTable for binding the loader interface table.
func WithBinder(b Binder) Option {
	return func(l *Loader) {
		l.bind = b
	}
}

// WithReporter sets where operator diagnostics go.
func WithReporter(r *Reporter) Option {
	return func(l *Loader) {
		l.reporter = r
	}
}

// New returns a Loader resolving its backend with strategy, or with
// DefaultStrategy if strategy is nil. Nothing is loaded until the first call
// to Load, Init or LoadObject.
func New(strategy Strategy, opts ...Option) *Loader {
	if strategy == nil {
		strategy = DefaultStrategy()
	}
	l := &Loader{
		strategy: strategy,
		opener:   NativeOpener{},
		bind:     BindTable,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.reporter == nil {
		l.reporter = NewReporter(nil)
	}
	return l
}

// Load loads the backend chosen by the strategy unless one is already
// loaded. Any failure is a *FatalError.
func (l *Loader) Load() error {
	if l.state.Load() != nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.Load() != nil {
		return nil
	}

	lib, name, err := l.strategy.Resolve(l.open)
	if err != nil {
		var oe *OpenError
		if !errors.As(err, &oe) {
			l.reporter.Reportf("%s\n", err)
		}
		return fatal(err)
	}
	l.publish(lib, name)
	return nil
}

// Init loads the named backend library explicitly. The first successful
// load wins: calling Init again with the same name succeeds without effect,
// while a different name fails with ErrAlreadyInitialized.
//
// Init fails with ErrFixedBackend when the backend was fixed at build time,
// and with an *OpenError when the library cannot be opened. Only an empty
// name is fatal.
func (l *Loader) Init(name string) error {
	if !l.strategy.Explicit() {
		return ErrFixedBackend
	}
	if name == "" {
		l.reporter.Reportf("%s\n", ErrInvalidLibraryName)
		return fatal(ErrInvalidLibraryName)
	}

	if s := l.state.Load(); s != nil {
		return l.reinit(s, name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if s := l.state.Load(); s != nil {
		return l.reinit(s, name)
	}

	lib, err := l.open(name, "interface loaded library (wpe_loader_init)")
	if err != nil {
		return err
	}
	l.publish(lib, name)
	return nil
}

func (l *Loader) reinit(s *state, name string) error {
	if s.name == name {
		return nil
	}
	l.reporter.Reportf("%s\n", ErrAlreadyInitialized)
	Logger().Warn("backend already initialized", "loaded", s.name, "requested", name)
	return fmt.Errorf("%w with %s", ErrAlreadyInitialized, s.name)
}

// Name returns the name of the loaded backend library, or "" if none is loaded.
func (l *Loader) Name() string {
	if s := l.state.Load(); s != nil {
		return s.name
	}
	return ""
}

// Loaded reports whether a backend library is loaded.
func (l *Loader) Loaded() bool {
	return l.state.Load() != nil
}

// HasInterface reports whether the loaded backend exports a loader interface table.
func (l *Loader) HasInterface() bool {
	s := l.state.Load()
	return s != nil && s.iface != nil
}

// LoadObject returns the address of the named backend object, loading the
// backend first if needed.
//
// Backends exporting a loader interface are asked through its load_object
// callback; the result is returned as is. Other backends are searched for a
// symbol of that name, and a miss yields 0 with an *ObjectError.
func (l *Loader) LoadObject(name string) (uintptr, error) {
	if err := l.Load(); err != nil {
		return 0, err
	}
	s := l.state.Load()

	if s.iface != nil {
		if s.iface.LoadObject == nil {
			err := fmt.Errorf("wpe_load_object: failed to load object with name '%s': %w", name, ErrMissingLoadObject)
			l.reporter.Reportf("%s\n", err)
			return 0, fatal(err)
		}
		Logger().Debug("dispatching through loader interface", "object", name)
		return s.iface.LoadObject(name), nil
	}

	addr, err := s.lib.Symbol(name)
	if err != nil {
		l.reporter.Reportf("wpe_load_object: failed to load object with name '%s'\n", name)
		return 0, &ObjectError{Name: name, Err: err}
	}
	return addr, nil
}

// open opens path and reports a failure describing the attempt with context.
func (l *Loader) open(path, context string) (Library, error) {
	lib, err := l.opener.Open(path)
	if err == nil && lib == nil {
		err = ErrNoBackend
	}
	if err != nil {
		oe := &OpenError{Path: path, Context: context, Err: err}
		l.reporter.Reportf("%s\n", oe)
		return nil, oe
	}
	return lib, nil
}

// publish must be called with l.mu held.
func (l *Loader) publish(lib Library, name string) {
	s := &state{lib: lib, name: name, iface: l.probeInterface(lib)}
	l.state.Store(s)
	Logger().Info("backend library loaded", "name", name, "interface", s.iface != nil)
}

func (l *Loader) probeInterface(lib Library) *LoaderInterface {
	addr, err := lib.Symbol(InterfaceSymbol)
	if err != nil || addr == 0 {
		Logger().Debug("backend exports no loader interface", "symbol", InterfaceSymbol, "error", err)
		return nil
	}
	iface := &LoaderInterface{}
	if err := l.bind(addr, iface); err != nil {
		Logger().Warn("cannot bind loader interface", "symbol", InterfaceSymbol, "error", err)
		return &LoaderInterface{}
	}
	if iface.LoadObject == nil {
		Logger().Warn("loader interface lacks load_object", "symbol", InterfaceSymbol)
	}
	return iface
}
