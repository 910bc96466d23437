package wpe

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBackend is returned when no backend library could be loaded.
	ErrNoBackend = errors.New("wpe: no backend library loaded")
	// ErrInvalidLibraryName is returned by Init for an empty library name.
	ErrInvalidLibraryName = errors.New("wpe_loader_init: invalid implementation library name")
	// ErrAlreadyInitialized is returned by Init when a different library is already loaded.
	ErrAlreadyInitialized = errors.New("wpe_loader_init: already initialized")
	// ErrFixedBackend is returned by Init when the backend was chosen at build time.
	ErrFixedBackend = errors.New("wpe_loader_init: backend is fixed at build time")
	// ErrMissingLoadObject is returned when the loader interface lacks its load_object callback.
	ErrMissingLoadObject = errors.New("backend doesn't implement load_object vfunc")
	// ErrSymbolNotFound is returned when a library does not export a symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// OpenError records a failed attempt to open a backend library.
type OpenError struct {
	Path    string
	Context string
	Err     error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("wpe: could not load %s (%s): %s", e.Context, e.Path, describeOSError(e.Err))
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// ObjectError records a failed raw symbol lookup during dispatch.
type ObjectError struct {
	Name string
	Err  error
}

func (e *ObjectError) Error() string {
	return fmt.Sprintf("wpe_load_object: failed to load object with name '%s': %v", e.Name, e.Err)
}

func (e *ObjectError) Unwrap() error {
	return e.Err
}

// FatalError marks a failure the process cannot recover from: without a
// usable backend nothing else works. The package-level API panics with it and
// commands are expected to exit.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return "fatal: " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatal(err error) error {
	return &FatalError{Err: err}
}

// IsFatal reports whether err is, or wraps, a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
