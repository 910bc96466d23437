package wpe

import (
	"fmt"
	"os"
	"runtime"
)

const (
	// InterfaceSymbol is the symbol under which a backend exports its loader interface table.
	InterfaceSymbol = "_wpe_loader_interface"
	// EnvBackendLibrary names the environment variable holding an operator-supplied backend path.
	EnvBackendLibrary = "WPE_BACKEND_LIBRARY"
	// DefaultBackendBase is the base name of the default backend library.
	DefaultBackendBase = "WPEBackend-default"
)

// Backend is the backend library fixed at build time. When non-empty, runtime
// discovery is disabled entirely and Init is refused. Set it with
//
//	go build -ldflags "-X github.com/kawai-network/wpe.Backend=libWPEBackend-fdo-1.0.so"
var Backend string

// OpenFunc opens path, describing the attempt with context in diagnostics.
type OpenFunc func(path, context string) (Library, error)

// Strategy decides which backend library the lazy load path opens.
type Strategy interface {
	// Resolve opens the backend and returns it with the name to record.
	Resolve(open OpenFunc) (Library, string, error)
	// Explicit reports whether Init may choose the backend at runtime.
	Explicit() bool
}

// FixedBackend loads exactly Path and nothing else.
type FixedBackend struct {
	Path string
}

func (s FixedBackend) Resolve(open OpenFunc) (Library, string, error) {
	lib, err := open(s.Path, "compile-time defined WPE_BACKEND")
	if err != nil {
		return nil, "", err
	}
	return lib, s.Path, nil
}

func (FixedBackend) Explicit() bool { return false }

// Discovery consults the environment (when allowed) and then falls back to a
// default library name.
type Discovery struct {
	EnvVar      string
	AllowEnv    bool
	DefaultName string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

func (s Discovery) Resolve(open OpenFunc) (Library, string, error) {
	if path, ok := s.envLibrary(); ok {
		// A failing override is fatal; the default is not tried.
		lib, err := open(path, fmt.Sprintf("specified %s(%s)", s.EnvVar, path))
		if err != nil {
			return nil, "", err
		}
		return lib, path, nil
	}

	if s.DefaultName == "" {
		return nil, "", ErrNoBackend
	}
	lib, err := open(s.DefaultName, "Default backend library")
	if err != nil {
		return nil, "", err
	}
	return lib, s.DefaultName, nil
}

func (Discovery) Explicit() bool { return true }

func (s Discovery) envLibrary() (string, bool) {
	if !s.AllowEnv || s.EnvVar == "" {
		return "", false
	}
	lookup := s.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	path, ok := lookup(s.EnvVar)
	if !ok || path == "" {
		return "", false
	}
	return path, true
}

// DefaultStrategy returns the strategy of this build: FixedBackend when
// Backend is set, Discovery otherwise. Release builds (-tags wpe_release)
// ignore the environment.
func DefaultStrategy() Strategy {
	if Backend != "" {
		return FixedBackend{Path: Backend}
	}
	return Discovery{
		EnvVar:      EnvBackendLibrary,
		AllowEnv:    !releaseBuild,
		DefaultName: DefaultLibraryName(runtime.GOOS),
	}
}
