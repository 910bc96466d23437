// Package wpe loads a WPE backend implementation library at runtime and
// dispatches object requests to it.
//
// The backend is chosen, in order, by the build-time Backend variable, the
// WPE_BACKEND_LIBRARY environment variable (not in builds tagged
// wpe_release), or the platform's default library name. A program may also
// choose it explicitly with Init before first use.
//
// Backends either export a loader interface table under InterfaceSymbol, in
// which case objects are requested through its load_object callback, or
// export each object as a plain symbol.
//
// The functions of this package operate on a process-wide Loader and panic
// with a *FatalError when no backend can be used. Use Default, or New, for
// error returns instead.
package wpe

import "sync"

var defaultLoader = sync.OnceValue(func() *Loader {
	return New(DefaultStrategy())
})

// Default returns the process-wide Loader.
func Default() *Loader {
	return defaultLoader()
}

// LoadImplLibrary loads the backend library if it is not loaded yet.
func LoadImplLibrary() {
	if err := Default().Load(); err != nil {
		panic(err)
	}
}

// Init explicitly loads the named backend library and reports whether it is
// the loaded backend afterwards. It panics if name is empty.
func Init(name string) bool {
	err := Default().Init(name)
	if err == nil {
		return true
	}
	if IsFatal(err) {
		panic(err)
	}
	return false
}

// LoadedImplementationLibraryName returns the name of the loaded backend
// library, or "" if none is loaded yet.
func LoadedImplementationLibraryName() string {
	return Default().Name()
}

// LoadObject returns the address of the named backend object, or 0 if the
// backend does not provide it.
func LoadObject(name string) uintptr {
	addr, err := Default().LoadObject(name)
	if err != nil && IsFatal(err) {
		panic(err)
	}
	return addr
}
