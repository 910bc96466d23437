//go:build !windows
// +build !windows

package wpe

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// loadLibrary loads a shared library on Unix-like systems
func loadLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW)
}

// lookupSymbol resolves name in the library. A missing symbol is not an error
// the dynamic loader reports itself, so purego's error is wrapped with the name.
func lookupSymbol(handle uintptr, name string) (uintptr, error) {
	addr, err := purego.Dlsym(handle, name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrSymbolNotFound, name, err)
	}
	if addr == 0 {
		return 0, fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
	}
	return addr, nil
}

// registerFunc is a wrapper around purego.RegisterFunc
func registerFunc(fn any, addr uintptr) {
	purego.RegisterFunc(fn, addr)
}
