//go:build windows
// +build windows

package wpe

import (
	"fmt"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/windows"
)

// loadLibrary loads a DLL on Windows
func loadLibrary(path string) (uintptr, error) {
	handle, err := windows.LoadLibrary(path)
	if err != nil {
		return 0, err
	}
	return uintptr(handle), nil
}

// lookupSymbol gets the procedure address from the module
func lookupSymbol(handle uintptr, name string) (uintptr, error) {
	proc, err := windows.GetProcAddress(windows.Handle(handle), name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %s", ErrSymbolNotFound, name, describeOSError(err))
	}
	return proc, nil
}

// registerFunc is a wrapper around purego.RegisterFunc that works with Windows procedures
func registerFunc(fn any, addr uintptr) {
	purego.RegisterFunc(fn, addr)
}
