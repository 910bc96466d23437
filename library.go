package wpe

// Library is an opened dynamic library.
type Library interface {
	// Symbol returns the address of the named symbol, or 0 and an error
	// if the library does not export it.
	Symbol(name string) (uintptr, error)
}

// Opener opens dynamic libraries by path.
type Opener interface {
	Open(path string) (Library, error)
}

// NativeOpener opens libraries with the platform's dynamic loader.
// Handles it returns are never closed.
type NativeOpener struct{}

// Open loads the library at path.
func (NativeOpener) Open(path string) (Library, error) {
	h, err := loadLibrary(path)
	if err != nil {
		return nil, err
	}
	return nativeLibrary{handle: h, path: path}, nil
}

type nativeLibrary struct {
	handle uintptr
	path   string
}

func (l nativeLibrary) Symbol(name string) (uintptr, error) {
	return lookupSymbol(l.handle, name)
}
