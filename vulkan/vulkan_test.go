package vulkan

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wpe "github.com/kawai-network/wpe"
)

type objects map[string]uintptr

func (o objects) LoadObject(name string) (uintptr, error) {
	if addr, ok := o[name]; ok {
		return addr, nil
	}
	return 0, fmt.Errorf("%w: %s", wpe.ErrSymbolNotFound, name)
}

const (
	backendAddr = uintptr(0x10)
	targetAddr  = uintptr(0x20)
)

// fakeBackend records calls made through the bound tables.
type fakeBackend struct {
	calls      []string
	targetFD   int32
	target     uintptr
	width      uint32
	height     uint32
	dropTarget bool
}

func (f *fakeBackend) binder() wpe.Binder {
	return func(addr uintptr, table any) error {
		switch tbl := table.(type) {
		case *BackendInterface:
			if addr != backendAddr {
				return errors.New("unexpected address")
			}
			*tbl = BackendInterface{
				Create: func() uintptr {
					f.calls = append(f.calls, "backend.create")
					return 0xb0
				},
				Destroy: func(data uintptr) {
					f.calls = append(f.calls, fmt.Sprintf("backend.destroy(%#x)", data))
				},
				GetInstance: func(data uintptr) uintptr {
					f.calls = append(f.calls, fmt.Sprintf("backend.get_instance(%#x)", data))
					return 0x1457
				},
			}
		case *TargetInterface:
			if addr != targetAddr {
				return errors.New("unexpected address")
			}
			*tbl = TargetInterface{
				Create: func(target uintptr, hostFD int32) uintptr {
					f.calls = append(f.calls, "target.create")
					f.target, f.targetFD = target, hostFD
					return 0x70
				},
				Destroy: func(data uintptr) {
					f.calls = append(f.calls, fmt.Sprintf("target.destroy(%#x)", data))
				},
				Initialize: func(targetData, backendData uintptr, width, height uint32) {
					f.calls = append(f.calls, fmt.Sprintf("target.initialize(%#x, %#x)", targetData, backendData))
					f.width, f.height = width, height
				},
			}
			if f.dropTarget {
				tbl.Initialize = nil
			}
		default:
			return fmt.Errorf("unexpected table %T", table)
		}
		return nil
	}
}

func TestBackendAndTarget(t *testing.T) {
	f := &fakeBackend{}
	loader := objects{BackendInterfaceName: backendAddr, TargetInterfaceName: targetAddr}

	b, err := NewBackend(loader, WithBinder(f.binder()))
	require.NoError(t, err)
	assert.Equal(t, uintptr(0x1457), b.Instance())

	tgt, err := NewTarget(loader, 42, WithBinder(f.binder()))
	require.NoError(t, err)
	assert.Equal(t, int32(42), f.targetFD)
	assert.Equal(t, tgt.Token(), f.target)
	assert.NotZero(t, tgt.Token())

	require.NoError(t, tgt.Initialize(b, 1280, 720))
	assert.Equal(t, uint32(1280), f.width)
	assert.Equal(t, uint32(720), f.height)

	tgt.Destroy()
	tgt.Destroy()
	b.Destroy()
	b.Destroy()

	assert.Equal(t, []string{
		"backend.create",
		"backend.get_instance(0xb0)",
		"target.create",
		"target.initialize(0x70, 0xb0)",
		"target.destroy(0x70)",
		"backend.destroy(0xb0)",
	}, f.calls)
}

func TestUseAfterDestroy(t *testing.T) {
	f := &fakeBackend{}
	loader := objects{BackendInterfaceName: backendAddr, TargetInterfaceName: targetAddr}

	b, err := NewBackend(loader, WithBinder(f.binder()))
	require.NoError(t, err)
	tgt, err := NewTarget(loader, 7, WithBinder(f.binder()))
	require.NoError(t, err)

	assert.ErrorIs(t, tgt.Initialize(nil, 640, 480), ErrDestroyed)

	b.Destroy()
	assert.Zero(t, b.Instance())
	assert.ErrorIs(t, tgt.Initialize(b, 640, 480), ErrDestroyed)

	live, err := NewBackend(loader, WithBinder(f.binder()))
	require.NoError(t, err)
	tgt.Destroy()
	assert.ErrorIs(t, tgt.Initialize(live, 640, 480), ErrDestroyed)

	assert.Equal(t, []string{
		"backend.create",
		"target.create",
		"backend.destroy(0xb0)",
		"backend.create",
		"target.destroy(0x70)",
	}, f.calls)
}

func TestTargetTokensAreDistinct(t *testing.T) {
	f := &fakeBackend{}
	loader := objects{TargetInterfaceName: targetAddr}

	a, err := NewTarget(loader, 3, WithBinder(f.binder()))
	require.NoError(t, err)
	b, err := NewTarget(loader, 4, WithBinder(f.binder()))
	require.NoError(t, err)
	assert.NotEqual(t, a.Token(), b.Token())
}

func TestMissingInterface(t *testing.T) {
	f := &fakeBackend{}

	_, err := NewBackend(objects{}, WithBinder(f.binder()))
	assert.ErrorIs(t, err, wpe.ErrSymbolNotFound)

	_, err = NewBackend(objects{BackendInterfaceName: 0}, WithBinder(f.binder()))
	assert.ErrorIs(t, err, ErrNoInterface)
	assert.Empty(t, f.calls)
}

func TestMissingCallback(t *testing.T) {
	f := &fakeBackend{dropTarget: true}
	loader := objects{TargetInterfaceName: targetAddr}

	_, err := NewTarget(loader, 3, WithBinder(f.binder()))
	require.ErrorIs(t, err, ErrMissingCallback)
	assert.ErrorContains(t, err, "Initialize")
	assert.Empty(t, f.calls)
}

func TestThroughLoader(t *testing.T) {
	f := &fakeBackend{}
	dispatch := map[string]uintptr{BackendInterfaceName: backendAddr}
	loader := wpe.New(fixedLibrary{}, wpe.WithOpener(fixedLibrary{}), wpe.WithBinder(func(addr uintptr, table any) error {
		*table.(*wpe.LoaderInterface) = wpe.LoaderInterface{
			LoadObject: func(name string) uintptr { return dispatch[name] },
		}
		return nil
	}))

	b, err := NewBackend(loader, WithBinder(f.binder()))
	require.NoError(t, err)
	assert.Equal(t, uintptr(0x1457), b.Instance())
	assert.Equal(t, "libWPEBackend-test.so", loader.Name())
}

// fixedLibrary is a strategy, opener and library exporting only a loader interface.
type fixedLibrary struct{}

func (fixedLibrary) Resolve(open wpe.OpenFunc) (wpe.Library, string, error) {
	lib, err := open("libWPEBackend-test.so", "test backend")
	return lib, "libWPEBackend-test.so", err
}

func (fixedLibrary) Explicit() bool { return false }

func (fixedLibrary) Open(string) (wpe.Library, error) { return fixedLibrary{}, nil }

func (fixedLibrary) Symbol(name string) (uintptr, error) {
	if name == wpe.InterfaceSymbol {
		return 0x1, nil
	}
	return 0, wpe.ErrSymbolNotFound
}
