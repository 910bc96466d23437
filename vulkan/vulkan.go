// Package vulkan wraps the Vulkan renderer backend interfaces that a WPE
// backend provides through wpe object dispatch.
package vulkan

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	wpe "github.com/kawai-network/wpe"
)

// Objects requested from the backend.
const (
	BackendInterfaceName = "_wpe_renderer_backend_vulkan_interface"
	TargetInterfaceName  = "_wpe_renderer_backend_vulkan_target_interface"
)

var (
	// ErrNoInterface is returned when the backend returns a null interface.
	ErrNoInterface = errors.New("vulkan: backend provides no interface")
	// ErrMissingCallback is returned when an interface lacks a callback.
	ErrMissingCallback = errors.New("vulkan: interface is missing a callback")
	// ErrDestroyed is returned when a destroyed backend or target is used.
	ErrDestroyed = errors.New("vulkan: use after destroy")
)

// ObjectLoader provides backend objects by name. *wpe.Loader implements it.
type ObjectLoader interface {
	LoadObject(name string) (uintptr, error)
}

// BackendInterface mirrors struct wpe_renderer_backend_vulkan_interface.
type BackendInterface struct {
	Create      func() uintptr
	Destroy     func(data uintptr)
	GetInstance func(data uintptr) uintptr
}

// TargetInterface mirrors struct wpe_renderer_backend_vulkan_target_interface.
type TargetInterface struct {
	Create     func(target uintptr, hostFD int32) uintptr
	Destroy    func(data uintptr)
	Initialize func(targetData, backendData uintptr, width, height uint32)
}

type options struct {
	bind wpe.Binder
}

// Option configures NewBackend and NewTarget.
type Option func(*options)

// WithBinder replaces wpe.BindTable.
func WithBinder(b wpe.Binder) Option {
	return func(o *options) {
		o.bind = b
	}
}

func bindInterface(loader ObjectLoader, name string, table any, opts []Option) error {
	o := options{bind: wpe.BindTable}
	for _, opt := range opts {
		opt(&o)
	}

	addr, err := loader.LoadObject(name)
	if err != nil {
		return fmt.Errorf("vulkan: loading %s: %w", name, err)
	}
	if addr == 0 {
		return fmt.Errorf("%w: %s", ErrNoInterface, name)
	}
	if err := o.bind(addr, table); err != nil {
		return fmt.Errorf("vulkan: binding %s: %w", name, err)
	}
	if missing := wpe.MissingCallbacks(table); len(missing) != 0 {
		return fmt.Errorf("%w: %s lacks %s", ErrMissingCallback, name, strings.Join(missing, ", "))
	}
	return nil
}

// Backend is a Vulkan renderer backend instance created by the loaded backend.
type Backend struct {
	iface     *BackendInterface
	data      uintptr
	once      sync.Once
	destroyed atomic.Bool
}

// NewBackend asks the backend for its Vulkan interface and creates an instance.
func NewBackend(loader ObjectLoader, opts ...Option) (*Backend, error) {
	iface := &BackendInterface{}
	if err := bindInterface(loader, BackendInterfaceName, iface, opts); err != nil {
		return nil, err
	}
	b := &Backend{iface: iface, data: iface.Create()}
	wpe.Logger().Debug("vulkan renderer backend created", "data", b.data)
	return b, nil
}

// Instance returns the backend's VkInstance handle, or 0 once the backend
// is destroyed.
func (b *Backend) Instance() uintptr {
	if b.destroyed.Load() {
		return 0
	}
	return b.iface.GetInstance(b.data)
}

// Destroy releases the backend instance. Calls after the first do nothing.
func (b *Backend) Destroy() {
	b.once.Do(func() {
		b.destroyed.Store(true)
		b.iface.Destroy(b.data)
		b.data = 0
	})
}

// lastToken identifies targets to the backend in place of a native pointer.
var lastToken atomic.Uintptr

// Target is a render target created by the loaded backend.
type Target struct {
	iface     *TargetInterface
	data      uintptr
	token     uintptr
	once      sync.Once
	destroyed atomic.Bool
}

// NewTarget creates a render target connected to the host through hostFD.
func NewTarget(loader ObjectLoader, hostFD int32, opts ...Option) (*Target, error) {
	iface := &TargetInterface{}
	if err := bindInterface(loader, TargetInterfaceName, iface, opts); err != nil {
		return nil, err
	}
	t := &Target{iface: iface, token: lastToken.Add(1)}
	t.data = iface.Create(t.token, hostFD)
	wpe.Logger().Debug("vulkan renderer target created", "token", t.token, "host_fd", hostFD)
	return t, nil
}

// Token returns the opaque value handed to the backend as the target.
func (t *Target) Token() uintptr {
	return t.token
}

// Initialize attaches the target to backend with the given size. Both must
// be live; otherwise ErrDestroyed is returned and the backend is not called.
func (t *Target) Initialize(backend *Backend, width, height uint32) error {
	if t.destroyed.Load() || backend == nil || backend.destroyed.Load() {
		return ErrDestroyed
	}
	t.iface.Initialize(t.data, backend.data, width, height)
	return nil
}

// Destroy releases the target. Calls after the first do nothing.
func (t *Target) Destroy() {
	t.once.Do(func() {
		t.destroyed.Store(true)
		t.iface.Destroy(t.data)
		t.data = 0
	})
}
