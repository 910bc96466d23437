package wpe

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

type fakeLibrary struct {
	symbols map[string]uintptr

	mu      sync.Mutex
	lookups []string
}

func (f *fakeLibrary) Symbol(name string) (uintptr, error) {
	f.mu.Lock()
	f.lookups = append(f.lookups, name)
	f.mu.Unlock()
	if addr := f.symbols[name]; addr != 0 {
		return addr, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrSymbolNotFound, name)
}

func (f *fakeLibrary) Lookups() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lookups...)
}

type fakeOpener struct {
	libs map[string]*fakeLibrary

	mu    sync.Mutex
	opens []string
}

func (o *fakeOpener) Open(path string) (Library, error) {
	o.mu.Lock()
	o.opens = append(o.opens, path)
	o.mu.Unlock()
	if lib, ok := o.libs[path]; ok {
		return lib, nil
	}
	return nil, errors.New(path + ": cannot open shared object file: No such file or directory")
}

func (o *fakeOpener) Opens() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opens...)
}

// tableBinder binds LoaderInterface tables from a map keyed by address.
func tableBinder(tables map[uintptr]LoaderInterface) Binder {
	return func(addr uintptr, table any) error {
		t, ok := tables[addr]
		if !ok {
			return errNilTable
		}
		*table.(*LoaderInterface) = t
		return nil
	}
}

type countingStrategy struct {
	Strategy
	runs atomic.Int32
}

func (s *countingStrategy) Resolve(open OpenFunc) (Library, string, error) {
	s.runs.Add(1)
	return s.Strategy.Resolve(open)
}

func noEnv(string) (string, bool) { return "", false }

func env(value string) func(string) (string, bool) {
	return func(string) (string, bool) { return value, true }
}

type fixture struct {
	opener *fakeOpener
	report *bytes.Buffer
	tables map[uintptr]LoaderInterface
}

func newFixture(libs map[string]*fakeLibrary) *fixture {
	return &fixture{
		opener: &fakeOpener{libs: libs},
		report: &bytes.Buffer{},
		tables: map[uintptr]LoaderInterface{},
	}
}

func (f *fixture) loader(s Strategy) *Loader {
	return New(s,
		WithOpener(f.opener),
		WithBinder(tableBinder(f.tables)),
		WithReporter(NewReporter(f.report, WithMessageBox(false))),
	)
}
