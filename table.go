package wpe

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"
)

// LoaderInterface is the Go view of the table a backend exports under
// InterfaceSymbol. Only the first slot is used.
type LoaderInterface struct {
	// LoadObject returns the address of the named backend object.
	LoadObject func(name string) uintptr
}

// Binder fills table, a pointer to a struct of func fields, from the C
// function-pointer table at addr.
type Binder func(addr uintptr, table any) error

var errNilTable = errors.New("wpe: nil interface table")

// BindTable is the native Binder. Field i of the struct is bound to the i-th
// pointer-sized slot at addr with purego. Null slots leave the field nil, so
// callers decide which callbacks are mandatory.
func BindTable(addr uintptr, table any) error {
	if addr == 0 {
		return errNilTable
	}
	s, err := tableStruct(table)
	if err != nil {
		return err
	}

	// addr points into the backend's static data, not Go memory, so it is
	// reinterpreted without a uintptr to unsafe.Pointer conversion.
	base := *(*unsafe.Pointer)(unsafe.Pointer(&addr))
	slots := unsafe.Slice((*uintptr)(base), s.NumField())
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if slots[i] == 0 {
			f.Set(reflect.Zero(f.Type()))
			continue
		}
		registerFunc(f.Addr().Interface(), slots[i])
	}
	return nil
}

// MissingCallbacks returns the names of the nil func fields of table.
func MissingCallbacks(table any) []string {
	s, err := tableStruct(table)
	if err != nil {
		return nil
	}
	var missing []string
	for i := 0; i < s.NumField(); i++ {
		if s.Field(i).IsNil() {
			missing = append(missing, s.Type().Field(i).Name)
		}
	}
	return missing
}

func tableStruct(table any) (reflect.Value, error) {
	v := reflect.ValueOf(table)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("wpe: table must be a non-nil pointer to struct, got %T", table)
	}
	s := v.Elem()
	for i := 0; i < s.NumField(); i++ {
		f := s.Type().Field(i)
		if f.Type.Kind() != reflect.Func || !f.IsExported() {
			return reflect.Value{}, fmt.Errorf("wpe: table field %s must be an exported func", f.Name)
		}
	}
	return s, nil
}
