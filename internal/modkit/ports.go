package modkit

import (
	"reflect"
	"sync"
)

// port registry by module name, filled during bootstrap so modules can find
// each other without import cycles
var (
	regMu sync.RWMutex
	reg   = map[string]any{}
)

// Register stores a module's port set under its name
func Register(name string, ports any) {
	regMu.Lock()
	reg[name] = ports
	regMu.Unlock()
}

// PortsAs fetches the ports registered under name as a T
func PortsAs[T any](name string) (T, bool) {
	regMu.RLock()
	v, ok := reg[name]
	regMu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	out, ok := v.(T)
	return out, ok
}

// ResetRegistry clears the registry between tests
func ResetRegistry() {
	regMu.Lock()
	reg = map[string]any{}
	regMu.Unlock()
}

// PortsOf pulls a T out of a module's Ports() bundle: the bundle itself, or
// any exported field when the bundle is a struct
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanInterface() {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortsOf panics when the module does not export a T
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic("modkit: module " + m.Name() + " does not export the requested port")
	}
	return v
}
