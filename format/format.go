// Package format provides a registry and interfaces for decision event
// serializers.
package format

import (
	"fmt"
	"sync"
)

var (
	formatDrivers = make(map[string]FormatDriver)
	lock          = &sync.RWMutex{}

	// ErrFormat is the base error for serializer failures.
	ErrFormat = fmt.Errorf("format error")
)

// DriverFormatError wraps a driver-specific error with its format name.
type DriverFormatError struct {
	Driver string
	Err    error
}

func (e *DriverFormatError) Error() string {
	return fmt.Sprintf("%s for %s format", e.Err.Error(), e.Driver)
}

func (e *DriverFormatError) Unwrap() []error {
	return []error{ErrFormat, e.Err}
}

// FormatDriver is a decision event serializer plugin. Prepare registers
// flags, Format turns one event into a partition key and an encoded
// payload.
type FormatDriver interface {
	Prepare() error
	Init() error
	Format(data interface{}) ([]byte, []byte, error)
}

// FormatInterface is the minimal interface the pipeline needs to
// serialize decision events.
type FormatInterface interface {
	Format(data interface{}) ([]byte, []byte, error)
}

// Format is a named serializer wrapper used by the registry.
type Format struct {
	FormatDriver
	name string
}

// Format serializes data and wraps errors with format metadata.
func (t *Format) Format(data interface{}) ([]byte, []byte, error) {
	key, text, err := t.FormatDriver.Format(data)
	if err != nil {
		err = &DriverFormatError{t.name, err}
	}
	return key, text, err
}

// RegisterFormatDriver registers and prepares a serializer under a name.
func RegisterFormatDriver(name string, t FormatDriver) {
	lock.Lock()
	formatDrivers[name] = t
	lock.Unlock()

	if err := t.Prepare(); err != nil {
		panic(err)
	}
}

// FindFormat returns an initialized serializer by name.
func FindFormat(name string) (*Format, error) {
	lock.RLock()
	t, ok := formatDrivers[name]
	lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %s not found", ErrFormat, name)
	}

	err := t.Init()
	if err != nil {
		err = &DriverFormatError{name, err}
	}
	return &Format{t, name}, err
}

// GetFormats returns the registered format names.
func GetFormats() []string {
	lock.RLock()
	defer lock.RUnlock()
	names := make([]string, 0, len(formatDrivers))
	for name := range formatDrivers {
		names = append(names, name)
	}
	return names
}
