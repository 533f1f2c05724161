// Package state implements pluggable stores for named generator states.
//
// A stream is a named Rogue generator whose state outlives a single process,
// so that consecutive requests continue the same random sequence.
package state

import (
	"context"
	"errors"
	"sync"

	"github.com/MestreLion/roguestats/pkg/stop"
)

var (
	driversM sync.RWMutex
	drivers  = make(map[string]Driver)
)

// Driver is the interface used to initialize a new type of Store.
type Driver interface {
	NewStore(optionBytes []byte) (Store, error)
}

// ErrStateNotFound is returned by Load when a stream has no saved state.
var ErrStateNotFound = errors.New("generator state not found")

// ErrDriverDoesNotExist is the error returned by NewStore when a store driver
// with that name does not exist.
var ErrDriverDoesNotExist = errors.New("state store driver with that name does not exist")

// ErrInvalidStream is returned for an empty stream name.
var ErrInvalidStream = errors.New("invalid stream name")

// UpdateFunc receives the current state of a stream and whether it existed,
// and returns the state to save.
// Returning an error aborts the update and leaves the stream untouched.
type UpdateFunc func(current int64, found bool) (int64, error)

// Store is an interface that abstracts saving and restoring the state of
// named generator streams.
type Store interface {
	// Load returns the saved state of stream.
	//
	// If the stream has no saved state, Load returns ErrStateNotFound.
	Load(ctx context.Context, stream string) (int64, error)

	// Save stores value as the state of stream.
	Save(ctx context.Context, stream string, value int64) error

	// Update atomically replaces the state of stream with the result of fn.
	//
	// Concurrent Updates of one stream are serialized, so fn may advance a
	// generator without racing other callers.
	Update(ctx context.Context, stream string, fn UpdateFunc) error

	// Stopper is an interface that expects a Stop method to stop the Store.
	// For more details see the documentation in the stop package.
	stop.Stopper
}

// RegisterDriver makes a Driver available by the provided name.
//
// If called twice with the same name, the name is blank, or if the provided
// Driver is nil, this function panics.
func RegisterDriver(name string, d Driver) {
	if name == "" {
		panic("state: could not register a Driver with an empty name")
	}
	if d == nil {
		panic("state: could not register a nil Driver")
	}

	driversM.Lock()
	defer driversM.Unlock()

	if _, dup := drivers[name]; dup {
		panic("state: RegisterDriver called twice for " + name)
	}

	drivers[name] = d
}

// NewStore attempts to initialize a new Store given a name from the list of
// registered Drivers.
//
// If a driver does not exist, returns ErrDriverDoesNotExist.
func NewStore(name string, optionBytes []byte) (Store, error) {
	driversM.RLock()
	defer driversM.RUnlock()

	d, ok := drivers[name]
	if !ok {
		return nil, ErrDriverDoesNotExist
	}

	return d.NewStore(optionBytes)
}
