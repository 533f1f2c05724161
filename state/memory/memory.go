// Package memory implements a state.Store kept in process memory.
package memory

import (
	"context"
	"sync"

	yaml "gopkg.in/yaml.v2"

	"github.com/MestreLion/roguestats/pkg/log"
	"github.com/MestreLion/roguestats/pkg/stop"
	"github.com/MestreLion/roguestats/state"
)

// Name is the name by which this store is registered.
const Name = "memory"

func init() {
	state.RegisterDriver(Name, driver{})
}

type driver struct{}

func (d driver) NewStore(optionBytes []byte) (state.Store, error) {
	var cfg Config
	if err := yaml.Unmarshal(optionBytes, &cfg); err != nil {
		return nil, err
	}

	return New(cfg), nil
}

// Config holds the configuration of a memory Store.
type Config struct {
	// Streams preloads the state of named streams.
	Streams map[string]int64 `yaml:"streams"`
}

// LogFields renders the current config as a set of Logrus fields.
func (cfg Config) LogFields() log.Fields {
	return log.Fields{
		"name":    Name,
		"streams": len(cfg.Streams),
	}
}

type store struct {
	states map[string]int64
	closed chan struct{}
	sync.Mutex
}

var _ state.Store = &store{}

// New creates a new Store backed by memory.
func New(cfg Config) state.Store {
	s := &store{
		states: make(map[string]int64, len(cfg.Streams)),
		closed: make(chan struct{}),
	}
	for name, v := range cfg.Streams {
		s.states[name] = v
	}
	return s
}

func (s *store) panicIfClosed() {
	select {
	case <-s.closed:
		panic("attempted to interact with stopped memory store")
	default:
	}
}

func (s *store) Load(_ context.Context, stream string) (int64, error) {
	if stream == "" {
		return 0, state.ErrInvalidStream
	}

	s.Lock()
	defer s.Unlock()
	s.panicIfClosed()

	v, ok := s.states[stream]
	if !ok {
		return 0, state.ErrStateNotFound
	}
	return v, nil
}

func (s *store) Save(_ context.Context, stream string, value int64) error {
	if stream == "" {
		return state.ErrInvalidStream
	}

	s.Lock()
	defer s.Unlock()
	s.panicIfClosed()

	s.states[stream] = value
	return nil
}

func (s *store) Update(_ context.Context, stream string, fn state.UpdateFunc) error {
	if stream == "" {
		return state.ErrInvalidStream
	}

	s.Lock()
	defer s.Unlock()
	s.panicIfClosed()

	current, found := s.states[stream]
	next, err := fn(current, found)
	if err != nil {
		return err
	}
	s.states[stream] = next
	return nil
}

func (s *store) Stop() stop.Result {
	c := make(stop.Channel)
	go func() {
		s.Lock()
		close(s.closed)
		s.states = make(map[string]int64)
		s.Unlock()
		c.Done()
	}()
	return c.Result()
}

func (s *store) LogFields() log.Fields {
	s.Lock()
	defer s.Unlock()
	return log.Fields{
		"name":    Name,
		"streams": len(s.states),
	}
}
