// Package http implements an HTTP frontend serving Rogue monster selections.
//
// Every request continues a named generator stream whose state lives in a
// state.Store, so consecutive requests walk one random sequence exactly as
// consecutive calls in a single game would.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/MestreLion/roguestats/monster"
	"github.com/MestreLion/roguestats/pkg/log"
	"github.com/MestreLion/roguestats/pkg/stop"
	"github.com/MestreLion/roguestats/rng"
	"github.com/MestreLion/roguestats/state"
	"github.com/MestreLion/roguestats/xplevel"
)

// Default config constants.
const (
	defaultReadTimeout   = 2 * time.Second
	defaultWriteTimeout  = 2 * time.Second
	defaultMaxCount      = 1000
	defaultDefaultStream = "default"
)

// Config represents all of the configurable options for the HTTP frontend.
type Config struct {
	Addr          string        `yaml:"addr"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	MaxCount      int           `yaml:"max_count"`
	DefaultStream string        `yaml:"default_stream"`
}

// LogFields renders the current config as a set of Logrus fields.
func (cfg Config) LogFields() log.Fields {
	return log.Fields{
		"addr":          cfg.Addr,
		"readTimeout":   cfg.ReadTimeout,
		"writeTimeout":  cfg.WriteTimeout,
		"maxCount":      cfg.MaxCount,
		"defaultStream": cfg.DefaultStream,
	}
}

// Validate sanity checks values set in a config and returns a new config with
// default values replacing anything that is invalid.
//
// This function warns to the logger when a value is changed.
func (cfg Config) Validate() Config {
	validcfg := cfg

	if cfg.ReadTimeout <= 0 {
		validcfg.ReadTimeout = defaultReadTimeout
		log.Warn("falling back to default configuration", log.Fields{
			"name":     "http.ReadTimeout",
			"provided": cfg.ReadTimeout,
			"default":  validcfg.ReadTimeout,
		})
	}

	if cfg.WriteTimeout <= 0 {
		validcfg.WriteTimeout = defaultWriteTimeout
		log.Warn("falling back to default configuration", log.Fields{
			"name":     "http.WriteTimeout",
			"provided": cfg.WriteTimeout,
			"default":  validcfg.WriteTimeout,
		})
	}

	if cfg.MaxCount <= 0 {
		validcfg.MaxCount = defaultMaxCount
		log.Warn("falling back to default configuration", log.Fields{
			"name":     "http.MaxCount",
			"provided": cfg.MaxCount,
			"default":  validcfg.MaxCount,
		})
	}

	if cfg.DefaultStream == "" {
		validcfg.DefaultStream = defaultDefaultStream
		log.Warn("falling back to default configuration", log.Fields{
			"name":     "http.DefaultStream",
			"provided": cfg.DefaultStream,
			"default":  validcfg.DefaultStream,
		})
	}

	return validcfg
}

// Frontend represents the state of the HTTP frontend.
type Frontend struct {
	srv   *http.Server
	store state.Store

	Config
}

// NewFrontend creates a new instance of the HTTP frontend that asynchronously
// serves requests.
func NewFrontend(store state.Store, provided Config) (*Frontend, error) {
	cfg := provided.Validate()
	if cfg.Addr == "" {
		return nil, errors.New("must specify addr")
	}

	f := &Frontend{
		store:  store,
		Config: cfg,
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, err
	}

	f.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      f.handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		if err := f.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed while serving http", log.Err(err))
		}
	}()

	return f, nil
}

// Stop provides a thread-safe way to shutdown a currently running Frontend.
func (f *Frontend) Stop() stop.Result {
	c := make(stop.Channel)
	go func() {
		c.Done(f.srv.Shutdown(context.Background()))
	}()
	return c.Result()
}

func (f *Frontend) handler() http.Handler {
	router := httprouter.New()
	router.GET("/monster/:level", f.monsterRoute)
	router.GET("/streams/:stream", f.streamRoute)
	router.PUT("/streams/:stream", f.seedRoute)
	router.GET("/xplevels", f.xplevelsRoute)
	return router
}

// monsterRoute selects monsters from the requested stream, advancing its
// saved state.
func (f *Frontend) monsterRoute(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var err error
	start := time.Now()
	defer func() { recordResponseDuration("monster", err, time.Since(start)) }()

	req, err := ParseMonsterRequest(r, ps, f.Config)
	if err != nil {
		WriteError(w, err)
		return
	}

	var monsters string
	err = f.store.Update(r.Context(), req.Stream, func(current int64, found bool) (int64, error) {
		if !found {
			current = rng.TimeSeed()
			log.Debug("http: seeding new stream", log.Fields{"stream": req.Stream, "seed": current})
		}

		g := rng.New(current)
		line, err := monster.NewSelector(g).SelectN(req.Level, req.Category, req.Count)
		if err != nil {
			return 0, err
		}
		monsters = line
		return g.State(), nil
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	err = WriteMonsterResponse(w, req, monsters)
}

// streamRoute reports the saved state of a stream.
func (f *Frontend) streamRoute(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var err error
	start := time.Now()
	defer func() { recordResponseDuration("stream", err, time.Since(start)) }()

	stream := ps.ByName("stream")
	v, err := f.store.Load(r.Context(), stream)
	if err != nil {
		WriteError(w, err)
		return
	}

	err = WriteStreamResponse(w, stream, v)
}

// seedRoute (re)seeds a stream.
func (f *Frontend) seedRoute(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var err error
	start := time.Now()
	defer func() { recordResponseDuration("seed", err, time.Since(start)) }()

	seed, err := ParseSeed(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	stream := ps.ByName("stream")
	err = f.store.Save(r.Context(), stream, seed)
	if err != nil {
		WriteError(w, err)
		return
	}

	log.Info("http: stream seeded", log.Fields{"stream": stream, "seed": seed})
	err = WriteStreamResponse(w, stream, seed)
}

// xplevelsRoute serves the experience level table.
func (f *Frontend) xplevelsRoute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var err error
	start := time.Now()
	defer func() { recordResponseDuration("xplevels", err, time.Since(start)) }()

	t := xplevel.Table()
	err = writeJSON(w, http.StatusOK, t[:len(t)-1])
}
