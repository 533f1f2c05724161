// Package redis implements a state.Store backed by redis.
//
// Updates of a stream are serialized across processes by a redsync mutex, so
// several frontends may share one generator stream.
package redis

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	redigolib "github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/MestreLion/roguestats/pkg/log"
	"github.com/MestreLion/roguestats/pkg/stop"
	"github.com/MestreLion/roguestats/state"
)

// Name is the name by which this store is registered.
const Name = "redis"

// Default config constants.
const (
	defaultRedisURL       = "redis://127.0.0.1:6379/0"
	defaultKeyPrefix      = "roguestats:"
	defaultTimeout        = 15 * time.Second
	defaultMaxIdle        = 3
	defaultLockExpiry     = 8 * time.Second
	defaultLockTries      = 64
	defaultLockRetryDelay = 25 * time.Millisecond
)

// ErrLockExpired is returned by Update when the lock of a stream expired
// before the new state could be written. The state is left untouched.
var ErrLockExpired = errors.New("stream lock expired before update")

func init() {
	state.RegisterDriver(Name, driver{})
}

type driver struct{}

func (d driver) NewStore(optionBytes []byte) (state.Store, error) {
	var cfg Config
	if err := yaml.Unmarshal(optionBytes, &cfg); err != nil {
		return nil, errors.Wrap(err, "invalid options for redis state store")
	}

	return New(cfg)
}

// Config holds the configuration of a redis Store.
type Config struct {
	RedisURL       string        `yaml:"redis_url"`
	KeyPrefix      string        `yaml:"key_prefix"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	MaxIdle        int           `yaml:"max_idle"`
	LockExpiry     time.Duration `yaml:"lock_expiry"`
	LockTries      int           `yaml:"lock_tries"`
	LockRetryDelay time.Duration `yaml:"lock_retry_delay"`
}

// LogFields renders the current config as a set of Logrus fields.
func (cfg Config) LogFields() log.Fields {
	return log.Fields{
		"name":           Name,
		"redisURL":       cfg.RedisURL,
		"keyPrefix":      cfg.KeyPrefix,
		"readTimeout":    cfg.ReadTimeout,
		"writeTimeout":   cfg.WriteTimeout,
		"connectTimeout": cfg.ConnectTimeout,
		"maxIdle":        cfg.MaxIdle,
		"lockExpiry":     cfg.LockExpiry,
		"lockTries":      cfg.LockTries,
		"lockRetryDelay": cfg.LockRetryDelay,
	}
}

// Validate sanity checks values set in a config and returns a new config with
// default values replacing anything that is invalid.
//
// This function warns to the logger when a value is changed.
func (cfg Config) Validate() Config {
	validcfg := cfg

	warn := func(field string, provided, def interface{}) {
		log.Warn("falling back to default configuration", log.Fields{
			"name":     Name + "." + field,
			"provided": provided,
			"default":  def,
		})
	}

	if cfg.RedisURL == "" {
		validcfg.RedisURL = defaultRedisURL
		warn("RedisURL", cfg.RedisURL, validcfg.RedisURL)
	}
	if cfg.KeyPrefix == "" {
		validcfg.KeyPrefix = defaultKeyPrefix
		warn("KeyPrefix", cfg.KeyPrefix, validcfg.KeyPrefix)
	}
	if cfg.ReadTimeout <= 0 {
		validcfg.ReadTimeout = defaultTimeout
		warn("ReadTimeout", cfg.ReadTimeout, validcfg.ReadTimeout)
	}
	if cfg.WriteTimeout <= 0 {
		validcfg.WriteTimeout = defaultTimeout
		warn("WriteTimeout", cfg.WriteTimeout, validcfg.WriteTimeout)
	}
	if cfg.ConnectTimeout <= 0 {
		validcfg.ConnectTimeout = defaultTimeout
		warn("ConnectTimeout", cfg.ConnectTimeout, validcfg.ConnectTimeout)
	}
	if cfg.MaxIdle <= 0 {
		validcfg.MaxIdle = defaultMaxIdle
		warn("MaxIdle", cfg.MaxIdle, validcfg.MaxIdle)
	}
	if cfg.LockExpiry <= 0 {
		validcfg.LockExpiry = defaultLockExpiry
		warn("LockExpiry", cfg.LockExpiry, validcfg.LockExpiry)
	}
	if cfg.LockTries <= 0 {
		validcfg.LockTries = defaultLockTries
		warn("LockTries", cfg.LockTries, validcfg.LockTries)
	}
	if cfg.LockRetryDelay <= 0 {
		validcfg.LockRetryDelay = defaultLockRetryDelay
		warn("LockRetryDelay", cfg.LockRetryDelay, validcfg.LockRetryDelay)
	}

	return validcfg
}

type store struct {
	cfg Config
	rb  *redisBackend

	closed chan struct{}
}

var _ state.Store = &store{}

// New creates a new Store backed by redis.
//
// The connection is checked with a PING before New returns.
func New(provided Config) (state.Store, error) {
	cfg := provided.Validate()

	u, err := parseRedisURL(cfg.RedisURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis_url")
	}

	s := &store{
		cfg:    cfg,
		rb:     newRedisBackend(&cfg, u),
		closed: make(chan struct{}),
	}

	conn := s.rb.open()
	defer conn.Close()
	if _, err := conn.Do("PING"); err != nil {
		return nil, errors.Wrap(err, "failed to reach redis")
	}

	return s, nil
}

func (s *store) panicIfClosed() {
	select {
	case <-s.closed:
		panic("attempted to interact with stopped redis store")
	default:
	}
}

func (s *store) stateKey(stream string) string {
	return s.cfg.KeyPrefix + "state:" + stream
}

func (s *store) lockKey(stream string) string {
	return s.cfg.KeyPrefix + "lock:" + stream
}

// get reads the state of stream over conn.
func (s *store) get(conn redigolib.Conn, stream string) (int64, bool, error) {
	v, err := redigolib.Int64(conn.Do("GET", s.stateKey(stream)))
	if err == redigolib.ErrNil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "failed to load state of %q", stream)
	}
	return v, true, nil
}

func (s *store) set(conn redigolib.Conn, stream string, value int64) error {
	if _, err := conn.Do("SET", s.stateKey(stream), value); err != nil {
		return errors.Wrapf(err, "failed to save state of %q", stream)
	}
	return nil
}

func (s *store) Load(ctx context.Context, stream string) (int64, error) {
	if stream == "" {
		return 0, state.ErrInvalidStream
	}
	s.panicIfClosed()

	conn := s.rb.open()
	defer conn.Close()

	v, found, err := s.get(conn, stream)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, state.ErrStateNotFound
	}
	return v, nil
}

func (s *store) Save(ctx context.Context, stream string, value int64) error {
	if stream == "" {
		return state.ErrInvalidStream
	}
	s.panicIfClosed()

	conn := s.rb.open()
	defer conn.Close()

	return s.set(conn, stream, value)
}

func (s *store) Update(ctx context.Context, stream string, fn state.UpdateFunc) error {
	if stream == "" {
		return state.ErrInvalidStream
	}
	s.panicIfClosed()

	mutex := s.rb.redsync.NewMutex(
		s.lockKey(stream),
		redsync.WithExpiry(s.cfg.LockExpiry),
		redsync.WithTries(s.cfg.LockTries),
		redsync.WithRetryDelay(s.cfg.LockRetryDelay),
	)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := mutex.LockContext(ctx); err != nil {
		return errors.Wrapf(err, "failed to lock stream %q", stream)
	}
	defer func() {
		// The lock is released even when ctx is done.
		ok, err := mutex.UnlockContext(context.Background())
		if err != nil {
			log.Error("redis: failed to release stream lock", log.Fields{"stream": stream}, log.Err(err))
		} else if !ok {
			log.Warn("redis: stream lock expired before release", log.Fields{"stream": stream})
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	conn := s.rb.open()
	defer conn.Close()

	current, found, err := s.get(conn, stream)
	if err != nil {
		return err
	}

	next, err := fn(current, found)
	if err != nil {
		return err
	}

	if !time.Now().Before(mutex.Until()) {
		return ErrLockExpired
	}
	return s.set(conn, stream, next)
}

func (s *store) Stop() stop.Result {
	c := make(stop.Channel)
	go func() {
		close(s.closed)
		c.Done(s.rb.pool.Close())
	}()
	return c.Result()
}

func (s *store) LogFields() log.Fields {
	return s.cfg.LogFields()
}
