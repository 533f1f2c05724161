package redis

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/redigo"
	redigolib "github.com/gomodule/redigo/redis"
)

// redisBackend represents a redis handler.
type redisBackend struct {
	pool    *redigolib.Pool
	redsync *redsync.Redsync
}

// newRedisBackend creates a redisBackend instance.
func newRedisBackend(cfg *Config, u *redisURL) *redisBackend {
	rc := &redisConnector{
		URL:            u,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		ConnectTimeout: cfg.ConnectTimeout,
	}
	pool := rc.NewPool(cfg.MaxIdle)
	return &redisBackend{
		pool:    pool,
		redsync: redsync.New(redigo.NewPool(pool)),
	}
}

// open returns a connection from the pool.
func (rb *redisBackend) open() redigolib.Conn {
	return rb.pool.Get()
}

type redisConnector struct {
	URL            *redisURL
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	ConnectTimeout time.Duration
}

// NewPool returns a new pool of Redis connections.
func (rc *redisConnector) NewPool(maxIdle int) *redigolib.Pool {
	return &redigolib.Pool{
		MaxIdle:     maxIdle,
		IdleTimeout: 240 * time.Second,
		Dial:        rc.open,
		// PINGs connections that have been idle more than 10 seconds.
		TestOnBorrow: func(c redigolib.Conn, t time.Time) error {
			if time.Since(t) < 10*time.Second {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}

// open dials a new Redis connection.
func (rc *redisConnector) open() (redigolib.Conn, error) {
	opts := []redigolib.DialOption{
		redigolib.DialDatabase(rc.URL.DB),
		redigolib.DialReadTimeout(rc.ReadTimeout),
		redigolib.DialWriteTimeout(rc.WriteTimeout),
		redigolib.DialConnectTimeout(rc.ConnectTimeout),
	}

	if rc.URL.Password != "" {
		opts = append(opts, redigolib.DialPassword(rc.URL.Password))
	}

	if rc.URL.SocketPath != "" {
		return redigolib.Dial("unix", rc.URL.SocketPath, opts...)
	}

	return redigolib.Dial("tcp", rc.URL.Host, opts...)
}

// A redisURL represents a parsed redis URL.
// The general form represented is:
//
//	redis://[password@]host[/db]
//	redis-socket://[password@]path[?db=db]
type redisURL struct {
	Host       string
	SocketPath string
	Password   string
	DB         int
}

// parseRedisURL parses target into a redisURL.
func parseRedisURL(target string) (*redisURL, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "redis-socket" {
		return nil, errors.New("no redis scheme found")
	}

	db := 0
	ru := &redisURL{}
	if u.User != nil {
		ru.Password, _ = u.User.Password()
		if ru.Password == "" {
			ru.Password = u.User.Username()
		}
	}

	switch u.Scheme {
	case "redis":
		parts := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
		if parts[0] != "" {
			db, err = strconv.Atoi(parts[0])
			if err != nil {
				return nil, err
			}
		}
		ru.Host = u.Host
	case "redis-socket":
		if dbval := u.Query().Get("db"); dbval != "" {
			db, err = strconv.Atoi(dbval)
			if err != nil {
				return nil, err
			}
		}
		ru.SocketPath = u.Path
	}

	ru.DB = db
	return ru, nil
}
