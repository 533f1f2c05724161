package http

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/MestreLion/roguestats/monster"
	"github.com/MestreLion/roguestats/rng"
)

// ClientError represents an error caused by the request, which is exposed to
// the client.
type ClientError string

// Error implements the error interface for ClientError.
func (c ClientError) Error() string { return string(c) }

var (
	errInvalidLevel    = ClientError("level must be a positive integer")
	errInvalidCategory = ClientError("category must be resident or wandering")
	errInvalidCount    = ClientError("count must be a positive integer")
	errCountTooLarge   = ClientError("count exceeds the maximum")
	errInvalidStream   = ClientError("stream must not be empty")
	errInvalidSeed     = ClientError("seed must be an integer")
	errMissingSeed     = ClientError("one of seed or phrase is required")
)

// MonsterRequest represents the parsed parameters of a monster request.
type MonsterRequest struct {
	Stream   string
	Level    int
	Category monster.Category
	Count    int
}

// ParseMonsterRequest parses a MonsterRequest from an HTTP request.
func ParseMonsterRequest(r *http.Request, ps httprouter.Params, cfg Config) (*MonsterRequest, error) {
	level, err := strconv.Atoi(ps.ByName("level"))
	if err != nil || level < 1 {
		return nil, errInvalidLevel
	}

	q := r.URL.Query()
	req := &MonsterRequest{
		Stream:   cfg.DefaultStream,
		Level:    level,
		Category: monster.Resident,
		Count:    1,
	}

	if s := q.Get("stream"); s != "" {
		req.Stream = s
	}
	if req.Stream == "" {
		return nil, errInvalidStream
	}

	if c := q.Get("category"); c != "" {
		req.Category, err = monster.ParseCategory(c)
		if err != nil {
			return nil, errInvalidCategory
		}
	}

	if c := q.Get("count"); c != "" {
		req.Count, err = strconv.Atoi(c)
		if err != nil || req.Count < 1 {
			return nil, errInvalidCount
		}
		if req.Count > cfg.MaxCount {
			return nil, errCountTooLarge
		}
	}

	return req, nil
}

// ParseSeed returns the seed requested by the seed or phrase query
// parameters. A numeric seed takes precedence over a phrase.
func ParseSeed(r *http.Request) (int64, error) {
	q := r.URL.Query()
	if s := q.Get("seed"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, errInvalidSeed
		}
		return seed, nil
	}
	if p := q.Get("phrase"); p != "" {
		return rng.PhraseSeed(p), nil
	}
	return 0, errMissingSeed
}
