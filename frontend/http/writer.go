package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MestreLion/roguestats/monster"
	"github.com/MestreLion/roguestats/pkg/log"
	"github.com/MestreLion/roguestats/state"
)

// MonsterResponse is the body answering a monster request.
type MonsterResponse struct {
	Stream   string `json:"stream"`
	Level    int    `json:"level"`
	Category string `json:"category"`
	Monsters string `json:"monsters"`
}

// StreamResponse is the body describing the state of a stream.
type StreamResponse struct {
	Stream string `json:"stream"`
	State  int64  `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// WriteError communicates an error to a client over HTTP.
func WriteError(w http.ResponseWriter, err error) error {
	status := http.StatusInternalServerError
	message := "internal server error"

	var clientErr ClientError
	switch {
	case errors.As(err, &clientErr):
		status = http.StatusBadRequest
		message = clientErr.Error()
	case errors.Is(err, state.ErrStateNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, monster.ErrRetriesExhausted):
		log.Warn("http: stream is stuck in a degenerate state", log.Err(err))
		status = http.StatusConflict
		message = err.Error()
	default:
		log.Error("http: internal error", log.Err(err))
	}

	return writeJSON(w, status, errorResponse{Error: message})
}

// WriteMonsterResponse communicates the monsters selected for a request.
func WriteMonsterResponse(w http.ResponseWriter, req *MonsterRequest, monsters string) error {
	return writeJSON(w, http.StatusOK, MonsterResponse{
		Stream:   req.Stream,
		Level:    req.Level,
		Category: req.Category.String(),
		Monsters: monsters,
	})
}

// WriteStreamResponse communicates the state of a stream.
func WriteStreamResponse(w http.ResponseWriter, stream string, value int64) error {
	return writeJSON(w, http.StatusOK, StreamResponse{Stream: stream, State: value})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
