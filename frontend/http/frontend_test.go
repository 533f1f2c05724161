package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MestreLion/roguestats/rng"
	"github.com/MestreLion/roguestats/state/memory"
)

func newTestFrontend() *Frontend {
	return &Frontend{
		store:  memory.New(memory.Config{}),
		Config: Config{MaxCount: 50}.Validate(),
	}
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return rec
}

func TestMonsterRoute(t *testing.T) {
	f := newTestFrontend()
	h := f.handler()

	rec := do(t, h, http.MethodPut, "/streams/dungeon?seed=42")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/monster/1?stream=dungeon")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MonsterResponse
	require.Nil(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, MonsterResponse{Stream: "dungeon", Level: 1, Category: "resident", Monsters: "H"}, resp)

	rec = do(t, h, http.MethodGet, "/streams/dungeon")
	require.Equal(t, http.StatusOK, rec.Code)

	var sresp StreamResponse
	require.Nil(t, json.NewDecoder(rec.Body).Decode(&sresp))
	require.Equal(t, int64(1065973), sresp.State)
}

func TestMonsterRouteContinuesStream(t *testing.T) {
	f := newTestFrontend()
	h := f.handler()

	do(t, h, http.MethodPut, "/streams/default?seed=42")

	var got string
	for i := 0; i < 4; i++ {
		rec := do(t, h, http.MethodGet, "/monster/1?count=5")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp MonsterResponse
		require.Nil(t, json.NewDecoder(rec.Body).Decode(&resp))
		got += resp.Monsters
	}
	require.Equal(t, "HKKBKKKHKKBIBKHBHIII", got)
}

func TestMonsterRouteWandering(t *testing.T) {
	f := newTestFrontend()
	h := f.handler()

	do(t, h, http.MethodPut, "/streams/deep?seed=42")
	rec := do(t, h, http.MethodGet, "/monster/26?stream=deep&category=wander&count=20")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MonsterResponse
	require.Nil(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "wandering", resp.Category)
	require.Equal(t, "GJVJVJJMVJGJVGJMVJMJ", resp.Monsters)
}

func TestMonsterRouteNewStream(t *testing.T) {
	f := newTestFrontend()
	h := f.handler()

	rec := do(t, h, http.MethodGet, "/monster/3?stream=fresh&count=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MonsterResponse
	require.Nil(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Monsters, 10)

	rec = do(t, h, http.MethodGet, "/streams/fresh")
	require.Equal(t, http.StatusOK, rec.Code)
}

var badRequests = []struct {
	method string
	target string
	status int
}{
	{http.MethodGet, "/monster/0", http.StatusBadRequest},
	{http.MethodGet, "/monster/abc", http.StatusBadRequest},
	{http.MethodGet, "/monster/3?category=boss", http.StatusBadRequest},
	{http.MethodGet, "/monster/3?count=0", http.StatusBadRequest},
	{http.MethodGet, "/monster/3?count=51", http.StatusBadRequest},
	{http.MethodGet, "/streams/unknown", http.StatusNotFound},
	{http.MethodPut, "/streams/x", http.StatusBadRequest},
	{http.MethodPut, "/streams/x?seed=1.5", http.StatusBadRequest},
}

func TestBadRequests(t *testing.T) {
	h := newTestFrontend().handler()
	for _, tt := range badRequests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target)
			require.Equal(t, tt.status, rec.Code)

			var resp errorResponse
			require.Nil(t, json.NewDecoder(rec.Body).Decode(&resp))
			require.NotEmpty(t, resp.Error)
		})
	}
}

func TestDegenerateStream(t *testing.T) {
	h := newTestFrontend().handler()

	do(t, h, http.MethodPut, "/streams/stuck?seed=0")
	rec := do(t, h, http.MethodGet, "/monster/7?stream=stuck")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestSeedPhrase(t *testing.T) {
	h := newTestFrontend().handler()

	rec := do(t, h, http.MethodPut, "/streams/named?phrase=amulet%20of%20yendor")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StreamResponse
	require.Nil(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, rng.PhraseSeed("amulet of yendor"), resp.State)
}

func TestXPLevelsRoute(t *testing.T) {
	h := newTestFrontend().handler()

	rec := do(t, h, http.MethodGet, "/xplevels")
	require.Equal(t, http.StatusOK, rec.Code)

	var levels []int64
	require.Nil(t, json.NewDecoder(rec.Body).Decode(&levels))
	require.Len(t, levels, 19)
	require.Equal(t, int64(10), levels[0])
}

func TestNewFrontend(t *testing.T) {
	f, err := NewFrontend(memory.New(memory.Config{}), Config{Addr: "127.0.0.1:0"})
	require.Nil(t, err)
	require.Empty(t, f.Stop().Wait())

	_, err = NewFrontend(memory.New(memory.Config{}), Config{})
	require.NotNil(t, err)
}
