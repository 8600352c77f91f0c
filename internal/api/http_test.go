package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/heysubinoy/localkv/internal/store"
	"github.com/heysubinoy/localkv/pkg/localstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJoiner struct {
	id, addr string
	err      error
	leader   string
}

func (j *fakeJoiner) Join(id, addr string) error {
	j.id, j.addr = id, addr
	return j.err
}

func (j *fakeJoiner) Leader() (string, string) {
	if j.leader == "" {
		return "", ""
	}
	return j.leader, "127.0.0.1:7000"
}

func newTestHTTPServer(t *testing.T, joiner Joiner) *httptest.Server {
	t.Helper()
	metrics := store.NewInstrumentedStore(store.NewMemStore())
	srv := NewServer(localstore.New(metrics), nil)
	srv.Metrics = metrics
	srv.Cluster = joiner

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestHTTPWriteRead(t *testing.T) {
	ts := newTestHTTPServer(t, nil)

	code, _ := do(t, ts, http.MethodPut, "/v1/items/n", "42")
	require.Equal(t, http.StatusNoContent, code)

	code, out := do(t, ts, http.MethodGet, "/v1/items/n", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"status": "success", "value": float64(42)}, out)

	code, _ = do(t, ts, http.MethodPut, "/v1/items/user", `{"name":"ada","tags":["x"]}`)
	require.Equal(t, http.StatusNoContent, code)

	_, out = do(t, ts, http.MethodGet, "/v1/items/user", "")
	assert.Equal(t, map[string]any{"name": "ada", "tags": []any{"x"}}, out["value"])

	code, _ = do(t, ts, http.MethodPut, "/v1/items/s", `"hello"`)
	require.Equal(t, http.StatusNoContent, code)
	_, out = do(t, ts, http.MethodGet, "/v1/items/s", "")
	assert.Equal(t, "hello", out["value"])
}

func TestHTTPReadMissing(t *testing.T) {
	ts := newTestHTTPServer(t, nil)

	code, out := do(t, ts, http.MethodGet, "/v1/items/absent", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, map[string]any{"status": "error", "value": localstore.MsgNotFound}, out)
}

func TestHTTPWriteInvalidBody(t *testing.T) {
	ts := newTestHTTPServer(t, nil)

	code, _ := do(t, ts, http.MethodPut, "/v1/items/k", "not json")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHTTPHas(t *testing.T) {
	ts := newTestHTTPServer(t, nil)

	code, _ := do(t, ts, http.MethodHead, "/v1/items/k", "")
	assert.Equal(t, http.StatusNotFound, code)

	do(t, ts, http.MethodPut, "/v1/items/k", "true")
	code, _ = do(t, ts, http.MethodHead, "/v1/items/k", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestHTTPUpdateDelete(t *testing.T) {
	ts := newTestHTTPServer(t, nil)

	code, out := do(t, ts, http.MethodPatch, "/v1/items/k", `"v2"`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, localstore.MsgNotFound, out["value"])

	do(t, ts, http.MethodPut, "/v1/items/k", `"v1"`)
	code, out = do(t, ts, http.MethodPatch, "/v1/items/k", `"v2"`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, `Key "k" was updated`, out["value"])

	_, out = do(t, ts, http.MethodGet, "/v1/items/k", "")
	assert.Equal(t, "v2", out["value"])

	code, out = do(t, ts, http.MethodDelete, "/v1/items/k", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, localstore.MsgRemoved, out["value"])

	code, out = do(t, ts, http.MethodDelete, "/v1/items/k", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, localstore.MsgNotFound, out["value"])
}

func TestHTTPClear(t *testing.T) {
	ts := newTestHTTPServer(t, nil)
	do(t, ts, http.MethodPut, "/v1/items/a", "1")
	do(t, ts, http.MethodPut, "/v1/items/b", "2")

	code, out := do(t, ts, http.MethodDelete, "/v1/items", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, localstore.MsgWiped, out["value"])

	code, _ = do(t, ts, http.MethodHead, "/v1/items/a", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHTTPExpiring(t *testing.T) {
	ts := newTestHTTPServer(t, nil)

	code, _ := do(t, ts, http.MethodPut, "/v1/expiring/live?ttl=1h", `{"id":1}`)
	require.Equal(t, http.StatusNoContent, code)
	code, out := do(t, ts, http.MethodGet, "/v1/expiring/live", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"id": float64(1)}, out["value"])

	code, _ = do(t, ts, http.MethodPut, "/v1/expiring/dead?ttl=-1ms", `"x"`)
	require.Equal(t, http.StatusNoContent, code)
	code, out = do(t, ts, http.MethodGet, "/v1/expiring/dead", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, localstore.MsgExpired, out["value"])

	code, _ = do(t, ts, http.MethodPut, "/v1/expiring/k", `"x"`)
	assert.Equal(t, http.StatusBadRequest, code, "ttl is required")

	do(t, ts, http.MethodPut, "/v1/items/plain", `"hello"`)
	code, out = do(t, ts, http.MethodGet, "/v1/expiring/plain", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, localstore.MsgInvalidFormat, out["value"])
}

func TestHTTPCleanExpired(t *testing.T) {
	ts := newTestHTTPServer(t, nil)
	do(t, ts, http.MethodPut, "/v1/expiring/dead?ttl=-1s", `"x"`)
	do(t, ts, http.MethodPut, "/v1/items/plain", `"hello"`)

	code, _ := do(t, ts, http.MethodPost, "/v1/clean-expired", "")
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = do(t, ts, http.MethodHead, "/v1/items/dead", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, ts, http.MethodHead, "/v1/items/plain", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestHTTPMetrics(t *testing.T) {
	ts := newTestHTTPServer(t, nil)
	do(t, ts, http.MethodPut, "/v1/items/a", "1")
	do(t, ts, http.MethodGet, "/v1/items/a", "")

	code, out := do(t, ts, http.MethodGet, "/metrics?reset=true", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), out["entries"])

	ops, ok := out["operations"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), ops["set"].(map[string]any)["count"])
	assert.Equal(t, float64(1), ops["get"].(map[string]any)["count"])

	_, out = do(t, ts, http.MethodGet, "/metrics", "")
	ops = out["operations"].(map[string]any)
	assert.Equal(t, float64(0), ops["set"].(map[string]any)["count"])
}

func TestHTTPJoin(t *testing.T) {
	joiner := &fakeJoiner{}
	ts := newTestHTTPServer(t, joiner)

	code, _ := do(t, ts, http.MethodPost, "/v1/cluster/join", `{"id":"node2","addr":"127.0.0.1:7001"}`)
	assert.Equal(t, http.StatusNoContent, code)
	assert.Equal(t, "node2", joiner.id)
	assert.Equal(t, "127.0.0.1:7001", joiner.addr)

	code, _ = do(t, ts, http.MethodPost, "/v1/cluster/join", `{"id":"node3"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	joiner.err = errors.New("not leader")
	code, _ = do(t, ts, http.MethodPost, "/v1/cluster/join", `{"id":"node3","addr":"127.0.0.1:7002"}`)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestHTTPJoinDisabled(t *testing.T) {
	ts := newTestHTTPServer(t, nil)

	code, _ := do(t, ts, http.MethodPost, "/v1/cluster/join", `{"id":"node2","addr":"x"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHTTPLeader(t *testing.T) {
	joiner := &fakeJoiner{}
	ts := newTestHTTPServer(t, joiner)

	code, _ := do(t, ts, http.MethodGet, "/v1/cluster/leader", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	joiner.leader = "node1"
	code, out := do(t, ts, http.MethodGet, "/v1/cluster/leader", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"id": "node1", "addr": "127.0.0.1:7000"}, out)
}
