package embedded

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/xjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestDebugRoutes(t *testing.T) {
	n := launch(t, testSettings(t, nil))
	waitGreen(t, n)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("searchnode_up 1\n"))
	})
	h := newDebugServer(n, metrics, slog.Default()).routes()

	rec := serve(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cluster_name":"test"`)

	rec = serve(t, h, http.MethodGet, "/_cluster/health?wait_for_status=yellow&timeout=1s", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health domain.HealthResponse
	require.NoError(t, xjson.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, domain.HealthGreen, health.Status)

	rec = serve(t, h, http.MethodGet, "/_cluster/health?wait_for_status=purple", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h, http.MethodGet, "/_nodes/settings", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"index.number_of_shards":"1"`)

	rec = serve(t, h, http.MethodPut, "/issues/1", `{"comments":[]}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(t, h, http.MethodPut, "/issues/1", `{"comments":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, h, http.MethodPost, "/issues/1/_update",
		`{"script":"listUpdate","params":{"field":"comments","idField":"key","idValue":"c1","value":{"key":"c1"}}}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, h, http.MethodGet, "/issues/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"comments":[{"key":"c1"}]`)

	rec = serve(t, h, http.MethodPost, "/issues/1/_update", `{"script":"listUpdate","params":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h, http.MethodPost, "/issues/2/_update",
		`{"script":"listUpdate","params":{"field":"comments","idField":"key","idValue":"c1"}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, h, http.MethodDelete, "/issues/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, h, http.MethodDelete, "/issues/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, h, http.MethodGet, "/issues/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "searchnode_up")
}

func TestDebugHTTPListensWhenEnabled(t *testing.T) {
	n := launch(t, testSettings(t, map[string]string{
		domain.SettingHTTPEnabled: "true",
		domain.SettingHTTPPort:    "0",
	}))
	require.NotNil(t, n.http)
}

func TestStatusForErrors(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(domain.ErrNodeClosed))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrDataDisabled))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.NewScriptError("bad", nil)))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(domain.NewRaftError("not the leader", nil)))
}
