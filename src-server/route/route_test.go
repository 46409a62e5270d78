package route_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"evtd/src-server/jwt"
	"evtd/src-server/route"
	"evtd/src-server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func setupTestServer(t *testing.T, enforceOwner string) (http.Handler, *utils.AppState) {
	t.Helper()
	t.Setenv("DATABASE_PATH", ":memory:")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ENFORCE_OWNER", enforceOwner)

	as, err := utils.BuildAppState(context.Background(), utils.NewConfig())
	require.NoError(t, err)
	t.Cleanup(as.GracefulShutdown)

	muxer := http.NewServeMux()
	route.Events(muxer, as)
	route.Notifications(muxer, as)
	route.Health(muxer, as)
	return route.RequestLogger(muxer), as
}

func do(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func token(t *testing.T, userID string) string {
	t.Helper()
	signed, err := jwt.Encode(jwt.Payload{UserID: userID, UserName: userID}, testSecret)
	require.NoError(t, err)
	return signed
}

func event(name string, maxAttendance int64) map[string]any {
	return map[string]any{"name": name, "maxAttendance": maxAttendance}
}

func TestCreateAndGetEvent(t *testing.T) {
	h, _ := setupTestServer(t, "")

	w := do(t, h, http.MethodPost, "/events", event("Mike's Birthday", 500), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[route.OneEventRespBody](t, w)
	assert.Equal(t, route.OneEventRespBody{ID: 0, Name: "Mike's Birthday", MaxAttendance: 500}, created)

	w = do(t, h, http.MethodPost, "/events", event("Dubai Trip", 600), "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(1), decode[route.OneEventRespBody](t, w).ID)

	w = do(t, h, http.MethodGet, "/events/0", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decode[route.OneEventRespBody](t, w))
}

func TestCreateEventRejects(t *testing.T) {
	h, _ := setupTestServer(t, "")

	for _, tc := range []struct {
		name string
		body any
	}{
		{"malformed json", "{"},
		{"missing max attendance", map[string]any{"name": "x"}},
		{"blank name", event("  ", 10)},
		{"negative max attendance", event("x", -1)},
		{"fractional max attendance", `{"name":"x","maxAttendance":1.5}`},
	} {
		w := do(t, h, http.MethodPost, "/events", tc.body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.name)
		assert.NotEmpty(t, decode[route.ErrorRespBody](t, w).Description, tc.name)
	}

	// nothing was stored, so the next id is still 0
	w := do(t, h, http.MethodPost, "/events", event("Mike's Birthday", 500), "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(0), decode[route.OneEventRespBody](t, w).ID)
}

func TestEventBodyTooLarge(t *testing.T) {
	h, as := setupTestServer(t, "")

	oversized := `{"name":"` + strings.Repeat("a", 1<<20) + `","maxAttendance":1}`
	w := do(t, h, http.MethodPost, "/events", oversized, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.NotEmpty(t, decode[route.ErrorRespBody](t, w).Description)
	assert.Equal(t, int64(0), as.Store.Count())

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/events", event("Mike's Birthday", 500), "").Code)
	w = do(t, h, http.MethodPut, "/events/0", oversized, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestGetEventErrors(t *testing.T) {
	h, _ := setupTestServer(t, "")

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/events/0", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/events/-3", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/events/abc", nil, "").Code)
}

func TestUpdateEvent(t *testing.T) {
	h, _ := setupTestServer(t, "")

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/events", event("Mike's Birthday", 500), "").Code)

	w := do(t, h, http.MethodPut, "/events/0", event("Dubai Trip", 600), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, route.OneEventRespBody{ID: 0, Name: "Dubai Trip", MaxAttendance: 600}, decode[route.OneEventRespBody](t, w))

	w = do(t, h, http.MethodGet, "/events/0", nil, "")
	assert.Equal(t, "Dubai Trip", decode[route.OneEventRespBody](t, w).Name)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, "/events/5", event("x", 1), "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPut, "/events/0", event("", 1), "").Code)
}

func TestAuth(t *testing.T) {
	t.Run("owner recorded from token", func(t *testing.T) {
		h, _ := setupTestServer(t, "")
		w := do(t, h, http.MethodPost, "/events", event("Mike's Birthday", 500), token(t, "alice"))
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "alice", decode[route.OneEventRespBody](t, w).Owner)
	})

	t.Run("bad tokens are rejected", func(t *testing.T) {
		h, _ := setupTestServer(t, "")
		assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/events", event("x", 1), "garbage").Code)

		forged, err := jwt.Encode(jwt.Payload{UserID: "mallory"}, "wrong-secret")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/events", event("x", 1), forged).Code)

		req := httptest.NewRequest(http.MethodGet, "/events/0", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("owner enforced", func(t *testing.T) {
		h, _ := setupTestServer(t, "true")
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/events", event("Mike's Birthday", 500), token(t, "alice")).Code)

		assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodPut, "/events/0", event("Dubai Trip", 600), token(t, "bob")).Code)
		assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodPut, "/events/0", event("Dubai Trip", 600), "").Code)
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/events/0", event("Dubai Trip", 600), token(t, "alice")).Code)
	})
}

func TestNotifications(t *testing.T) {
	h, _ := setupTestServer(t, "")

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/events", event("Mike's Birthday", 500), "").Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/events", event("Book Club", 12), "").Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPut, "/events/0", event("Dubai Trip", 600), "").Code)
	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, "/events/9", event("x", 1), "").Code)

	w := do(t, h, http.MethodGet, "/notifications", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]route.OneNotificationRespBody](t, w)
	require.Len(t, all, 3)
	assert.Equal(t, "EventCreated", all[0].Kind)
	assert.Equal(t, "Mike's Birthday", all[0].Name)
	assert.Equal(t, int64(500), all[0].MaxAttendance)
	assert.Equal(t, "EventUpdated", all[2].Kind)
	assert.Equal(t, int64(0), all[2].EventID)
	assert.Equal(t, "Dubai Trip", all[2].Name)
	assert.Equal(t, int64(600), all[2].MaxAttendance)

	w = do(t, h, http.MethodGet, "/notifications?limit=1&after="+jsonNumber(all[0].Seq), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[[]route.OneNotificationRespBody](t, w)
	require.Len(t, page, 1)
	assert.Equal(t, "Book Club", page[0].Name)

	w = do(t, h, http.MethodGet, "/events/0/notifications", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]route.OneNotificationRespBody](t, w), 2)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/notifications?limit=0", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/notifications?after=x", nil, "").Code)
}

func jsonNumber(n int64) string {
	raw, _ := json.Marshal(n)
	return string(raw)
}

func TestHealthAndMetrics(t *testing.T) {
	h, _ := setupTestServer(t, "")
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/events", event("Mike's Birthday", 500), "").Code)

	w := do(t, h, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[route.HealthRespBody](t, w)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, int64(1), health.Events)

	w = do(t, h, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
