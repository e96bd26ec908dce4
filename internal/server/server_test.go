package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/internal/scraper"
	"go-linkedin-extractor/internal/storage"
	"go-linkedin-extractor/pkg/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAutomation struct {
	running bool
	result  messaging.ExtractResult
}

func (f *fakeAutomation) Start() bool {
	if f.running {
		return false
	}
	f.running = true
	return true
}

func (f *fakeAutomation) Stop() bool {
	was := f.running
	f.running = false
	return was
}

func (f *fakeAutomation) Status() messaging.Status {
	return messaging.Status{IsRunning: f.running, CurrentPage: 2, MaxPages: 9}
}

func (f *fakeAutomation) Extract(context.Context) (messaging.ExtractResult, error) {
	return f.result, nil
}

type fixture struct {
	srv   *Server
	auto  *fakeAutomation
	store *storage.Gateway
	hub   *Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv, err := storage.OpenFile(t.TempDir(), logging.Nop())
	require.NoError(t, err)
	store := storage.NewGateway(kv, logging.Nop())

	auto := &fakeAutomation{}
	hub := NewHub(logging.Nop())
	router := messaging.NewRouter(auto, logging.Nop())
	pageURL := func() string { return "https://www.linkedin.com/jobs/search/?keywords=go" }

	return &fixture{
		srv:   New(router, store, pageURL, hub, logging.Nop()),
		auto:  auto,
		store: store,
		hub:   hub,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestMessage_Actions(t *testing.T) {
	f := newFixture(t)
	count := 4
	f.auto.result = messaging.ExtractResult{Success: true, Type: messaging.ExtractListings, Count: &count}

	tests := []struct {
		action string
		want   string
	}{
		{"startAutomation", `{"success":true}`},
		{"getStatus", `{"isRunning":true,"currentPage":2,"maxPages":9}`},
		{"startAutomation", `{"success":true}`},
		{"stopAutomation", `{"success":true}`},
		{"stopAutomation", `{"success":true}`},
		{"extractJobs", `{"success":true,"type":"listings","count":4}`},
	}
	for _, tt := range tests {
		w := f.do(t, http.MethodPost, "/api/message", `{"action":"`+tt.action+`"}`)
		assert.Equal(t, http.StatusOK, w.Code, tt.action)
		assert.JSONEq(t, tt.want, w.Body.String(), tt.action)
	}
	assert.False(t, f.auto.running)
}

func TestMessage_UnknownAction(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/message", `{"action":"deleteEverything"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "unknown action")
}

func TestMessage_InvalidJSON(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/message", `{"action":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStorageReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	w := f.do(t, http.MethodGet, "/api/jobs", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	_, err := f.store.MergeJobs(ctx, []scraper.JobRecord{{ID: "1", Title: "Go Engineer", Page: 1}})
	require.NoError(t, err)
	require.NoError(t, f.store.MergeDetail(ctx, scraper.JobDetailRecord{ID: "1", Title: "Go Engineer"}))

	w = f.do(t, http.MethodGet, "/api/jobs", "")
	var jobs []scraper.JobRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "Go Engineer", jobs[0].Title)

	w = f.do(t, http.MethodGet, "/api/details", "")
	var details map[string]scraper.JobDetailRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Contains(t, details, "1")
}

func TestPageInfo(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/page", "")
	var info messaging.PageInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.True(t, info.IsJobsPage)
}

func TestHub_PushesEvents(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(f.srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	f.hub.Notify(messaging.JobCountEvent(12))
	f.hub.Notify(messaging.StoppedEvent(messaging.StopCompleted))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev messaging.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, messaging.ActionUpdateJobCount, ev.Action)
	require.NotNil(t, ev.Count)
	assert.Equal(t, 12, *ev.Count)

	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, messaging.ActionAutomationStopped, ev.Action)
	assert.Equal(t, messaging.StopCompleted, ev.Reason)

	f.hub.Close()
	assert.Equal(t, 0, f.hub.Clients())
}
