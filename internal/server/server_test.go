package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinotidus/internal/agent"
	"dinotidus/internal/config"
	"dinotidus/pkg/neural"
	"dinotidus/pkg/nlp"
)

func newTestRouter(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	cfg := config.Default()
	s := New(agent.NewRegistry(cfg.Model, cfg.Agent, nil), nil)
	return s, s.Router(gin.TestMode)
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createSession(t *testing.T, router http.Handler) string {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	return decode[SessionResponse](t, w).SessionID
}

func TestChatFlow(t *testing.T) {
	s, router := newTestRouter(t)
	id := createSession(t, router)

	w := do(t, router, http.MethodPost, "/api/v1/chat", ChatRequest{SessionID: id, Message: "привет, как дела?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[ChatResponse](t, w)
	assert.Equal(t, id, resp.SessionID)
	assert.Equal(t, nlp.MessageGreeting, resp.Reply.MessageType)
	assert.NotEmpty(t, resp.Reply.Text)

	w = do(t, router, http.MethodGet, "/api/v1/sessions/"+id+"/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[StatsResponse](t, w).Stats
	assert.Equal(t, 1, stats.Turns)
	assert.Greater(t, stats.Vocabulary, 1)

	w = do(t, router, http.MethodGet, "/api/v1/sessions/"+id+"/examples", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[ExamplesResponse](t, w).Examples, 1)

	w = do(t, router, http.MethodGet, "/api/v1/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	metrics := decode[MetricsResponse](t, w)
	assert.Equal(t, uint64(1), metrics.TotalTurns)
	assert.Equal(t, 1, metrics.Sessions)

	s.mu.RLock()
	assert.Equal(t, uint64(0), s.failedRequests)
	s.mu.RUnlock()
}

func TestChatCreatesSession(t *testing.T) {
	_, router := newTestRouter(t)
	w := do(t, router, http.MethodPost, "/api/v1/chat", ChatRequest{Message: "пока"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ChatResponse](t, w)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, nlp.MessageFarewell, resp.Reply.MessageType)

	w = do(t, router, http.MethodGet, "/api/v1/sessions", nil)
	assert.Equal(t, []string{resp.SessionID}, decode[SessionListResponse](t, w).Sessions)
}

func TestChatErrors(t *testing.T) {
	s, router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/chat", map[string]string{"session_id": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/chat", ChatRequest{SessionID: "missing", Message: "привет"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "session not found")

	s.mu.RLock()
	assert.Equal(t, uint64(1), s.failedRequests)
	s.mu.RUnlock()
}

func TestTrainEndpoints(t *testing.T) {
	_, router := newTestRouter(t)
	id := createSession(t, router)

	w := do(t, router, http.MethodPost, "/api/v1/train", TrainRequest{SessionID: id, Question: "кто ты", Answer: "я нейросеть"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[TrainResponse](t, w).Trained)

	w = do(t, router, http.MethodPost, "/api/v1/train/batch", BatchTrainRequest{
		SessionID: id,
		Pairs:     []neural.Pair{{Question: "привет", Answer: "Привет! Как дела?"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[TrainResponse](t, w)
	assert.Equal(t, 4, resp.Stats.Vocabulary)
	assert.Equal(t, 2, resp.Stats.Examples)

	w = do(t, router, http.MethodPost, "/api/v1/train/batch", BatchTrainRequest{SessionID: id})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/metrics", nil)
	assert.Equal(t, uint64(2), decode[MetricsResponse](t, w).TotalTrainings)
}

func TestModelEndpoints(t *testing.T) {
	_, router := newTestRouter(t)
	src := createSession(t, router)
	dst := createSession(t, router)

	do(t, router, http.MethodPost, "/api/v1/chat", ChatRequest{SessionID: src, Message: "расскажи про нейросеть"})

	w := do(t, router, http.MethodGet, "/api/v1/sessions/"+src+"/model", nil)
	require.Equal(t, http.StatusOK, w.Code)
	model := decode[ModelResponse](t, w).Model
	require.NotEmpty(t, model)

	w = do(t, router, http.MethodPut, "/api/v1/sessions/"+dst+"/model", ModelRequest{Model: model})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, router, http.MethodGet, "/api/v1/sessions/"+dst+"/model", nil)
	assert.Equal(t, model, decode[ModelResponse](t, w).Model)

	w = do(t, router, http.MethodPut, "/api/v1/sessions/"+dst+"/model", ModelRequest{Model: "{broken"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/sessions/"+dst+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[StatsResponse](t, w).Stats.Vocabulary)
}

func TestDeleteSession(t *testing.T) {
	_, router := newTestRouter(t)
	id := createSession(t, router)

	w := do(t, router, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/sessions/"+id+"/stats", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	_, router := newTestRouter(t)
	w := do(t, router, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[HealthResponse](t, w).Status)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := config.Default()
	s := New(agent.NewRegistry(cfg.Model, cfg.Agent, nil), nil)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis, gin.TestMode, time.Second) }()

	url := "http://" + lis.Addr().String() + "/api/v1/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestPortFile(t *testing.T) {
	old := PortFile
	PortFile = filepath.Join(t.TempDir(), "host.port")
	defer func() { PortFile = old }()

	_, err := ReadPortFile()
	assert.Error(t, err)

	require.NoError(t, WritePortFile(8123))
	port, err := ReadPortFile()
	require.NoError(t, err)
	assert.Equal(t, 8123, port)

	require.NoError(t, os.WriteFile(PortFile, []byte("nope"), 0644))
	_, err = ReadPortFile()
	assert.Error(t, err)

	CleanupPortFile()
	assert.NoFileExists(t, PortFile)
}
