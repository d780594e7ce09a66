package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"io.winapps.dailyreflect/internal/middleware"
	journalmodels "io.winapps.dailyreflect/internal/models/journal"
	submitmodels "io.winapps.dailyreflect/internal/models/submit"
	"io.winapps.dailyreflect/internal/prompt"
	"io.winapps.dailyreflect/internal/store"
)

type stubGenerator struct {
	calls int
	err   error
}

func (g *stubGenerator) GeneratePrompt(_ context.Context, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return fmt.Sprintf("Question %d", g.calls), nil
}

func clockAt(date string) func() time.Time {
	t, _ := time.Parse("2006-01-02", date)
	return func() time.Time { return t }
}

type testApp struct {
	router  *gin.Engine
	store   *store.FileStore
	cache   *prompt.Cache
	gen     *stubGenerator
	dataDir string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dataDir := t.TempDir()
	fs, err := store.NewFileStore(dataDir)
	require.NoError(t, err)

	gen := &stubGenerator{}
	cache := prompt.NewCache(fs, gen)
	cache.SetClock(clockAt("2024-01-05"))

	h := NewJournalHandler(cache, fs, zap.NewNop().Sugar())

	router := gin.New()
	router.LoadHTMLGlob(filepath.Join("..", "..", "templates", "*.html"))
	journal := router.Group("/")
	journal.Use(middleware.SessionMiddleware([]byte("test-secret")))
	{
		journal.GET("/", h.Today)
		journal.POST("/api/submit", h.Submit)
		journal.GET("/history", h.History)
	}

	return &testApp{router: router, store: fs, cache: cache, gen: gen, dataDir: dataDir}
}

// testClient carries its session cookie between requests, like a browser.
type testClient struct {
	cookies []*http.Cookie
}

func (tc *testClient) do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range tc.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	tc.cookies = append(tc.cookies, rec.Result().Cookies()...)
	return rec
}

func decodeSubmitResponse(t *testing.T, rec *httptest.ResponseRecorder) submitmodels.SubmitResponse {
	t.Helper()
	var resp submitmodels.SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// sessionDirOf finds the single session partition created under the data dir.
func sessionDirOf(t *testing.T, app *testApp) string {
	t.Helper()
	files, err := os.ReadDir(filepath.Join(app.dataDir, "responses"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	return files[0].Name()
}

func TestSubmit_EmptyAnswerRejected(t *testing.T) {
	app := newTestApp(t)
	client := &testClient{}

	rec := client.do(app.router, "POST", "/api/submit", `{"answer": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeSubmitResponse(t, rec).Success)

	rec = client.do(app.router, "POST", "/api/submit", `{"answer": "   \n\t "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSubmitResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "No response submitted.", resp.Message)

	// The earlier answer is untouched
	rec = client.do(app.router, "GET", "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello")
}

func TestSubmit_EmptyAnswerNeverCallsGenerator(t *testing.T) {
	app := newTestApp(t)
	client := &testClient{}

	rec := client.do(app.router, "POST", "/api/submit", `{"answer": ""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeSubmitResponse(t, rec).Success)
	assert.Equal(t, 0, app.gen.calls)
}

func TestSubmitAndToday(t *testing.T) {
	app := newTestApp(t)
	client := &testClient{}

	rec := client.do(app.router, "POST", "/api/submit", `{"answer": "  Wrote some Go today.  "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeSubmitResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Response saved.", resp.Message)

	rec = client.do(app.router, "GET", "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Question 1")
	// Whitespace was trimmed before persisting
	assert.Contains(t, body, "Wrote some Go today.")

	// Prompt was generated once and cached for both requests
	assert.Equal(t, 1, app.gen.calls)
}

func TestSubmit_LastWriteWins(t *testing.T) {
	app := newTestApp(t)
	client := &testClient{}

	rec := client.do(app.router, "POST", "/api/submit", `{"answer": "first draft"}`)
	require.True(t, decodeSubmitResponse(t, rec).Success)
	rec = client.do(app.router, "POST", "/api/submit", `{"answer": "second thoughts"}`)
	require.True(t, decodeSubmitResponse(t, rec).Success)

	rec = client.do(app.router, "GET", "/", "")
	body := rec.Body.String()
	assert.Contains(t, body, "second thoughts")
	assert.NotContains(t, body, "first draft")

	rec = client.do(app.router, "GET", "/history", "")
	body = rec.Body.String()
	assert.Contains(t, body, "second thoughts")
	assert.NotContains(t, body, "first draft")
}

func TestSessionIsolation(t *testing.T) {
	app := newTestApp(t)
	alice := &testClient{}
	bob := &testClient{}

	rec := alice.do(app.router, "POST", "/api/submit", `{"answer": "apples"}`)
	require.True(t, decodeSubmitResponse(t, rec).Success)
	rec = bob.do(app.router, "POST", "/api/submit", `{"answer": "oranges"}`)
	require.True(t, decodeSubmitResponse(t, rec).Success)

	rec = alice.do(app.router, "GET", "/", "")
	assert.Contains(t, rec.Body.String(), "apples")
	assert.NotContains(t, rec.Body.String(), "oranges")

	rec = bob.do(app.router, "GET", "/history", "")
	assert.Contains(t, rec.Body.String(), "oranges")
	assert.NotContains(t, rec.Body.String(), "apples")
}

func TestHistory_OrderingAndCorruptSkip(t *testing.T) {
	app := newTestApp(t)
	client := &testClient{}

	// Establish a session partition, then seed older records directly
	rec := client.do(app.router, "POST", "/api/submit", `{"answer": "today's entry"}`)
	require.True(t, decodeSubmitResponse(t, rec).Success)
	sid := sessionDirOf(t, app)

	ctx := context.Background()
	require.NoError(t, app.store.Put(ctx, sid, "2024-01-01", journalmodels.Entry{Prompt: "Q-old-1", Response: "R-old-1"}))
	require.NoError(t, app.store.Put(ctx, sid, "2024-01-02", journalmodels.Entry{Prompt: "Q-old-2", Response: "R-old-2"}))
	require.NoError(t, app.store.Put(ctx, sid, "2024-01-03", journalmodels.Entry{Prompt: "Q-old-3", Response: "R-old-3"}))

	corrupt := filepath.Join(app.dataDir, "responses", sid, "2024-01-02.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0o644))

	rec = client.do(app.router, "GET", "/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	// Most recent first, corrupt record skipped without failing the page
	idxToday := strings.Index(body, "today's entry")
	idx3 := strings.Index(body, "R-old-3")
	idx1 := strings.Index(body, "R-old-1")
	require.GreaterOrEqual(t, idxToday, 0)
	require.GreaterOrEqual(t, idx3, 0)
	require.GreaterOrEqual(t, idx1, 0)
	assert.Less(t, idxToday, idx3)
	assert.Less(t, idx3, idx1)
	assert.NotContains(t, body, "R-old-2")
}

func TestPromptDenormalization(t *testing.T) {
	app := newTestApp(t)
	client := &testClient{}

	rec := client.do(app.router, "POST", "/api/submit", `{"answer": "day five reflection"}`)
	require.True(t, decodeSubmitResponse(t, rec).Success)

	// Next day: the global slot rolls over to a new question
	app.cache.SetClock(clockAt("2024-01-06"))

	rec = client.do(app.router, "GET", "/", "")
	assert.Contains(t, rec.Body.String(), "Question 2")

	// The saved entry still reports the question it answered
	rec = client.do(app.router, "GET", "/history", "")
	body := rec.Body.String()
	assert.Contains(t, body, "Question 1")
	assert.Contains(t, body, "day five reflection")
}

func TestToday_GeneratorFailure(t *testing.T) {
	app := newTestApp(t)
	app.gen.err = errors.New("quota exceeded")
	client := &testClient{}

	rec := client.do(app.router, "GET", "/", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// No backend detail leaks to the client
	assert.NotContains(t, rec.Body.String(), "quota")
}

func TestSubmit_InvalidJSON(t *testing.T) {
	app := newTestApp(t)
	client := &testClient{}

	rec := client.do(app.router, "POST", "/api/submit", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
