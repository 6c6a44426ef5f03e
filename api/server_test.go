package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/resume-intake/intake"
	"github.com/moyoez/resume-intake/notify"
	"github.com/moyoez/resume-intake/share"
	"github.com/moyoez/resume-intake/tool"
	"github.com/moyoez/resume-intake/transfer"
	"github.com/moyoez/resume-intake/types"
)

type stubUploader struct {
	resp *types.UploadResponse
	err  error
}

func (s *stubUploader) Upload(_ context.Context, files []types.PendingFile, onProgress func(int)) (*types.UploadResponse, error) {
	if onProgress != nil {
		onProgress(100)
	}
	return s.resp, s.err
}

type testEnv struct {
	router   http.Handler
	intake   *intake.Controller
	store    *share.CandidateStore
	uploader *stubUploader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tool.SetLogMode("none")

	cfg := tool.DefaultConfig()
	cfg.CompletionHold = time.Millisecond
	cfg.ProgressInterval = time.Millisecond
	require.NoError(t, tool.ApplyFlagOverrides(&cfg, types.Config{}))
	up := &stubUploader{resp: &types.UploadResponse{Message: "ok"}}
	store := share.NewCandidateStore(time.Minute, share.Append, nil)
	ctrl := intake.NewController(up, intake.CandidateCards{Store: store}, nil, intake.OptionsFromConfig(cfg))

	srv := NewServer(context.Background(), Deps{
		Config:    cfg,
		Intake:    ctrl,
		Store:     store,
		Uploader:  up,
		UploadURL: "http://127.0.0.1:8000/api/upload-files-process/",
		Hub:       notify.NewHub(),
	})
	return &testEnv{router: srv.Handler(), intake: ctrl, store: store, uploader: up}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	if req.RemoteAddr == "192.0.2.1:1234" {
		req.RemoteAddr = "127.0.0.1:50000"
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func multipartRequest(t *testing.T, method, path, field string, names ...string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, name := range names {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, _ = part.Write([]byte("content of " + name))
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPendingRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(multipartRequest(t, http.MethodPost, "/api/intake/v1/pending", "files", "a.pdf", "notes.txt", "a.pdf"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, []any{"notes.txt"}, body["unlisted"])
	assert.Len(t, env.intake.Pending(), 3)

	w = env.do(httptest.NewRequest(http.MethodDelete, "/api/intake/v1/pending/1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	files := decodeBody(t, w)["data"].(map[string]any)["files"].([]any)
	require.Len(t, files, 2)
	assert.Equal(t, "a.pdf", files[1].(map[string]any)["name"])

	w = env.do(httptest.NewRequest(http.MethodDelete, "/api/intake/v1/pending/9", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, env.intake.Pending(), 2)

	w = env.do(httptest.NewRequest(http.MethodDelete, "/api/intake/v1/pending/x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(httptest.NewRequest(http.MethodDelete, "/api/intake/v1/pending", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.intake.Pending())
}

func TestDragRoute(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(httptest.NewRequest(http.MethodPut, "/api/intake/v1/drag", strings.NewReader(`{"dragging":true}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.intake.Dragging())

	w = env.do(multipartRequest(t, http.MethodPost, "/api/intake/v1/pending?drop=true", "files", "cv.pdf"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.intake.Dragging())

	w = env.do(httptest.NewRequest(http.MethodPut, "/api/intake/v1/drag", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitRoute(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(httptest.NewRequest(http.MethodPost, "/api/intake/v1/submit", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.uploader.resp = &types.UploadResponse{Details: types.Details{
		{FileName: "cv.pdf", Fields: map[string]any{"name": "Jane Doe"}},
	}}
	env.intake.AddFiles(tool.PendingFileFromBytes("cv.pdf", []byte("x")))
	w = env.do(httptest.NewRequest(http.MethodPost, "/api/intake/v1/submit", nil))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	id := decodeBody(t, w)["data"].(map[string]any)["id"].(string)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := env.intake.Wait(ctx)
	require.NoError(t, err)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/intake/v1/session?id="+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "succeeded", decodeBody(t, w)["data"].(map[string]any)["outcome"])

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/intake/v1/session?id=missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Len(t, env.store.Load(), 1)
}

func TestCandidateRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.store.Ingest([]types.CandidateRecord{
		{Name: "Bob", Email: "bob@x.com", Skills: "Java", Status: "New"},
		{Name: "Ann", Email: "ann@x.com", Skills: "SQL", Status: "New"},
	})

	names := func(w *httptest.ResponseRecorder) []string {
		rows := decodeBody(t, w)["data"].(map[string]any)["rows"].([]any)
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = r.(map[string]any)["name"].(string)
		}
		return out
	}

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/candidates/v1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Ann", "Bob"}, names(w))

	w = env.do(httptest.NewRequest(http.MethodPost, "/api/candidates/v1/sort/name", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Bob", "Ann"}, names(w))

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/candidates/v1?q=sql", nil))
	assert.Equal(t, []string{"Ann"}, names(w))

	w = env.do(httptest.NewRequest(http.MethodPost, "/api/candidates/v1/sort/phone", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(httptest.NewRequest(http.MethodGet, "/api/candidates/v1?pageSize=1&page=2", nil))
	page := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(2), page["totalPages"])
	assert.Equal(t, []string{"Ann"}, names(w))

	w = env.do(httptest.NewRequest(http.MethodDelete, "/api/candidates/v1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.store.Load())
}

func TestTableUploadGoesThroughProjector(t *testing.T) {
	env := newTestEnv(t)
	env.store.Ingest([]types.CandidateRecord{{Name: "Existing", Status: "New"}})
	env.uploader.resp = &types.UploadResponse{Details: types.Details{
		{FileName: "new.pdf", Fields: map[string]any{"email": "n@x.com"}},
	}}

	w := env.do(multipartRequest(t, http.MethodPost, "/api/candidates/v1/upload", "file", "new.pdf"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	records := env.store.Load()
	require.Len(t, records, 2)
	assert.Equal(t, types.UnknownName, records[1].Name)
	assert.Equal(t, "new.pdf", records[1].FileName)
	assert.Equal(t, types.DefaultStatus, records[1].Status)

	env.uploader.err = &transfer.NoResponseError{}
	w = env.do(multipartRequest(t, http.MethodPost, "/api/candidates/v1/upload", "file", "again.pdf"))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, transfer.NoResponseMessage, decodeBody(t, w)["error"])

	w = env.do(httptest.NewRequest(http.MethodPost, "/api/candidates/v1/upload", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQRCode(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(httptest.NewRequest(http.MethodGet, "/api/candidates/v1/qr?size=128x128&host=10.0.0.2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "http://10.0.0.2:8080/api/candidates/v1", w.Header().Get("X-Dashboard-URL"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestRemoteClientsCannotMutate(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/intake/v1/pending", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	w := env.do(req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/candidates/v1/sort/name", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	assert.Equal(t, http.StatusForbidden, env.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/candidates/v1", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	assert.Equal(t, http.StatusOK, env.do(req).Code)
}

func TestForwardedHeadersDoNotGrantLocalAccess(t *testing.T) {
	env := newTestEnv(t)
	env.intake.AddFiles(tool.PendingFileFromBytes("a.pdf", []byte("x")))

	for _, header := range []string{"X-Forwarded-For", "X-Real-IP"} {
		req := httptest.NewRequest(http.MethodDelete, "/api/intake/v1/pending", nil)
		req.RemoteAddr = "192.168.1.50:4444"
		req.Header.Set(header, "127.0.0.1")
		assert.Equal(t, http.StatusForbidden, env.do(req).Code, header)
	}
	assert.Len(t, env.intake.Pending(), 1)

	req := httptest.NewRequest(http.MethodDelete, "/api/intake/v1/pending", nil)
	req.RemoteAddr = "[::1]:4444"
	assert.Equal(t, http.StatusOK, env.do(req).Code)
	assert.Empty(t, env.intake.Pending())
}

func TestExportImport(t *testing.T) {
	env := newTestEnv(t)
	env.store.Ingest([]types.CandidateRecord{
		{Name: "Ann", Email: "ann@x.com", Status: "New"},
		{Name: "Bob", Email: "bob@x.com", Status: "New"},
	})

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/candidates/v1/export", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	exported := w.Body.Bytes()
	assert.Contains(t, string(exported), `"name":"Bob"`)

	env.store.Clear()
	w = env.do(httptest.NewRequest(http.MethodPost, "/api/candidates/v1/import", bytes.NewReader(exported)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	records := env.store.Load()
	require.Len(t, records, 2)
	assert.Equal(t, "Ann", records[0].Name)

	w = env.do(httptest.NewRequest(http.MethodPost, "/api/candidates/v1/import", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, env.store.Load(), 2)
}

func TestConfigRoute(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(httptest.NewRequest(http.MethodGet, "/api/intake/v1/config", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, tool.DefaultConfig().ParserBaseURL, data["parserBaseURL"])
	assert.Equal(t, tool.IngestPolicyAppend, data["ingestPolicy"])
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(httptest.NewRequest(http.MethodOptions, "/api/candidates/v1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
