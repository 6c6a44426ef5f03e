package tool

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUploadURL(t *testing.T) {
	u, err := BuildUploadURL("http://127.0.0.1:8000/", "/api/upload-files-process/")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000/api/upload-files-process/", u)

	_, err = BuildUploadURL("127.0.0.1:8000", "/x")
	assert.Error(t, err)
}

func TestURLHelpers(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8080/api/candidates/v1", BuildDashboardURL("", 8080))

	host, err := HostOf("https://parser.lan:8443/base")
	require.NoError(t, err)
	assert.Equal(t, "parser.lan", host)

	addr, err := dialAddr("https://parser.lan/base")
	require.NoError(t, err)
	assert.Equal(t, "parser.lan:443", addr)

	_, err = HostOf("/relative")
	assert.Error(t, err)
}

func TestPendingFileFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))

	f, err := PendingFileFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", f.Name)
	assert.Equal(t, int64(4), f.Size)
	rc, err := f.Open()
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	assert.Equal(t, "%PDF", string(data))

	_, err = PendingFileFromPath(dir)
	assert.Error(t, err)
}

func TestPendingFileFromMultipart(t *testing.T) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("files", "cv.docx")
	require.NoError(t, err)
	_, _ = part.Write([]byte("docx bytes"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	f, err := PendingFileFromMultipart(req.MultipartForm.File["files"][0])
	require.NoError(t, err)
	assert.Equal(t, "cv.docx", f.Name)
	assert.Equal(t, int64(10), f.Size)
}

func TestHasAcceptedExtension(t *testing.T) {
	accepted := []string{".pdf", ".docx", ".doc"}
	assert.True(t, HasAcceptedExtension("CV.PDF", accepted))
	assert.False(t, HasAcceptedExtension("notes.txt", accepted))
	assert.True(t, HasAcceptedExtension("notes.txt", nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
}
