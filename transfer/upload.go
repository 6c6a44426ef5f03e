package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/moyoez/resume-intake/tool"
	"github.com/moyoez/resume-intake/types"
)

// Client posts resumes to the parsing service.
type Client struct {
	httpClient   *http.Client
	uploadURL    string
	filesField   string
	sessionField string
	sessionValue string
}

// NewClient builds a Client from config. httpClient may be nil.
func NewClient(cfg types.AppConfig, httpClient *http.Client) (*Client, error) {
	uploadURL, err := tool.BuildUploadURL(cfg.ParserBaseURL, cfg.UploadPath)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = tool.NewHTTPClient(cfg.RequestTimeout)
	}
	filesField := cfg.FilesField
	if filesField == "" {
		filesField = "files"
	}
	return &Client{
		httpClient:   httpClient,
		uploadURL:    uploadURL,
		filesField:   filesField,
		sessionField: cfg.SessionField,
		sessionValue: cfg.SessionCookie,
	}, nil
}

func (c *Client) UploadURL() string {
	return c.uploadURL
}

// Upload sends files as one multipart request and decodes the service response.
// onProgress receives non-decreasing raw percentages and may be nil.
// Failures are *RequestError, *NoResponseError or *ServerError.
func (c *Client) Upload(ctx context.Context, files []types.PendingFile, onProgress func(int)) (*types.UploadResponse, error) {
	if len(files) == 0 {
		return nil, &RequestError{Err: fmt.Errorf("no files to upload")}
	}

	body, contentType, err := c.buildBody(files)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	total := int64(body.Len())

	reader := &progressReader{r: body, total: total, report: onProgress}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, reader)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("failed to create upload request: %v", err)}
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	tool.DefaultLogger.Infof("[Transfer] Uploading %d files (%d bytes) to %s", len(files), total, c.uploadURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NoResponseError{Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		tool.DefaultLogger.Warnf("[Transfer] Failed to read response body: %v", readErr)
	} else if len(respBody) > 0 {
		tool.DefaultLogger.Debugf("[Transfer] Upload response: %s", tool.Truncate(string(respBody), 512))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &ServerError{StatusCode: resp.StatusCode, Detail: parseDetail(respBody)}
	}
	if readErr != nil {
		return nil, &NoResponseError{Err: readErr}
	}

	var result types.UploadResponse
	if len(bytes.TrimSpace(respBody)) > 0 {
		if err := sonic.Unmarshal(respBody, &result); err != nil {
			return nil, &RequestError{Err: fmt.Errorf("failed to parse upload response: %v", err)}
		}
	}
	tool.DefaultLogger.Infof("[Transfer] Upload finished: %d file entries in response", len(result.Details))
	return &result, nil
}

func (c *Client) buildBody(files []types.PendingFile) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range files {
		if f.Open == nil {
			return nil, "", fmt.Errorf("file %s has no payload", f.Name)
		}
		if err := writePart(writer, c.filesField, f); err != nil {
			return nil, "", err
		}
	}
	if c.sessionField != "" {
		if err := writer.WriteField(c.sessionField, c.sessionValue); err != nil {
			return nil, "", fmt.Errorf("failed to write %s field: %v", c.sessionField, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %v", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func writePart(writer *multipart.Writer, field string, f types.PendingFile) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %v", f.Name, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close %s: %v", f.Name, err)
		}
	}()
	part, err := writer.CreateFormFile(field, f.Name)
	if err != nil {
		return fmt.Errorf("failed to create form part for %s: %v", f.Name, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("failed to read %s: %v", f.Name, err)
	}
	return nil
}

// parseDetail extracts the service's "detail" field. Non-string details are kept as JSON.
func parseDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var errorResponse struct {
		Detail any `json:"detail"`
	}
	if err := sonic.Unmarshal(body, &errorResponse); err != nil || errorResponse.Detail == nil {
		return ""
	}
	if s, ok := errorResponse.Detail.(string); ok {
		return s
	}
	raw, err := sonic.Marshal(errorResponse.Detail)
	if err != nil {
		return ""
	}
	return string(raw)
}
