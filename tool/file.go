package tool

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/moyoez/resume-intake/types"
)

// PendingFileFromPath stats a local file and returns a handle that opens it lazily.
func PendingFileFromPath(filePath string) (types.PendingFile, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return types.PendingFile{}, fmt.Errorf("failed to stat file: %v", err)
	}
	if fileInfo.IsDir() {
		return types.PendingFile{}, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	return types.PendingFile{
		Name: filepath.Base(filePath),
		Size: fileInfo.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(filePath)
		},
	}, nil
}

// PendingFileFromBytes wraps an in-memory payload, e.g. a dropped file.
func PendingFileFromBytes(name string, data []byte) types.PendingFile {
	return types.PendingFile{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// PendingFileFromMultipart reads a received multipart part into memory.
// The request body is gone once the handler returns, so the bytes are copied.
func PendingFileFromMultipart(header *multipart.FileHeader) (types.PendingFile, error) {
	f, err := header.Open()
	if err != nil {
		return types.PendingFile{}, fmt.Errorf("failed to open uploaded part %s: %v", header.Filename, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			DefaultLogger.Errorf("Failed to close uploaded part: %v", err)
		}
	}()
	data, err := io.ReadAll(f)
	if err != nil {
		return types.PendingFile{}, fmt.Errorf("failed to read uploaded part %s: %v", header.Filename, err)
	}
	return PendingFileFromBytes(header.Filename, data), nil
}

// HasAcceptedExtension reports whether name matches the picker filter. Advisory only.
func HasAcceptedExtension(name string, accepted []string) bool {
	if len(accepted) == 0 {
		return true
	}
	return slices.Contains(accepted, strings.ToLower(filepath.Ext(name)))
}
