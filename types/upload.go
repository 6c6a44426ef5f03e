package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
)

// PendingFile is a file selected by the user but not yet submitted.
type PendingFile struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// SizeLabel renders the size the way the upload list shows it, e.g. "12.3 KB".
func (f PendingFile) SizeLabel() string {
	return fmt.Sprintf("%.1f KB", float64(f.Size)/1024)
}

// PendingFileInfo is the JSON view of a PendingFile.
type PendingFileInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	Label string `json:"label"`
}

// FileDetails holds the extracted fields for one uploaded file.
type FileDetails struct {
	FileName string
	Fields   map[string]any
}

// Details maps original file names to extracted fields, in the order the service sent them.
type Details []FileDetails

// KeyValue is one entry of an ordered JSON object.
type KeyValue struct {
	Key   string
	Value any
}

// JobDescription is either a plain string or an ordered key/value mapping.
type JobDescription struct {
	Text   string
	Fields []KeyValue
}

// UploadResponse is the success body of the parsing service.
type UploadResponse struct {
	Message        string          `json:"message,omitempty"`
	Details        Details         `json:"details,omitempty"`
	JobDescription *JobDescription `json:"job_description,omitempty"`
}

// UnmarshalJSON keeps the key order of the details object.
// A repeated key keeps its first position and its last value.
func (d *Details) UnmarshalJSON(data []byte) error {
	var out Details
	seen := map[string]int{}
	isNull, err := decodeOrdered(data, func(key string, raw json.RawMessage) error {
		fields := map[string]any{}
		if err := sonic.Unmarshal(raw, &fields); err != nil || fields == nil {
			// a non-object entry carries no usable fields
			fields = map[string]any{}
		}
		if i, ok := seen[key]; ok {
			out[i].Fields = fields
			return nil
		}
		seen[key] = len(out)
		out = append(out, FileDetails{FileName: key, Fields: fields})
		return nil
	})
	if err != nil {
		return fmt.Errorf("details: %w", err)
	}
	if isNull {
		*d = nil
		return nil
	}
	*d = out
	return nil
}

func (d Details) MarshalJSON() ([]byte, error) {
	kvs := make([]KeyValue, 0, len(d))
	for _, fd := range d {
		kvs = append(kvs, KeyValue{Key: fd.FileName, Value: fd.Fields})
	}
	return encodeOrdered(kvs)
}

func (j *JobDescription) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text string
		if err := sonic.Unmarshal(trimmed, &text); err != nil {
			return fmt.Errorf("job_description: %w", err)
		}
		*j = JobDescription{Text: text}
		return nil
	}
	var fields []KeyValue
	_, err := decodeOrdered(trimmed, func(key string, raw json.RawMessage) error {
		var v any
		if err := sonic.Unmarshal(raw, &v); err != nil {
			return err
		}
		fields = append(fields, KeyValue{Key: key, Value: v})
		return nil
	})
	if err != nil {
		return fmt.Errorf("job_description: %w", err)
	}
	*j = JobDescription{Fields: fields}
	return nil
}

func (j JobDescription) MarshalJSON() ([]byte, error) {
	if j.Fields == nil {
		return sonic.Marshal(j.Text)
	}
	return encodeOrdered(j.Fields)
}

// decodeOrdered walks a JSON object calling fn for every member in document order.
// It reports isNull for a literal null.
func decodeOrdered(data []byte, fn func(key string, raw json.RawMessage) error) (isNull bool, err error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return false, err
	}
	if tok == nil {
		return true, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return false, fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return false, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return false, fmt.Errorf("unexpected object key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return false, err
		}
		if err := fn(key, raw); err != nil {
			return false, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return false, err
	}
	return false, nil
}

func encodeOrdered(kvs []KeyValue) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range kvs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := sonic.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		val, err := sonic.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
