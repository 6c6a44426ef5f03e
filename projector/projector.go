// Package projector maps parsing-service responses onto candidate records.
package projector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/moyoez/resume-intake/types"
)

// Project returns one record per details entry, in the order the service sent them.
func Project(resp *types.UploadResponse) []types.CandidateRecord {
	if resp == nil || len(resp.Details) == 0 {
		return []types.CandidateRecord{}
	}
	records := make([]types.CandidateRecord, 0, len(resp.Details))
	for _, d := range resp.Details {
		records = append(records, projectOne(d))
	}
	return records
}

func projectOne(d types.FileDetails) types.CandidateRecord {
	name := field(d.Fields, "name")
	if name == "" {
		name = types.UnknownName
	}
	return types.CandidateRecord{
		Name:        name,
		FileName:    d.FileName,
		Email:       field(d.Fields, "email"),
		Phone:       field(d.Fields, "phone"),
		Address:     field(d.Fields, "address"),
		Education:   field(d.Fields, "education"),
		Experience:  field(d.Fields, "experience"),
		Skills:      field(d.Fields, "skills"),
		LinkedInURL: field(d.Fields, "linkedin_url"),
		FileURL:     field(d.Fields, "file_url"),
		Status:      types.DefaultStatus,
	}
}

func field(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Stringify renders a loosely typed JSON value as display text. Lists join with ", ".
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := Stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}

// JobDescriptionLines renders job_description for the summary view.
// A mapping becomes "KEY NAME: value" lines in wire order.
func JobDescriptionLines(resp *types.UploadResponse) []string {
	if resp == nil || resp.JobDescription == nil {
		return nil
	}
	jd := resp.JobDescription
	if jd.Fields == nil {
		if jd.Text == "" {
			return nil
		}
		return []string{jd.Text}
	}
	lines := make([]string, 0, len(jd.Fields))
	for _, kv := range jd.Fields {
		label := strings.ToUpper(strings.ReplaceAll(kv.Key, "_", " "))
		lines = append(lines, fmt.Sprintf("%s: %s", label, Stringify(kv.Value)))
	}
	return lines
}
