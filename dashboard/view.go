// Package dashboard is the candidate table: filtering, sorting, skill tags and paging.
package dashboard

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/moyoez/resume-intake/types"
)

type SortField string

const (
	SortName       SortField = "name"
	SortEducation  SortField = "education"
	SortExperience SortField = "experience"
	SortSkills     SortField = "skills"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

const (
	DefaultPageSize = 10
	maxSkillTags    = 3
)

var ErrUnknownSortField = errors.New("unknown sort field")

// ParseSortField accepts the sortable column names, case-insensitively.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortName, SortEducation, SortExperience, SortSkills:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortField, s)
}

// View is the table's sort state.
type View struct {
	Field SortField
	Dir   Direction
}

func NewView() View {
	return View{Field: SortName, Dir: Ascending}
}

// Toggle is a header click: the active field flips direction, another field becomes
// active in ascending order.
func (v *View) Toggle(field SortField) {
	if field == v.Field {
		if v.Dir == Ascending {
			v.Dir = Descending
		} else {
			v.Dir = Ascending
		}
		return
	}
	v.Field = field
	v.Dir = Ascending
}

// Filter keeps records whose name, email or skills contain query, ignoring case.
func Filter(records []types.CandidateRecord, query string) []types.CandidateRecord {
	out := make([]types.CandidateRecord, 0, len(records))
	if query == "" {
		return append(out, records...)
	}
	q := strings.ToLower(query)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Email), q) ||
			strings.Contains(strings.ToLower(r.Skills), q) {
			out = append(out, r)
		}
	}
	return out
}

// Sort returns a sorted copy using locale-aware collation. Ties keep their order.
func Sort(records []types.CandidateRecord, v View) []types.CandidateRecord {
	out := slices.Clone(records)
	if out == nil {
		out = []types.CandidateRecord{}
	}
	coll := collate.New(language.English)
	slices.SortStableFunc(out, func(a, b types.CandidateRecord) int {
		if v.Dir == Descending {
			return coll.CompareString(fieldValue(b, v.Field), fieldValue(a, v.Field))
		}
		return coll.CompareString(fieldValue(a, v.Field), fieldValue(b, v.Field))
	})
	return out
}

func fieldValue(r types.CandidateRecord, f SortField) string {
	switch f {
	case SortEducation:
		return r.Education
	case SortExperience:
		return r.Experience
	case SortSkills:
		return r.Skills
	default:
		return r.Name
	}
}

// SkillTags splits skills on commas and returns the first three trimmed entries plus
// how many more there are. Empty entries are skipped.
func SkillTags(skills string) ([]string, int) {
	var all []string
	for _, s := range strings.Split(skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			all = append(all, s)
		}
	}
	if len(all) <= maxSkillTags {
		return all, 0
	}
	return all[:maxSkillTags], len(all) - maxSkillTags
}

// Paginate clamps page into range and returns that page's slice.
func Paginate[T any](rows []T, page, size int) (items []T, current, totalPages int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages = max(1, (len(rows)+size-1)/size)
	current = max(1, min(page, totalPages))
	start := (current - 1) * size
	end := min(start+size, len(rows))
	if start >= len(rows) {
		return []T{}, current, totalPages
	}
	return rows[start:end], current, totalPages
}

// BuildPage filters, sorts and pages records for display.
func BuildPage(records []types.CandidateRecord, query string, v View, page, size int) types.CandidatePage {
	if size <= 0 {
		size = DefaultPageSize
	}
	sorted := Sort(Filter(records, query), v)
	items, current, totalPages := Paginate(sorted, page, size)
	rows := make([]types.CandidateRow, 0, len(items))
	for _, r := range items {
		tags, more := SkillTags(r.Skills)
		if tags == nil {
			tags = []string{}
		}
		rows = append(rows, types.CandidateRow{CandidateRecord: r, SkillTags: tags, MoreSkills: more})
	}
	return types.CandidatePage{
		Rows:       rows,
		Page:       current,
		PageSize:   size,
		TotalPages: totalPages,
		Matched:    len(sorted),
		Total:      len(records),
		HasPrev:    current > 1,
		HasNext:    current < totalPages,
		SortField:  string(v.Field),
		SortDir:    string(v.Dir),
	}
}

// ApplyClicks replays comma separated header clicks, e.g. "name,name,skills".
func (v *View) ApplyClicks(clicks string) error {
	for _, c := range strings.Split(clicks, ",") {
		if strings.TrimSpace(c) == "" {
			continue
		}
		field, err := ParseSortField(c)
		if err != nil {
			return err
		}
		v.Toggle(field)
	}
	return nil
}
