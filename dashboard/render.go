package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/moyoez/resume-intake/types"
)

// Render writes a page as a text table followed by the paging line.
func Render(w io.Writer, page types.CandidatePage) error {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{
		header("Name", SortName, page),
		"Contact",
		header("Education", SortEducation, page),
		header("Experience", SortExperience, page),
		header("Skills", SortSkills, page),
		"Status",
	})
	for _, row := range page.Rows {
		table.Append([]string{
			joinNonEmpty(" / ", row.Name, row.FileName),
			joinNonEmpty(" / ", row.Email, row.Phone),
			row.Education,
			row.Experience,
			skillCell(row),
			row.Status,
		})
	}
	table.Render()

	_, err := fmt.Fprintf(w, "Showing %d of %d candidates, page %d of %d\n",
		len(page.Rows), page.Total, page.Page, page.TotalPages)
	return err
}

func header(title string, field SortField, page types.CandidatePage) string {
	if page.SortField != string(field) {
		return title
	}
	if page.SortDir == string(Descending) {
		return title + " v"
	}
	return title + " ^"
}

func skillCell(row types.CandidateRow) string {
	cell := strings.Join(row.SkillTags, ", ")
	if row.MoreSkills > 0 {
		cell += fmt.Sprintf(" +%d", row.MoreSkills)
	}
	return cell
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
