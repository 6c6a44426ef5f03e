package intake

import (
	"errors"
	"fmt"

	"github.com/moyoez/resume-intake/projector"
	"github.com/moyoez/resume-intake/share"
	"github.com/moyoez/resume-intake/tool"
	"github.com/moyoez/resume-intake/types"
)

// CandidatesRoute is where the job-description view sends the user after a successful upload.
const CandidatesRoute = "/candidates"

var errNoStore = errors.New("no candidate store configured")

// Result is what a ResultHandler made of a successful response.
type Result struct {
	Records  int
	Message  string
	Summary  []string
	Redirect string
}

// ResultHandler renders a successful response and writes any candidates to the store.
// A returned error fails the session.
type ResultHandler interface {
	HandleResult(resp *types.UploadResponse) (Result, error)
}

// NewResultHandler picks the handler for a resultMode config value.
func NewResultHandler(mode string, store *share.CandidateStore) ResultHandler {
	if mode == tool.ResultModeJobDescription {
		return JobDescriptionSummary{Store: store}
	}
	return CandidateCards{Store: store}
}

// CandidateCards projects the parsed resumes into candidate records, one card each.
type CandidateCards struct {
	Store *share.CandidateStore
}

func (h CandidateCards) HandleResult(resp *types.UploadResponse) (Result, error) {
	if h.Store == nil {
		return Result{}, errNoStore
	}
	records := projector.Project(resp)
	h.Store.Ingest(records)

	summary := make([]string, 0, len(records))
	for _, r := range records {
		summary = append(summary, cardLine(r))
	}
	return Result{
		Records: len(records),
		Message: messageOr(resp, fmt.Sprintf("Processed %d resumes", len(records))),
		Summary: summary,
	}, nil
}

// JobDescriptionSummary shows the extracted job description and then redirects to the table.
// Any per-file details in the same response still go through the store.
type JobDescriptionSummary struct {
	Store    *share.CandidateStore
	Redirect string
}

func (h JobDescriptionSummary) HandleResult(resp *types.UploadResponse) (Result, error) {
	if h.Store == nil {
		return Result{}, errNoStore
	}
	records := projector.Project(resp)
	if len(records) > 0 {
		h.Store.Ingest(records)
	}
	redirect := h.Redirect
	if redirect == "" {
		redirect = CandidatesRoute
	}
	return Result{
		Records:  len(records),
		Message:  messageOr(resp, "Job description processed"),
		Summary:  projector.JobDescriptionLines(resp),
		Redirect: redirect,
	}, nil
}

func messageOr(resp *types.UploadResponse, fallback string) string {
	if resp != nil && resp.Message != "" {
		return resp.Message
	}
	return fallback
}

func cardLine(r types.CandidateRecord) string {
	line := r.Name
	if r.Email != "" {
		line += " <" + r.Email + ">"
	}
	if r.FileName != "" {
		line += " (" + r.FileName + ")"
	}
	return line
}
