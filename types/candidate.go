package types

const (
	// UnknownName replaces an absent candidate name.
	UnknownName = "Unknown"
	// DefaultStatus is the workflow tag every new record starts with.
	DefaultStatus = "New"
)

// CandidateRecord is the normalized unit of parsed resume data shown in the candidate table.
// Every field is a string; absent upstream data is stored as a sentinel, never omitted.
type CandidateRecord struct {
	Name        string `json:"name"`
	FileName    string `json:"fileName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Education   string `json:"education"`
	Experience  string `json:"experience"`
	Skills      string `json:"skills"` // comma delimited
	LinkedInURL string `json:"linkedinUrl"`
	FileURL     string `json:"fileUrl"`
	Status      string `json:"status"`
}

// CandidateRow is a CandidateRecord with its display-only skill tags.
type CandidateRow struct {
	CandidateRecord
	SkillTags  []string `json:"skillTags"`
	MoreSkills int      `json:"moreSkills"`
}

// CandidatePage is one page of the filtered and sorted candidate table.
type CandidatePage struct {
	Rows       []CandidateRow `json:"rows"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
	Matched    int            `json:"matched"` // rows after filtering
	Total      int            `json:"total"`   // rows in storage
	HasPrev    bool           `json:"hasPrev"`
	HasNext    bool           `json:"hasNext"`
	SortField  string         `json:"sortField"`
	SortDir    string         `json:"sortDir"`
}
