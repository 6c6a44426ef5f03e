package types

import "time"

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	ParserBaseURL      string        `yaml:"parserBaseURL" json:"parserBaseURL"`
	UploadPath         string        `yaml:"uploadPath" json:"uploadPath"`
	FilesField         string        `yaml:"filesField" json:"filesField"`
	SessionField       string        `yaml:"sessionField" json:"sessionField"`
	SessionCookie      string        `yaml:"sessionCookie" json:"sessionCookie"`
	Port               int           `yaml:"port" json:"port"`
	IngestPolicy       string        `yaml:"ingestPolicy" json:"ingestPolicy"` // append | replace
	ResultMode         string        `yaml:"resultMode" json:"resultMode"`     // cards | job-description
	PageSize           int           `yaml:"pageSize" json:"pageSize"`
	SessionTTL         time.Duration `yaml:"sessionTTL" json:"sessionTTL"`
	ProgressStep       float64       `yaml:"progressStep" json:"progressStep"`
	ProgressInterval   time.Duration `yaml:"progressInterval" json:"progressInterval"`
	CompletionHold     time.Duration `yaml:"completionHold" json:"completionHold"`
	RequestTimeout     time.Duration `yaml:"requestTimeout" json:"requestTimeout"`
	BroadcastRate      int           `yaml:"broadcastRate" json:"broadcastRate"`                               // notify events per second, 0 = unlimited
	AcceptedExtensions []string      `yaml:"acceptedExtensions,omitempty" json:"acceptedExtensions,omitempty"` // advisory only, never enforced on drop
}

// Config holds runtime overrides from CLI flags
type Config struct {
	Log              string
	UseConfigPath    string
	UseEnvPath       string
	UseParserURL     string
	UseSessionCookie string
	UsePort          int
	UseIngestPolicy  string
	UseResultMode    string
	UsePageSize      int
	Query            string // table filter for CLI output
	Sort             string // comma separated sort header clicks, e.g. "name,name,skills"
	Page             int
	Check            bool     // probe the parser host and exit
	Files            []string // positional args; non-empty means CLI upload mode
}
