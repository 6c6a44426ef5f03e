package tool

import (
	"flag"
	"os"

	"github.com/moyoez/resume-intake/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.Config {
	return ParseFlags(flag.CommandLine, nil)
}

// ParseFlags registers the intake flags on fs and parses args (os.Args[1:] when nil).
func ParseFlags(fs *flag.FlagSet, args []string) types.Config {
	var cfg types.Config
	fs.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	fs.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	fs.StringVar(&cfg.UseEnvPath, "useEnvPath", "", "override .env file path")
	fs.StringVar(&cfg.UseParserURL, "useParserURL", "", "override parsing service base URL")
	fs.StringVar(&cfg.UseSessionCookie, "useSessionCookie", "", "override session identifier sent with uploads")
	fs.IntVar(&cfg.UsePort, "usePort", 0, "override local API port")
	fs.StringVar(&cfg.UseIngestPolicy, "useIngestPolicy", "", "append|replace candidates on each upload")
	fs.StringVar(&cfg.UseResultMode, "useResultMode", "", "cards|job-description")
	fs.IntVar(&cfg.UsePageSize, "usePageSize", 0, "override candidate table page size")
	fs.StringVar(&cfg.Query, "query", "", "filter the printed candidate table (CLI mode)")
	fs.StringVar(&cfg.Sort, "sort", "", "header clicks applied to the printed table, e.g. name,name (CLI mode)")
	fs.IntVar(&cfg.Page, "page", 1, "page of the printed table (CLI mode)")
	fs.BoolVar(&cfg.Check, "check", false, "probe the parsing service host and exit")
	if args == nil {
		args = os.Args[1:]
	}
	if err := fs.Parse(args); err != nil {
		DefaultLogger.Warnf("Failed to parse flags: %v", err)
	}
	cfg.Files = fs.Args()
	return cfg
}
