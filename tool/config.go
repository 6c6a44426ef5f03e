package tool

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/moyoez/resume-intake/types"
)

const (
	IngestPolicyAppend  = "append"
	IngestPolicyReplace = "replace"

	ResultModeCards          = "cards"
	ResultModeJobDescription = "job-description"
)

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	EnvPath       = ".env"
	CurrentConfig types.AppConfig
)

func DefaultConfig() types.AppConfig {
	return types.AppConfig{
		ParserBaseURL:      "http://127.0.0.1:8000",
		UploadPath:         "/api/upload-files-process/",
		FilesField:         "files",
		SessionField:       "session_cookie",
		SessionCookie:      "123", // the parsing service has no auth yet, any constant works
		Port:               8080,
		IngestPolicy:       IngestPolicyAppend,
		ResultMode:         ResultModeCards,
		PageSize:           10,
		SessionTTL:         60 * time.Minute,
		ProgressStep:       0.8,
		ProgressInterval:   30 * time.Millisecond,
		CompletionHold:     500 * time.Millisecond,
		RequestTimeout:     5 * time.Minute, // parsing runs an LLM per file, keep it long
		BroadcastRate:      20,
		AcceptedExtensions: []string{".pdf", ".docx", ".doc"},
	}
}

// LoadConfig reads the YAML config at path, writing a default one when missing.
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := DefaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
				return cfg, fmt.Errorf("config file not found, and failed to generate default config: %v", writeErr)
			}
			DefaultLogger.Infof("Created new config file at %s", path)
			CurrentConfig = cfg
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return cfg, err
	}

	CurrentConfig = cfg
	return cfg, nil
}

// ValidateConfig normalizes enum fields and rejects values the intake flow cannot run with.
func ValidateConfig(cfg *types.AppConfig) error {
	cfg.ParserBaseURL = strings.TrimRight(cfg.ParserBaseURL, "/")
	if cfg.ParserBaseURL == "" {
		return fmt.Errorf("config error: parserBaseURL must not be empty")
	}
	if cfg.UploadPath != "" && !strings.HasPrefix(cfg.UploadPath, "/") {
		cfg.UploadPath = "/" + cfg.UploadPath
	}
	cfg.IngestPolicy = strings.ToLower(cfg.IngestPolicy)
	switch cfg.IngestPolicy {
	case "":
		cfg.IngestPolicy = IngestPolicyAppend
	case IngestPolicyAppend, IngestPolicyReplace:
	default:
		return fmt.Errorf("config error: unknown ingestPolicy %q", cfg.IngestPolicy)
	}
	cfg.ResultMode = strings.ToLower(cfg.ResultMode)
	switch cfg.ResultMode {
	case "":
		cfg.ResultMode = ResultModeCards
	case ResultModeCards, ResultModeJobDescription:
	default:
		return fmt.Errorf("config error: unknown resultMode %q", cfg.ResultMode)
	}
	if cfg.FilesField == "" {
		cfg.FilesField = "files"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.ProgressStep <= 0 {
		return fmt.Errorf("config error: progressStep must be positive")
	}
	if cfg.ProgressInterval <= 0 {
		return fmt.Errorf("config error: progressInterval must be positive")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("config error: port %d out of range", cfg.Port)
	}
	return nil
}

// ApplyEnvOverrides loads envPath (missing file is fine) and applies INTAKE_* variables.
func ApplyEnvOverrides(cfg *types.AppConfig, envPath string) error {
	if envPath == "" {
		envPath = EnvPath
	}
	if err := godotenv.Load(envPath); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load env file %s: %w", envPath, err)
		}
		DefaultLogger.Debugf("No env file at %s, using process environment", envPath)
	}
	if v := os.Getenv("INTAKE_PARSER_URL"); v != "" {
		cfg.ParserBaseURL = v
	}
	if v := os.Getenv("INTAKE_SESSION_COOKIE"); v != "" {
		cfg.SessionCookie = v
	}
	if v := os.Getenv("INTAKE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse INTAKE_PORT: %w", err)
		}
		cfg.Port = port
	}
	return ValidateConfig(cfg)
}

// ApplyFlagOverrides merges non-zero CLI flags into cfg.
func ApplyFlagOverrides(cfg *types.AppConfig, flags types.Config) error {
	if flags.UseParserURL != "" {
		cfg.ParserBaseURL = flags.UseParserURL
	}
	if flags.UseSessionCookie != "" {
		cfg.SessionCookie = flags.UseSessionCookie
	}
	if flags.UsePort > 0 {
		cfg.Port = flags.UsePort
	}
	if flags.UseIngestPolicy != "" {
		cfg.IngestPolicy = flags.UseIngestPolicy
	}
	if flags.UseResultMode != "" {
		cfg.ResultMode = flags.UseResultMode
	}
	if flags.UsePageSize > 0 {
		cfg.PageSize = flags.UsePageSize
	}
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	CurrentConfig = *cfg
	return nil
}

func writeDefaultConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func GetCurrentConfig() *types.AppConfig {
	return &CurrentConfig
}
