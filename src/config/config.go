package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIKeyPath = "/run/secrets/api_keys/deepl"
	APIKeyPathEnvVar  = "DEEPL_API_KEY_FILE"

	DefaultCaptureHotkey   = "Ctrl+Alt+S"
	DefaultClipboardHotkey = "Ctrl+Alt+T"
)

type LoadOptions struct {
	APIKeyPathOverride string
}

type Config struct {
	DeepLAPIKey       string
	DeepLAPIKeyPath   string
	EnableFileLogging bool

	// CaptureHotkey starts a screen-region capture session; ClipboardHotkey
	// translates the current clipboard contents instead.
	CaptureHotkey   string
	ClipboardHotkey string

	SourceLang        string
	TargetLang        string
	PreferredProvider string

	// LanguagePriority reorders the OCR language pack list, comma separated.
	LanguagePriority []string

	LibreTranslateURL string

	DeadlineSec int
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Configuration sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SNAPTRANSLATE_ENV env var as a path to a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	var priority []string
	if raw := os.Getenv("OCR_LANGUAGE_PRIORITY"); raw != "" {
		for _, lang := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(lang); trimmed != "" {
				priority = append(priority, trimmed)
			}
		}
	}

	deadlineSec := 30
	if v := os.Getenv("DEADLINE_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			deadlineSec = n
		}
	}

	apiKeyPath := resolveAPIKeyPath(opts, dotenvValues)

	cfg := &Config{
		DeepLAPIKey:       resolveAPIKey(apiKeyPath),
		DeepLAPIKeyPath:   apiKeyPath,
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		CaptureHotkey:     getEnvWithDefault("CAPTURE_HOTKEY", DefaultCaptureHotkey),
		ClipboardHotkey:   getEnvWithDefault("CLIPBOARD_HOTKEY", DefaultClipboardHotkey),
		SourceLang:        getEnvWithDefault("SOURCE_LANG", "en"),
		TargetLang:        getEnvWithDefault("TARGET_LANG", "vi"),
		PreferredProvider: os.Getenv("PREFERRED_PROVIDER"),
		LanguagePriority:  priority,
		LibreTranslateURL: os.Getenv("LIBRETRANSLATE_URL"),
		DeadlineSec:       deadlineSec,
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv("SNAPTRANSLATE_ENV"); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveAPIKeyPath(opts LoadOptions, dotenvValues map[string]string) string {
	keyPath := DefaultAPIKeyPath

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.APIKeyPathOverride); overridePath != "" {
		keyPath = overridePath
	}

	return keyPath
}

func resolveAPIKey(keyPath string) string {
	if data, err := os.ReadFile(keyPath); err == nil {
		if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
			return fileKey
		}
	}

	return os.Getenv("DEEPL_API_KEY")
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
