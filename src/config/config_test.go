package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	os.Setenv("DEEPL_API_KEY", "test_api_key")
	os.Setenv("ENABLE_FILE_LOGGING", "true")
	os.Setenv("CAPTURE_HOTKEY", "Ctrl+Shift+S")
	os.Setenv("SOURCE_LANG", "vi")
	os.Setenv("TARGET_LANG", "en")
	os.Setenv("OCR_LANGUAGE_PRIORITY", "vie, eng")
	os.Setenv("DEADLINE_SEC", "45")

	defer func() {
		os.Unsetenv("DEEPL_API_KEY")
		os.Unsetenv("ENABLE_FILE_LOGGING")
		os.Unsetenv("CAPTURE_HOTKEY")
		os.Unsetenv("SOURCE_LANG")
		os.Unsetenv("TARGET_LANG")
		os.Unsetenv("OCR_LANGUAGE_PRIORITY")
		os.Unsetenv("DEADLINE_SEC")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.DeepLAPIKey != "test_api_key" {
		t.Errorf("Expected DeepLAPIKey to be 'test_api_key', got '%s'", cfg.DeepLAPIKey)
	}
	if !cfg.EnableFileLogging {
		t.Errorf("Expected EnableFileLogging to be true, got %v", cfg.EnableFileLogging)
	}
	if cfg.CaptureHotkey != "Ctrl+Shift+S" {
		t.Errorf("Expected CaptureHotkey to be 'Ctrl+Shift+S', got '%s'", cfg.CaptureHotkey)
	}
	if cfg.ClipboardHotkey != DefaultClipboardHotkey {
		t.Errorf("Expected default ClipboardHotkey, got '%s'", cfg.ClipboardHotkey)
	}
	if cfg.SourceLang != "vi" || cfg.TargetLang != "en" {
		t.Errorf("Expected language pair vi/en, got %s/%s", cfg.SourceLang, cfg.TargetLang)
	}
	if len(cfg.LanguagePriority) != 2 || cfg.LanguagePriority[0] != "vie" {
		t.Errorf("Expected trimmed priority [vie eng], got %v", cfg.LanguagePriority)
	}
	if cfg.DeadlineSec != 45 {
		t.Errorf("Expected DeadlineSec 45, got %d", cfg.DeadlineSec)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.CaptureHotkey != DefaultCaptureHotkey {
		t.Errorf("Expected default capture hotkey, got '%s'", cfg.CaptureHotkey)
	}
	if cfg.SourceLang != "en" || cfg.TargetLang != "vi" {
		t.Errorf("Expected default pair en/vi, got %s/%s", cfg.SourceLang, cfg.TargetLang)
	}
	if cfg.DeadlineSec != 30 {
		t.Errorf("Expected default DeadlineSec 30, got %d", cfg.DeadlineSec)
	}
}
