package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LLM.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Errorf("Temperature = %v", cfg.LLM.Temperature)
	}
	if cfg.Hospital.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v", cfg.Hospital.Timeout)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		t.Error("AllowedOrigins empty")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/medassist.yaml")
	if err != nil {
		t.Fatalf("Load with missing file: %v", err)
	}
	if cfg.LLM.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medassist.yaml")
	content := `
server:
  host: 127.0.0.1
  port: 9090
llm:
  model: gemini-test
  temperature: 0.7
hospital:
  base_url: http://hospital.test/api
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.LLM.Model != "gemini-test" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("Temperature = %v", cfg.LLM.Temperature)
	}
	if cfg.Hospital.BaseURL != "http://hospital.test/api" {
		t.Errorf("BaseURL = %q", cfg.Hospital.BaseURL)
	}
}

func TestLoadExpandsEnvReferences(t *testing.T) {
	t.Setenv("TEST_HOSPITAL_URL", "http://from-env.test/api")

	path := filepath.Join(t.TempDir(), "medassist.yaml")
	content := "hospital:\n  base_url: ${TEST_HOSPITAL_URL}\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Hospital.BaseURL != "http://from-env.test/api" {
		t.Errorf("BaseURL = %q", cfg.Hospital.BaseURL)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "env-key")
	t.Setenv("GEMINI_MODEL", "gemini-env")
	t.Setenv("LLM_TEMPERATURE", "0.5")
	t.Setenv("HOSPITAL_CLIENT_ID", "env-client")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "2.5")
	t.Setenv("MEDASSIST_PORT", "7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LLM.GoogleAPIKey != "env-key" {
		t.Errorf("GoogleAPIKey = %q", cfg.LLM.GoogleAPIKey)
	}
	if cfg.LLM.Model != "gemini-env" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.5 {
		t.Errorf("Temperature = %v", cfg.LLM.Temperature)
	}
	if cfg.Hospital.ClientID != "env-client" {
		t.Errorf("ClientID = %q", cfg.Hospital.ClientID)
	}
	if cfg.Hospital.Timeout != 2500*time.Millisecond {
		t.Errorf("Timeout = %v", cfg.Hospital.Timeout)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
}

func TestRequireGoogleAPIKey(t *testing.T) {
	cfg := Default()
	cfg.LLM.GoogleAPIKey = ""

	if _, err := cfg.RequireGoogleAPIKey(); !errors.Is(err, ErrMissingGoogleAPIKey) {
		t.Errorf("err = %v, want ErrMissingGoogleAPIKey", err)
	}

	cfg.LLM.GoogleAPIKey = "key"
	key, err := cfg.RequireGoogleAPIKey()
	if err != nil || key != "key" {
		t.Errorf("got (%q, %v)", key, err)
	}
}

func TestRequireHospitalClientID(t *testing.T) {
	cfg := Default()
	cfg.Hospital.ClientID = ""

	if _, err := cfg.RequireHospitalClientID(); !errors.Is(err, ErrMissingHospitalClient) {
		t.Errorf("err = %v, want ErrMissingHospitalClient", err)
	}

	cfg.Hospital.ClientID = "client"
	id, err := cfg.RequireHospitalClientID()
	if err != nil || id != "client" {
		t.Errorf("got (%q, %v)", id, err)
	}
}
