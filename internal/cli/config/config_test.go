package config

import (
	"os"
	"path/filepath"
	"testing"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := chdirTemp(t)

	cfg := &Config{ServerURL: "http://localhost:8080", Development: true}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err != nil {
		t.Fatalf("expected %s to exist: %v", ConfigFileName, err)
	}

	loaded, err := LoadFromCurrentDir()
	if err != nil {
		t.Fatalf("LoadFromCurrentDir: %v", err)
	}
	if loaded.ServerURL != cfg.ServerURL || loaded.Development != cfg.Development {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadFromCurrentDir_Missing(t *testing.T) {
	chdirTemp(t)

	if _, err := LoadFromCurrentDir(); err == nil {
		t.Fatal("expected an error without a config file")
	}
}

func TestLoadFromCurrentDir_Malformed(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile(ConfigFileName, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadFromCurrentDir(); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http", "http://localhost:8080", false},
		{"https", "https://api.example.com", false},
		{"empty", "", true},
		{"no scheme", "localhost:8080", true},
		{"wrong scheme", "ftp://example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{ServerURL: tt.url}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
