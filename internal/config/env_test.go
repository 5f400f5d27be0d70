package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 5 * time.Second},
		{"250ms", 250 * time.Millisecond},
		{"3", 3 * time.Second},
		{"garbage", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_DELAY", tt.value)
			if got := GetEnvDuration("TEST_DELAY", 5*time.Second); got != tt.want {
				t.Errorf("GetEnvDuration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASS", "DB_CONNECT_RETRIES", "ETL_DATA_DIR"} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())

	s, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.DBHost != "db" || s.DBPort != "5432" || s.DBName != "postgres" || s.DBUser != "postgres" {
		t.Errorf("unexpected db defaults: %+v", s)
	}
	if s.ConnectRetries != 5 || s.ConnectDelay != 5*time.Second {
		t.Errorf("unexpected retry defaults: %d %v", s.ConnectRetries, s.ConnectDelay)
	}
	if got := s.DataFile("CENSO.csv"); got != filepath.Join("/app/data/data", "CENSO.csv") {
		t.Errorf("DataFile() = %q", got)
	}
	if got := s.DataFile("/tmp/x.csv"); got != "/tmp/x.csv" {
		t.Errorf("DataFile(abs) = %q", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_FLAG", "yes")
	if !GetEnvBool("TEST_FLAG", false) {
		t.Error("expected yes to parse as true")
	}
	t.Setenv("TEST_FLAG", "maybe")
	if GetEnvBool("TEST_FLAG", false) {
		t.Error("expected unknown value to fall back to default")
	}
}
