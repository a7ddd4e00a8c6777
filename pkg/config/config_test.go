package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	valid bool
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	s.valid = true
	return nil
}

func TestParseExpandsEnvAndValidates(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "luach")
	s := sample{Port: 8080}
	if err := Parse([]byte("name: ${SAMPLE_NAME}\n"), &s); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Name != "luach" || s.Port != 8080 || !s.valid {
		t.Errorf("got %+v", s)
	}
}

func TestExpandEnvLeavesBareDollars(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "luach")
	t.Setenv("v", "oops")
	tests := []struct {
		in, want string
	}{
		{"${SAMPLE_NAME}", "luach"},
		{"${SAMPLE_UNSET_VAR}", ""},
		{"$SAMPLE_NAME", "$SAMPLE_NAME"},
		{"$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$a2V5", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$a2V5"},
		{"a-${SAMPLE_NAME}-$b", "a-luach-$b"},
	}
	for _, tt := range tests {
		if got := ExpandEnv(tt.in); got != tt.want {
			t.Errorf("ExpandEnv(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	var s sample
	err := Parse([]byte("port: 1\nhost: x\n"), &s)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("err = %v", err)
	}
}

func TestParseValidationError(t *testing.T) {
	var s sample
	err := Parse([]byte("port: 0\n"), &s)
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()

	s := sample{Port: 1}
	if err := LoadOptional(filepath.Join(dir, "nope.yaml"), &s); err != nil {
		t.Fatalf("missing optional file: %v", err)
	}
	if !s.valid {
		t.Error("defaults should still be validated")
	}

	path := filepath.Join(dir, "c.yaml")
	if err := os.WriteFile(path, []byte("port: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadOptional(path, &s); err != nil || s.Port != 7 {
		t.Errorf("LoadOptional = %v, port %d", err, s.Port)
	}
}
