package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.InputFile = "export.xml"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty input",
			mutate: func(cfg *Config) {
				cfg.InputFile = ""
			},
			wantErr: "input file",
		},
		{
			name: "empty output",
			mutate: func(cfg *Config) {
				cfg.OutputDir = " "
			},
			wantErr: "output directory",
		},
		{
			name: "negative image delay",
			mutate: func(cfg *Config) {
				cfg.ImageRequestDelay = -1 * time.Millisecond
			},
			wantErr: "image request delay",
		},
		{
			name: "zero image timeout",
			mutate: func(cfg *Config) {
				cfg.ImageTimeout = 0
			},
			wantErr: "image timeout",
		},
		{
			name: "unknown timezone",
			mutate: func(cfg *Config) {
				cfg.Timezone = "Mars/Olympus_Mons"
			},
			wantErr: "timezone",
		},
		{
			name: "empty field key",
			mutate: func(cfg *Config) {
				cfg.FrontmatterFields = []string{"title", ":alias"}
			},
			wantErr: "empty key",
		},
		{
			name: "old domain without new",
			mutate: func(cfg *Config) {
				cfg.OldDomain = "https://old.example.com"
			},
			wantErr: "set together",
		},
		{
			name: "domain without host",
			mutate: func(cfg *Config) {
				cfg.OldDomain = "http://"
				cfg.NewDomain = "https://new.example.com"
			},
			wantErr: "old domain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestParseFields(t *testing.T) {
	specs, err := ParseFields([]string{"title", "excerpt:description", " coverImage : heroImage "})
	if err != nil {
		t.Fatalf("parse fields: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("specs=%d, want 3", len(specs))
	}
	if specs[0].Name() != "title" {
		t.Fatalf("name=%q, want title", specs[0].Name())
	}
	if specs[1].Key != "excerpt" || specs[1].Name() != "description" {
		t.Fatalf("unexpected spec %+v", specs[1])
	}
	if specs[2].Key != "coverImage" || specs[2].Alias != "heroImage" {
		t.Fatalf("unexpected spec %+v", specs[2])
	}

	if _, err := ParseFields([]string{"title", "title"}); err == nil {
		t.Fatalf("duplicate field should fail")
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("WP2MDX_TEST_INT", "42")
	t.Setenv("WP2MDX_TEST_BOOL", "true")
	t.Setenv("WP2MDX_TEST_BAD", "forty")

	if v, ok, err := EnvInt("WP2MDX_TEST_INT"); err != nil || !ok || v != 42 {
		t.Fatalf("EnvInt = %d, %v, %v", v, ok, err)
	}
	if v, ok, err := EnvBool("WP2MDX_TEST_BOOL"); err != nil || !ok || !v {
		t.Fatalf("EnvBool = %v, %v, %v", v, ok, err)
	}
	if _, _, err := EnvInt("WP2MDX_TEST_BAD"); err == nil {
		t.Fatalf("expected parse error for non-numeric value")
	}
	if _, ok := EnvString("WP2MDX_TEST_UNSET"); ok {
		t.Fatalf("unset variable reported as present")
	}
	if d, ok, err := EnvMillis("WP2MDX_TEST_INT"); err != nil || !ok || d != 42*time.Millisecond {
		t.Fatalf("EnvMillis = %v, %v, %v", d, ok, err)
	}
}
