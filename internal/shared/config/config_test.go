package config

import (
	"testing"
	"time"
)

func TestNormalizeEnv(t *testing.T) {
	cases := map[string]string{
		"prod":       "production",
		"PRODUCTION": "production",
		"staging":    "staging",
		"local":      "local",
		"":           "dev",
		"whatever":   "dev",
	}
	for in, want := range cases {
		if got := normalizeEnv(in); got != want {
			t.Fatalf("normalizeEnv(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeStoreType(t *testing.T) {
	cases := map[string]string{
		"s3":    "s3",
		"minio": "s3",
		"local": "local",
		"":      "local",
	}
	for in, want := range cases {
		if got := normalizeStoreType(in); got != want {
			t.Fatalf("normalizeStoreType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" a.example.com , ,b.example.com")
	if len(got) != 2 || got[0] != "a.example.com" || got[1] != "b.example.com" {
		t.Fatalf("splitAndTrim = %v", got)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ENV", "staging")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("OBJECT_STORE", "minio")

	cfg := Load()
	if cfg.Port != "9999" {
		t.Fatalf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.Env != "staging" {
		t.Fatalf("Env = %q, want staging", cfg.Env)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Fatalf("JWTTTL = %v, want 2h", cfg.JWTTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
	if cfg.ObjectStoreType != "s3" {
		t.Fatalf("ObjectStoreType = %q, want s3", cfg.ObjectStoreType)
	}
}
