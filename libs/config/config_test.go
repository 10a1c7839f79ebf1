package config

import (
	"testing"
	"time"
)

func TestStringFallback(t *testing.T) {
	t.Setenv("PORTAL_TEST_VALUE", "  ")
	if got := String("PORTAL_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("PORTAL_TEST_VALUE", "set")
	if got := String("PORTAL_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestRequiredString(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	if _, err := RequiredString("BACKEND_URL"); err == nil {
		t.Fatal("expected error for missing BACKEND_URL")
	}
	t.Setenv("BACKEND_URL", "http://localhost:4000")
	v, err := RequiredString("BACKEND_URL")
	if err != nil || v != "http://localhost:4000" {
		t.Fatalf("unexpected result %q, %v", v, err)
	}
}

func TestPort(t *testing.T) {
	t.Setenv("PORT", "70000")
	if _, err := Port("PORT", "8080"); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
	t.Setenv("PORT", "")
	p, err := Port("PORT", "8080")
	if err != nil || p != "8080" {
		t.Fatalf("expected default port, got %q, %v", p, err)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"", 5 * time.Second},
		{"45m", 45 * time.Minute},
		{"30", 30 * time.Second},
		{"-3s", 5 * time.Second},
		{"soon", 5 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("BACKEND_TIMEOUT", tt.raw)
			if got := Duration("BACKEND_TIMEOUT", 5*time.Second); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("SESSION_COOKIE_SECURE", "yes")
	if !Bool("SESSION_COOKIE_SECURE", false) {
		t.Fatal("expected true")
	}
	t.Setenv("SESSION_COOKIE_SECURE", "maybe")
	if Bool("SESSION_COOKIE_SECURE", false) {
		t.Fatal("expected fallback false for unknown value")
	}
	t.Setenv("REDIS_DB", "3")
	if got := Int("REDIS_DB", 0); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	t.Setenv("REDIS_DB", "x")
	if got := Int("REDIS_DB", 0); got != 0 {
		t.Fatalf("expected fallback 0, got %d", got)
	}
}
