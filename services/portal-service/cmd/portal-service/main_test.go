package main

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestRunRequiresBackendURL(t *testing.T) {
	t.Setenv("PORT", "8090")
	t.Setenv("BACKEND_URL", "")
	err := run(slog.New(slog.NewTextHandler(io.Discard, nil)), "portal-service")
	if err == nil || !strings.Contains(err.Error(), "BACKEND_URL") {
		t.Fatalf("expected BACKEND_URL error, got %v", err)
	}
}

func TestRunRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("BACKEND_URL", "http://localhost:4000")
	err := run(slog.New(slog.NewTextHandler(io.Discard, nil)), "portal-service")
	if err == nil || !strings.Contains(err.Error(), "PORT") {
		t.Fatalf("expected PORT error, got %v", err)
	}
}
