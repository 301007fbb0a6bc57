package main

import (
	"net/http/httptest"
	"testing"

	"github.com/wricardo/mcp-training/lobbyserver/config"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}

	expectedVersion := "1.0.0"
	if Version != expectedVersion {
		t.Errorf("Expected version %s, got %s", expectedVersion, Version)
	}

	expectedAppName := "Lobby Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestFlagDefaults(t *testing.T) {
	if *host != "" {
		t.Errorf("Expected empty default host flag, got %s", *host)
	}
	if *port != 0 {
		t.Errorf("Expected zero default port flag, got %d", *port)
	}
	if *debug {
		t.Error("Debug should default to false")
	}
	if *ngrokEnabled {
		t.Error("Ngrok should default to false")
	}
}

func TestBuildCore(t *testing.T) {
	c := buildCore()

	if c.registry == nil || c.sessions == nil || c.router == nil || c.handler == nil {
		t.Fatal("Expected all core components to be wired")
	}
	if c.sessions.Count() != 0 {
		t.Errorf("Expected fresh session store, got %d sessions", c.sessions.Count())
	}
}

func TestNewAPIServer(t *testing.T) {
	cfg := config.Config{StaticDir: t.TempDir()}
	server := newAPIServer(cfg, buildCore())

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Errorf("Expected healthy API server, got %d", rec.Code)
	}
}
