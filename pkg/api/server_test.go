package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/marmos91/flotilla/pkg/api/handlers"
)

// fakeSource is a StatusSource backed by a fixed snapshot.
type fakeSource struct {
	status handlers.FleetStatus
}

func (f *fakeSource) Status() handlers.FleetStatus {
	return f.status
}

// testConfig creates an APIConfig for testing.
func testConfig(port int) APIConfig {
	enabled := true
	return APIConfig{
		Enabled:      &enabled,
		Port:         port,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
	}
}

func TestAPIServer_Lifecycle(t *testing.T) {
	cfg := testConfig(18090)
	server := NewServer(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())

	// Start server in background
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	// Make request to health endpoint
	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/health", cfg.Port))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	// Verify response content type
	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", contentType)
	}

	// Shutdown
	cancel()

	// Wait for server to stop
	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("Expected nil on graceful shutdown, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not shutdown in time")
	}
}

func TestAPIServer_Port(t *testing.T) {
	server := NewServer(testConfig(9999), nil)

	if server.Port() != 9999 {
		t.Errorf("Expected port 9999, got %d", server.Port())
	}
}

func TestAPIServer_DefaultConfig(t *testing.T) {
	// Port and timeouts not set - should use defaults
	server := NewServer(APIConfig{}, nil)

	// After applyDefaults, port should be 8080
	if server.Port() != 8080 {
		t.Errorf("Expected default port 8080, got %d", server.Port())
	}
}

func TestAPIServer_HealthEndpoint_NoSource(t *testing.T) {
	cfg := testConfig(18091)
	server := NewServer(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start server in background
	go func() {
		_ = server.Start(ctx)
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	// Test liveness endpoint (should always be OK)
	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/health", cfg.Port))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	// Test readiness endpoint (should be 503 with no source)
	resp2, err := http.Get(fmt.Sprintf("http://localhost:%d/health/ready", cfg.Port))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp2.Body.Close() }()

	if resp2.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, resp2.StatusCode)
	}
}

func TestAPIServer_RootRedirectsToHealth(t *testing.T) {
	cfg := testConfig(18092)
	server := NewServer(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start server in background
	go func() {
		_ = server.Start(ctx)
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	// Create a client that doesn't follow redirects
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(fmt.Sprintf("http://localhost:%d/", cfg.Port))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusTemporaryRedirect {
		t.Errorf("Expected status %d, got %d", http.StatusTemporaryRedirect, resp.StatusCode)
	}

	location := resp.Header.Get("Location")
	if location != "/health" {
		t.Errorf("Expected redirect to '/health', got '%s'", location)
	}
}

func TestAPIServer_ProcessesEndpoint(t *testing.T) {
	started := time.Now()
	source := &fakeSource{
		status: handlers.FleetStatus{
			RunID:     "test-run",
			StartedAt: started,
			Uptime:    "5s",
			Processes: []handlers.ProcessStatus{
				{Name: "web", Index: 0, Kind: handlers.KindProcess, State: handlers.StateRunning, PID: 101, StartedAt: &started},
				{Name: "worker", Index: 1, Kind: handlers.KindProcess, State: handlers.StateRunning, PID: 102, StartedAt: &started},
			},
		},
	}

	cfg := testConfig(18093)
	server := NewServer(cfg, source)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start server in background
	go func() {
		_ = server.Start(ctx)
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	// List endpoint returns the components in start order
	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/api/v1/processes", cfg.Port))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var processes []handlers.ProcessStatus
	if err := json.NewDecoder(resp.Body).Decode(&processes); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(processes) != 2 {
		t.Fatalf("Expected 2 processes, got %d", len(processes))
	}
	if processes[0].Name != "web" || processes[1].Name != "worker" {
		t.Errorf("Expected [web worker], got [%s %s]", processes[0].Name, processes[1].Name)
	}

	// Unknown process name returns 404
	resp2, err := http.Get(fmt.Sprintf("http://localhost:%d/api/v1/processes/missing", cfg.Port))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer func() { _ = resp2.Body.Close() }()

	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, resp2.StatusCode)
	}
}
