package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeSource is a StatusSource backed by a fixed snapshot.
type fakeSource struct {
	status FleetStatus
}

func (f *fakeSource) Status() FleetStatus {
	return f.status
}

func runningFleet() *fakeSource {
	started := time.Now().Add(-time.Minute)
	return &fakeSource{
		status: FleetStatus{
			RunID:     "test-run",
			StartedAt: started,
			Uptime:    "1m0s",
			Processes: []ProcessStatus{
				{Name: "api", Index: 0, Kind: KindServer, State: StateRunning, StartedAt: &started},
				{Name: "web", Index: 1, Kind: KindProcess, State: StateRunning, PID: 4242, StartedAt: &started},
				{Name: "worker", Index: 2, Kind: KindProcess, State: StateRunning, PID: 4243, StartedAt: &started},
			},
		},
	}
}

func TestLiveness_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(nil)
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.Liveness(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", resp.Status)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected Data to be a map, got %T", resp.Data)
	}

	if data["service"] != "flotilla" {
		t.Errorf("Expected service 'flotilla', got '%s'", data["service"])
	}
}

func TestReadiness_NoSource_Returns503(t *testing.T) {
	handler := NewHealthHandler(nil)
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Status != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got '%s'", resp.Status)
	}

	if resp.Error != "supervisor not initialized" {
		t.Errorf("Expected error 'supervisor not initialized', got '%s'", resp.Error)
	}
}

func TestReadiness_AllRunning_ReturnsOK(t *testing.T) {
	handler := NewHealthHandler(runningFleet())
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", resp.Status)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected Data to be a map, got %T", resp.Data)
	}

	if data["components"].(float64) != 3 {
		t.Errorf("Expected 3 components, got %v", data["components"])
	}
	if data["running"].(float64) != 3 {
		t.Errorf("Expected 3 running, got %v", data["running"])
	}
	if data["run_id"] != "test-run" {
		t.Errorf("Expected run_id 'test-run', got '%v'", data["run_id"])
	}
}

func TestReadiness_FailedComponent_Returns503(t *testing.T) {
	source := runningFleet()
	source.status.Processes[2].State = StateFailed
	source.status.Processes[2].Error = "exit status 1"

	handler := NewHealthHandler(source)
	req := httptest.NewRequest("GET", "/health/ready", nil)
	w := httptest.NewRecorder()

	handler.Readiness(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Status != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got '%s'", resp.Status)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected Data to be a map, got %T", resp.Data)
	}

	if data["failed"].(float64) != 1 {
		t.Errorf("Expected 1 failed component, got %v", data["failed"])
	}
}
