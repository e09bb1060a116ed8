package hospital

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSearchDoctorsToolNormalizesQuery(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/patient/search-doctor" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "success", "doctors": []}`))
	}))
	defer server.Close()

	tool := NewSearchDoctorsTool(NewClient(server.URL, 0), NewSynonymMatcher())
	result, err := tool.Execute(context.Background(), json.RawMessage(`{"query": "heart doctor", "ai_mode": true}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", result.Content)
	}

	if received["query"] != "Cardiologist" {
		t.Errorf("backend received query %v, want Cardiologist", received["query"])
	}
	if received["ai_mode"] != true {
		t.Errorf("backend received ai_mode %v, want true", received["ai_mode"])
	}
	if _, present := received["city"]; present {
		t.Error("empty city should be omitted from the payload")
	}
	if !strings.Contains(result.Content, "was interpreted as 'Cardiologist'") {
		t.Errorf("result missing normalization note:\n%s", result.Content)
	}
}

func TestAppointmentsByPhoneToolClampsLimit(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"appointments": []}`))
	}))
	defer server.Close()

	tool := NewAppointmentsByPhoneTool(NewClient(server.URL, 0))
	result, err := tool.Execute(context.Background(), json.RawMessage(`{"phone_number": "555", "page": 1, "limit": 999}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", result.Content)
	}

	if got := query["limit"]; len(got) != 1 || got[0] != "50" {
		t.Errorf("limit param = %v, want [50]", got)
	}
	if got := query["phone_number"]; len(got) != 1 || got[0] != "555" {
		t.Errorf("phone_number param = %v", got)
	}
}

func TestBookAppointmentToolClientIDFallback(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "booked"}`))
	}))
	defer server.Close()

	tool, err := NewBookAppointmentTool(NewClient(server.URL, 0), "default-client")
	if err != nil {
		t.Fatalf("NewBookAppointmentTool: %v", err)
	}

	params := `{
		"doctor_id": "doc-1",
		"patient_name": "Asha",
		"patient_phone_number": "555",
		"meeting_time": "2026-09-01T10:00:00Z",
		"appointment_type": "online",
		"status": "scheduled"
	}`
	result, err := tool.Execute(context.Background(), json.RawMessage(params))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", result.Content)
	}

	if received["client_id"] != "default-client" {
		t.Errorf("client_id = %v, want configured default", received["client_id"])
	}

	// An explicit client_id wins over the default.
	explicit := `{
		"doctor_id": "doc-1",
		"patient_name": "Asha",
		"patient_phone_number": "555",
		"meeting_time": "2026-09-01T10:00:00Z",
		"client_id": "explicit-client"
	}`
	if _, err := tool.Execute(context.Background(), json.RawMessage(explicit)); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if received["client_id"] != "explicit-client" {
		t.Errorf("client_id = %v, want explicit override", received["client_id"])
	}
}

func TestBookAppointmentToolRequiresDefaultClientID(t *testing.T) {
	if _, err := NewBookAppointmentTool(NewClient("http://localhost", 0), ""); err == nil {
		t.Fatal("expected error for empty default client ID")
	}
}

func TestDoctorAvailabilityToolPath(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"monday": ["10:00"]}`))
	}))
	defer server.Close()

	tool := NewDoctorAvailabilityTool(NewClient(server.URL, 0))
	result, err := tool.Execute(context.Background(), json.RawMessage(`{"doctor_id": "doc-7"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if path != "/doctor/availability/week/doc-7" {
		t.Errorf("path = %q", path)
	}
	if !strings.Contains(result.Content, "monday") {
		t.Errorf("result = %q", result.Content)
	}
}

func TestToolBackendErrorBecomesErrorResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal failure", http.StatusInternalServerError)
	}))
	defer server.Close()

	tool := NewDoctorAvailabilityTool(NewClient(server.URL, 0))
	result, err := tool.Execute(context.Background(), json.RawMessage(`{"doctor_id": "doc-7"}`))
	if err != nil {
		t.Fatalf("Execute returned Go error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error-flagged result for 500 response")
	}
	if !strings.Contains(result.Content, "500") {
		t.Errorf("result %q missing status code", result.Content)
	}
}

func TestToolEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tool := NewDoctorAvailabilityTool(NewClient(server.URL, 0))
	result, err := tool.Execute(context.Background(), json.RawMessage(`{"doctor_id": "doc-7"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Content != "No data returned." {
		t.Errorf("result = %q, want empty-body placeholder", result.Content)
	}
}

func TestNewToolsRegistrationSet(t *testing.T) {
	tools, err := NewTools(NewClient("http://localhost", 0), NewSynonymMatcher(), "client-1")
	if err != nil {
		t.Fatalf("NewTools: %v", err)
	}

	want := []string{"search_doctors", "doctor_weekly_availability", "appointments_by_phone", "book_appointment"}
	if len(tools) != len(want) {
		t.Fatalf("got %d tools, want %d", len(tools), len(want))
	}
	for i, tool := range tools {
		if tool.Name() != want[i] {
			t.Errorf("tools[%d] = %q, want %q", i, tool.Name(), want[i])
		}
	}

	if _, err := NewTools(NewClient("http://localhost", 0), NewSynonymMatcher(), ""); err == nil {
		t.Fatal("expected error when default client ID missing")
	}
}
