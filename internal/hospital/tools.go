package hospital

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/haasonsaas/medassist/internal/agent"
)

// SearchDoctorsTool searches doctors by name or specialty. Queries pass
// through the specialty matcher before reaching the backend.
type SearchDoctorsTool struct {
	client  *Client
	matcher Matcher
}

// NewSearchDoctorsTool wires the search endpoint to the given matcher.
func NewSearchDoctorsTool(client *Client, matcher Matcher) *SearchDoctorsTool {
	return &SearchDoctorsTool{client: client, matcher: matcher}
}

func (t *SearchDoctorsTool) Name() string {
	return "search_doctors"
}

func (t *SearchDoctorsTool) Description() string {
	return "Search for doctors or specialists by name or specialty, optionally filtering by city."
}

func (t *SearchDoctorsTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Doctor name or specialty to search for."
			},
			"city": {
				"type": "string",
				"description": "City to filter the doctor search results."
			},
			"ai_mode": {
				"type": "boolean",
				"description": "Whether to enable AI mode on the backend search endpoint.",
				"default": true
			}
		},
		"required": ["query"]
	}`)
}

func (t *SearchDoctorsTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		Query  string `json:"query"`
		City   string `json:"city"`
		AIMode bool   `json:"ai_mode"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return nil, fmt.Errorf("parse parameters: %w", err)
	}

	normalized := t.matcher.Normalize(input.Query)
	response, err := t.client.SearchDoctors(ctx, normalized, input.City, input.AIMode)
	if err != nil {
		return &agent.ToolResult{Content: err.Error(), IsError: true}, nil
	}

	return &agent.ToolResult{
		Content: formatDoctorSearch(response, normalized, input.Query, input.City),
	}, nil
}

// DoctorAvailabilityTool fetches a doctor's weekly availability calendar.
type DoctorAvailabilityTool struct {
	client *Client
}

func NewDoctorAvailabilityTool(client *Client) *DoctorAvailabilityTool {
	return &DoctorAvailabilityTool{client: client}
}

func (t *DoctorAvailabilityTool) Name() string {
	return "doctor_weekly_availability"
}

func (t *DoctorAvailabilityTool) Description() string {
	return "Retrieve a doctor's weekly availability slots using their UUID."
}

func (t *DoctorAvailabilityTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"doctor_id": {
				"type": "string",
				"description": "Doctor UUID to fetch weekly availability."
			}
		},
		"required": ["doctor_id"]
	}`)
}

func (t *DoctorAvailabilityTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		DoctorID string `json:"doctor_id"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return nil, fmt.Errorf("parse parameters: %w", err)
	}

	response, err := t.client.DoctorAvailabilityWeek(ctx, input.DoctorID)
	if err != nil {
		return &agent.ToolResult{Content: err.Error(), IsError: true}, nil
	}
	return &agent.ToolResult{Content: formatJSON(response)}, nil
}

// AppointmentsByPhoneTool lists a patient's appointments by phone number.
type AppointmentsByPhoneTool struct {
	client *Client
}

func NewAppointmentsByPhoneTool(client *Client) *AppointmentsByPhoneTool {
	return &AppointmentsByPhoneTool{client: client}
}

func (t *AppointmentsByPhoneTool) Name() string {
	return "appointments_by_phone"
}

func (t *AppointmentsByPhoneTool) Description() string {
	return "List appointments for a patient identified by phone number. Supports pagination."
}

func (t *AppointmentsByPhoneTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"phone_number": {
				"type": "string",
				"description": "Patient's phone number."
			},
			"page": {
				"type": "integer",
				"description": "Results page to fetch.",
				"minimum": 1,
				"default": 1
			},
			"limit": {
				"type": "integer",
				"description": "Maximum appointments to return per page (max 50).",
				"minimum": 1,
				"maximum": 50,
				"default": 10
			}
		},
		"required": ["phone_number"]
	}`)
}

func (t *AppointmentsByPhoneTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		PhoneNumber string `json:"phone_number"`
		Page        int    `json:"page"`
		Limit       int    `json:"limit"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return nil, fmt.Errorf("parse parameters: %w", err)
	}

	response, err := t.client.AppointmentsByPhone(ctx, input.PhoneNumber, input.Page, input.Limit)
	if err != nil {
		return &agent.ToolResult{Content: err.Error(), IsError: true}, nil
	}
	return &agent.ToolResult{
		Content: formatAppointments(response, input.PhoneNumber, input.Page, input.Limit),
	}, nil
}

// BookAppointmentTool creates an appointment. A configured default client
// identifier is required so bookings work when the model omits one.
type BookAppointmentTool struct {
	client   *Client
	clientID string
}

// NewBookAppointmentTool returns an error when defaultClientID is empty;
// a deployment without one cannot complete bookings and should fail at
// startup rather than at the first booking attempt.
func NewBookAppointmentTool(client *Client, defaultClientID string) (*BookAppointmentTool, error) {
	if defaultClientID == "" {
		return nil, errors.New("hospital: default client ID is required for booking")
	}
	return &BookAppointmentTool{client: client, clientID: defaultClientID}, nil
}

func (t *BookAppointmentTool) Name() string {
	return "book_appointment"
}

func (t *BookAppointmentTool) Description() string {
	return "Schedule a new appointment for a patient with a doctor. Requires doctor ID, patient details, " +
		"meeting time, and uses the configured hospital client identifier when not provided."
}

func (t *BookAppointmentTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"doctor_id": {
				"type": "string",
				"description": "Doctor UUID to book an appointment with."
			},
			"patient_name": {
				"type": "string",
				"description": "Patient full name."
			},
			"patient_phone_number": {
				"type": "string",
				"description": "Patient's contact number."
			},
			"meeting_time": {
				"type": "string",
				"description": "ISO timestamp for the appointment, e.g. 2025-10-09T11:20:03.544Z."
			},
			"appointment_type": {
				"type": "string",
				"description": "Type of appointment, e.g. online or in_person.",
				"default": "online"
			},
			"status": {
				"type": "string",
				"description": "Initial appointment status, e.g. scheduled.",
				"default": "scheduled"
			},
			"client_id": {
				"type": "string",
				"description": "Client identifier. Falls back to the configured default when omitted."
			}
		},
		"required": ["doctor_id", "patient_name", "patient_phone_number", "meeting_time"]
	}`)
}

func (t *BookAppointmentTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		DoctorID           string `json:"doctor_id"`
		PatientName        string `json:"patient_name"`
		PatientPhoneNumber string `json:"patient_phone_number"`
		MeetingTime        string `json:"meeting_time"`
		AppointmentType    string `json:"appointment_type"`
		Status             string `json:"status"`
		ClientID           string `json:"client_id"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return nil, fmt.Errorf("parse parameters: %w", err)
	}

	clientID := input.ClientID
	if clientID == "" {
		clientID = t.clientID
	}

	payload := map[string]any{
		"doctor_id":            input.DoctorID,
		"patient_name":         input.PatientName,
		"patient_phone_number": input.PatientPhoneNumber,
		"client_id":            clientID,
		"meeting_time":         input.MeetingTime,
		"appointment_type":     input.AppointmentType,
		"status":               input.Status,
	}

	response, err := t.client.BookAppointment(ctx, payload)
	if err != nil {
		return &agent.ToolResult{Content: err.Error(), IsError: true}, nil
	}
	return &agent.ToolResult{Content: formatJSON(response)}, nil
}

// NewTools builds the full hospital tool set in registration order.
func NewTools(client *Client, matcher Matcher, defaultClientID string) ([]agent.Tool, error) {
	book, err := NewBookAppointmentTool(client, defaultClientID)
	if err != nil {
		return nil, err
	}
	return []agent.Tool{
		NewSearchDoctorsTool(client, matcher),
		NewDoctorAvailabilityTool(client),
		NewAppointmentsByPhoneTool(client),
		book,
	}, nil
}
