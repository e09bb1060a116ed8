package hospital

import (
	"encoding/json"
	"fmt"
	"strings"
)

// maxListedEntries bounds how many doctors or appointments a formatted
// result lists before summarizing the remainder.
const maxListedEntries = 5

// formatJSON pretty-prints an API payload for the model to read.
func formatJSON(payload any) string {
	if isEmptyPayload(payload) {
		return "No data returned."
	}
	pretty, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	return string(pretty)
}

func isEmptyPayload(payload any) bool {
	switch v := payload.(type) {
	case nil:
		return true
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// formatDoctorSearch renders the search response as a compact listing the
// model can relay verbatim. When normalization rewrote the query, the
// rewrite is noted so the model can explain it to the patient.
func formatDoctorSearch(response any, normalizedQuery, originalQuery, city string) string {
	envelope, _ := response.(map[string]any)
	status, _ := envelope["status"].(string)
	message, _ := envelope["message"].(string)
	doctors := asList(envelope["doctors"])
	suggestions := asList(envelope["suggestions"])

	var lines []string
	switch {
	case status != "success":
		summary := message
		if summary == "" {
			summary = "Doctor search failed."
		}
		lines = append(lines, fmt.Sprintf("Doctor search failed: %s", summary))
	case len(doctors) > 0:
		cityLabel := city
		if cityLabel == "" {
			cityLabel = "available locations"
		}
		lines = append(lines, fmt.Sprintf("Found %d doctor(s) for %s in %s.", len(doctors), normalizedQuery, cityLabel))
		for _, entry := range doctors[:min(len(doctors), maxListedEntries)] {
			doctor, _ := entry.(map[string]any)
			lines = append(lines, formatDoctorLine(doctor, normalizedQuery, cityLabel))
		}
		if extra := len(doctors) - maxListedEntries; extra > 0 {
			lines = append(lines, fmt.Sprintf("There are %d more doctor(s) available. Ask if you would like the full list.", extra))
		}
		if len(suggestions) > 0 {
			lines = append(lines, "General care tips:")
			for _, tip := range suggestions[:min(len(suggestions), 3)] {
				lines = append(lines, fmt.Sprintf("* %v", tip))
			}
		}
	default:
		cityLabel := city
		if cityLabel == "" {
			cityLabel = "the requested area"
		}
		fallback := message
		if fallback == "" {
			fallback = "No matching doctors returned by the search API."
		}
		lines = append(lines, fmt.Sprintf("No doctors found for %s in %s.", normalizedQuery, cityLabel))
		lines = append(lines, fmt.Sprintf("API message: %s", fallback))
	}

	if !strings.EqualFold(normalizedQuery, originalQuery) {
		lines = append(lines, fmt.Sprintf("(Original query '%s' was interpreted as '%s'.)", originalQuery, normalizedQuery))
	}

	return strings.Join(lines, "\n")
}

func formatDoctorLine(doctor map[string]any, normalizedQuery, cityLabel string) string {
	name := stringField(doctor, "full_name", "Unknown doctor")
	specialization := stringField(doctor, "specialization", normalizedQuery)
	hospitalName := stringField(doctor, "hospital_name", "Unknown hospital")
	location := stringField(doctor, "hospital_address", "")
	if location == "" {
		location = stringField(doctor, "location", cityLabel)
	}
	phone := stringField(doctor, "phone", "Phone not listed")
	doctorID := stringField(doctor, "doctor_id", "ID unavailable")

	feeText := "Fee not listed"
	if fee, ok := doctor["consultation_fee"].(float64); ok {
		feeText = fmt.Sprintf("Fee: INR %.0f", fee)
	}

	return fmt.Sprintf("- %s (%s) at %s, %s. Phone: %s. Doctor ID: %s. %s.",
		name, specialization, hospitalName, location, phone, doctorID, feeText)
}

// formatAppointments renders the appointment listing. The backend wraps the
// list in inconsistent envelopes, so several shapes are tolerated.
func formatAppointments(response any, phoneNumber string, page, limit int) string {
	appointments, apiMessage := extractAppointments(response)

	var lines []string
	if len(appointments) == 0 {
		fallback := apiMessage
		if fallback == "" {
			fallback = "No appointments returned by the API."
		}
		lines = append(lines, fmt.Sprintf("No appointments found for phone number %s (page %d, limit %d).", phoneNumber, page, limit))
		lines = append(lines, fmt.Sprintf("API message: %s", fallback))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("Found %d appointment(s) linked to %s (page %d, limit %d).", len(appointments), phoneNumber, page, limit))
	for _, entry := range appointments[:min(len(appointments), maxListedEntries)] {
		appointment, _ := entry.(map[string]any)
		lines = append(lines, formatAppointmentLine(appointment))
	}
	if extra := len(appointments) - maxListedEntries; extra > 0 {
		lines = append(lines, fmt.Sprintf("There are %d additional appointment(s). Request a higher limit or another page to see more.", extra))
	}
	if apiMessage != "" {
		lines = append(lines, fmt.Sprintf("API message: %s", apiMessage))
	}

	return strings.Join(lines, "\n")
}

// extractAppointments finds the appointment list inside the response, which
// may be a bare array or nested under one of several envelope keys.
func extractAppointments(response any) ([]any, string) {
	if list, ok := response.([]any); ok {
		return list, ""
	}

	envelope, ok := response.(map[string]any)
	if !ok {
		return nil, ""
	}
	apiMessage, _ := envelope["message"].(string)

	for _, key := range []string{"appointments", "data", "results", "items"} {
		switch value := envelope[key].(type) {
		case []any:
			return value, apiMessage
		case map[string]any:
			if nested, ok := value["appointments"].([]any); ok {
				return nested, apiMessage
			}
		}
	}
	return nil, apiMessage
}

func formatAppointmentLine(appointment map[string]any) string {
	appointmentID := firstString(appointment, "Unknown appointment ID", "appointment_id", "id")
	doctor, _ := appointment["doctor"].(map[string]any)

	doctorName := stringField(appointment, "doctor_name", "")
	if doctorName == "" {
		doctorName = firstString(doctor, "Unknown doctor", "full_name", "name")
	}
	doctorID := stringField(appointment, "doctor_id", "")
	if doctorID == "" {
		doctorID = firstString(doctor, "Unknown doctor ID", "doctor_id", "id")
	}
	meetingTime := firstString(appointment, "Unknown time", "meeting_time", "appointment_time", "scheduled_time")
	status := stringField(appointment, "status", "status unavailable")
	appointmentType := firstString(appointment, "", "appointment_type", "type")
	location := firstString(appointment, "", "location", "city")
	if location == "" {
		location = firstString(doctor, "", "hospital_name", "location")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- Appointment %s", appointmentID)
	if doctorName != "Unknown doctor" {
		fmt.Fprintf(&b, " with %s", doctorName)
		if doctorID != "Unknown doctor ID" {
			fmt.Fprintf(&b, " (Doctor ID: %s)", doctorID)
		}
	}
	fmt.Fprintf(&b, " on %s.", meetingTime)
	fmt.Fprintf(&b, " Status: %s.", status)
	if appointmentType != "" {
		fmt.Fprintf(&b, " Type: %s.", appointmentType)
	}
	if location != "" {
		fmt.Fprintf(&b, " Location: %s.", location)
	}
	return b.String()
}

func asList(value any) []any {
	list, _ := value.([]any)
	return list
}

// stringField reads a string-ish field, falling back when absent or empty.
// Non-string scalars (numeric IDs) are rendered with %v.
func stringField(m map[string]any, key, fallback string) string {
	value, ok := m[key]
	if !ok || value == nil {
		return fallback
	}
	if s, ok := value.(string); ok {
		if s == "" {
			return fallback
		}
		return s
	}
	return fmt.Sprintf("%v", value)
}

func firstString(m map[string]any, fallback string, keys ...string) string {
	for _, key := range keys {
		if s := stringField(m, key, ""); s != "" {
			return s
		}
	}
	return fallback
}
