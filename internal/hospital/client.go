// Package hospital wraps the hospital backend REST API and exposes its
// endpoints as agent tools: doctor search with specialty normalization,
// weekly availability, appointment lookup by phone, and booking.
package hospital

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds each request to the hospital backend.
const DefaultTimeout = 10 * time.Second

// Client is a thin wrapper around the hospital backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the backend at baseURL. A zero timeout uses
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// request issues one API call and decodes the JSON response. The decoded
// value is returned as-is so callers can tolerate the backend's varying
// envelope shapes. An empty body decodes to nil.
func (c *Client) request(ctx context.Context, method, path string, params url.Values, body any) (any, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("hospital: encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("hospital: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hospital: request failed for %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("hospital: read response from %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("hospital: API error %d for %s: %s", resp.StatusCode, endpoint, strings.TrimSpace(string(raw)))
	}

	if len(raw) == 0 {
		return nil, nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("hospital: decode response from %s: %w", endpoint, err)
	}
	return decoded, nil
}

// SearchDoctors queries doctors by name or specialty, optionally filtered by
// city.
func (c *Client) SearchDoctors(ctx context.Context, query, city string, aiMode bool) (any, error) {
	payload := map[string]any{
		"query":   query,
		"ai_mode": aiMode,
	}
	if city != "" {
		payload["city"] = city
	}
	return c.request(ctx, http.MethodPost, "/patient/search-doctor", nil, payload)
}

// DoctorAvailabilityWeek fetches a doctor's weekly availability calendar.
func (c *Client) DoctorAvailabilityWeek(ctx context.Context, doctorID string) (any, error) {
	return c.request(ctx, http.MethodGet, "/doctor/availability/week/"+url.PathEscape(doctorID), nil, nil)
}

// AppointmentsByPhone lists appointments for a patient's phone number. The
// limit is clamped to [1, 50] before the request goes out.
func (c *Client) AppointmentsByPhone(ctx context.Context, phoneNumber string, page, limit int) (any, error) {
	safeLimit := max(1, min(limit, 50))
	params := url.Values{
		"phone_number": []string{phoneNumber},
		"page":         []string{strconv.Itoa(page)},
		"limit":        []string{strconv.Itoa(safeLimit)},
	}
	return c.request(ctx, http.MethodGet, "/patient/appointments-by-phone", params, nil)
}

// BookAppointment creates an appointment from the given payload.
func (c *Client) BookAppointment(ctx context.Context, payload map[string]any) (any, error) {
	return c.request(ctx, http.MethodPost, "/patient/book-appointment", nil, payload)
}
