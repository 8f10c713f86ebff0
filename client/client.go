// Package client is a typed Go client for the inspection API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/roadcheck/inspection-api/checklist"
	"github.com/roadcheck/inspection-api/models"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inspection api: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsCode reports whether err is an *APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// NewInspection is the body of an inspection submission.
type NewInspection struct {
	UserID                string          `json:"user_id"`
	UserEmail             string          `json:"user_email,omitempty"`
	Location              string          `json:"location"`
	Date                  string          `json:"date"`
	Time                  string          `json:"time"`
	Vehicle               string          `json:"vehicle"`
	SpeedometerReading    string          `json:"speedometer_reading,omitempty"`
	DefectiveItems        map[string]bool `json:"defective_items,omitempty"`
	TruckTrailerItems     map[string]bool `json:"truck_trailer_items,omitempty"`
	TrailerNumber         string          `json:"trailer_number,omitempty"`
	Remarks               string          `json:"remarks,omitempty"`
	ConditionSatisfactory bool            `json:"condition_satisfactory"`
	DriverSignature       string          `json:"driver_signature,omitempty"`
	DefectsCorrected      bool            `json:"defects_corrected"`
	DefectsNeedCorrection bool            `json:"defects_need_correction"`
}

// TokenSource returns the bearer token for the next request. An empty token
// sends no Authorization header.
type TokenSource func(ctx context.Context) (string, error)

// Client calls the inspection API.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sends a fixed bearer token.
func WithToken(token string) Option {
	return WithTokenSource(func(context.Context) (string, error) { return token, nil })
}

// WithTokenSource fetches the bearer token per request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

// New creates a client for the API rooted at baseURL, e.g. https://host/api/v1.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListInspections returns a user's inspections, newest first.
func (c *Client) ListInspections(ctx context.Context, userID, email string) ([]models.Inspection, error) {
	q := url.Values{}
	if email != "" {
		q.Set("email", email)
	}
	var out []models.Inspection
	err := c.do(ctx, http.MethodGet, "/inspections/"+url.PathEscape(userID), q, nil, &out)
	return out, err
}

// CreateInspection submits an inspection and returns the stored record.
func (c *Client) CreateInspection(ctx context.Context, in NewInspection) (*models.Inspection, error) {
	var out models.Inspection
	if err := c.do(ctx, http.MethodPost, "/inspections", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInspection loads one inspection with its images.
func (c *Client) GetInspection(ctx context.Context, id uint) (*models.Inspection, error) {
	var out models.Inspection
	if err := c.do(ctx, http.MethodGet, "/inspections/single/"+strconv.FormatUint(uint64(id), 10), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteInspection deletes an inspection owned by userID.
func (c *Client) DeleteInspection(ctx context.Context, id uint, userID string) error {
	q := url.Values{"user_id": {userID}}
	return c.do(ctx, http.MethodDelete, "/inspections/"+strconv.FormatUint(uint64(id), 10), q, nil, nil)
}

// IsAdmin asks whether userID holds the admin role.
func (c *Client) IsAdmin(ctx context.Context, userID, email string) (bool, error) {
	q := url.Values{}
	if email != "" {
		q.Set("email", email)
	}
	var out struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := c.do(ctx, http.MethodGet, "/admin/check/"+url.PathEscape(userID), q, nil, &out); err != nil {
		return false, err
	}
	return out.IsAdmin, nil
}

// DefectStats fetches the defective-items breakdown. adminID must be an admin.
func (c *Client) DefectStats(ctx context.Context, adminID string) (*checklist.Report, error) {
	var out checklist.Report
	if err := c.do(ctx, http.MethodGet, "/admin/defective-items-stats/"+url.PathEscape(adminID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return fmt.Errorf("get token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{Status: resp.StatusCode, Code: "BAD_RESPONSE", Message: err.Error()}
	}

	if resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Code: "UNKNOWN", Message: http.StatusText(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
