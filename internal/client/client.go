// Package client is the HTTP consumer of the gym API, used by kiosk tooling
// to drive the calendar event store against a running server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/flexfit/gym-api/internal/dto"
	"github.com/flexfit/gym-api/internal/models"
	appErrors "github.com/flexfit/gym-api/pkg/errors"
)

// envelope mirrors the server's common response contract, with Data kept raw
// so each call can decode its own payload shape.
type envelope struct {
	Data  json.RawMessage  `json:"data,omitempty"`
	Error *appErrors.Error `json:"error,omitempty"`
}

// Client talks to the gym API and satisfies the event store's Collaborator
// contract.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for the given base URL (scheme://host[:port], no
// trailing slash required). The token is attached as a bearer credential on
// every request.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, token: token, http: httpClient}
}

// CreateClass submits a new class definition, recurrence flags included.
func (c *Client) CreateClass(ctx context.Context, req dto.CreateClassRequest) (*models.GymClass, error) {
	var class models.GymClass
	if err := c.do(ctx, http.MethodPost, "/api/v1/classes", nil, req, &class); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListOccurrences fetches the server's expanded occurrence list for the gym
// and window.
func (c *Client) ListOccurrences(ctx context.Context, gymID string, start, end time.Time) ([]models.Occurrence, error) {
	query := url.Values{}
	query.Set("gym_id", gymID)
	query.Set("start", start.Format("2006-01-02"))
	query.Set("end", end.Format("2006-01-02"))

	var occurrences []models.Occurrence
	if err := c.do(ctx, http.MethodGet, "/api/v1/classes", query, nil, &occurrences); err != nil {
		return nil, err
	}
	return occurrences, nil
}

// DeleteClass removes a single class record.
func (c *Client) DeleteClass(ctx context.Context, classID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/classes/"+url.PathEscape(classID), nil, nil, nil)
}

// DeleteSeries removes every class sharing the parent recurrence id.
func (c *Client) DeleteSeries(ctx context.Context, parentRecurrenceID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/classes/series/"+url.PathEscape(parentRecurrenceID), nil, nil, nil)
}

// Login authenticates and returns the issued token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	payload := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", nil, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "gym api unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status,
			fmt.Sprintf("malformed response, status %d", resp.StatusCode))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if env.Error != nil {
			return env.Error
		}
		return appErrors.Clone(appErrors.ErrCollaborator, fmt.Sprintf("gym api returned status %d", resp.StatusCode))
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return appErrors.Wrap(err, appErrors.ErrCollaborator.Code, appErrors.ErrCollaborator.Status, "failed to decode response payload")
		}
	}
	return nil
}
