// Package client is the programmatic facade over the Task Reviewer API for
// embedding in a host platform. Every method maps 1:1 onto an HTTP endpoint
// and therefore onto the same lifecycle rules; there is no operation here
// that an HTTP caller could not perform.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"task-reviewer-api/models"
)

// APIError is a non-2xx response, carrying the server's error kind so
// embedders can branch on the same taxonomy the service uses.
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Kind, e.Message)
}

// Client talks to a Task Reviewer API instance.
type Client struct {
	baseURL    string
	apiKey     string
	adminToken string
	httpClient *http.Client
}

// New builds a client. A nil httpClient gets a 30 second default.
func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// AdminLogin exchanges the shared secret for a session marker and keeps it
// for subsequent admin calls.
func (c *Client) AdminLogin(ctx context.Context, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/admin", map[string]string{"password": password}, &resp); err != nil {
		return err
	}
	c.adminToken = resp.Token
	return nil
}

// CreateTask registers a new task definition (admin).
func (c *Client) CreateTask(ctx context.Context, taskID, title, description string) (*models.TaskDefinition, error) {
	var resp struct {
		Task *models.TaskDefinition `json:"task"`
	}
	payload := map[string]string{"task_id": taskID, "title": title, "description": description}
	if err := c.doJSON(ctx, http.MethodPost, "/tasks", payload, &resp); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// ListTasks fetches all task definitions.
func (c *Client) ListTasks(ctx context.Context) ([]models.TaskDefinition, error) {
	var tasks []models.TaskDefinition
	if err := c.doJSON(ctx, http.MethodGet, "/tasks/all", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// SubmitText creates a review record from raw text (user).
func (c *Client) SubmitText(ctx context.Context, taskID, username, text string) (*models.ReviewRecord, error) {
	var record models.ReviewRecord
	path := fmt.Sprintf("/review/text/%s/%s", taskID, username)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"submission_text": text}, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// SubmitLink creates a review record from a link (user).
func (c *Client) SubmitLink(ctx context.Context, taskID, username, link string) (*models.ReviewRecord, error) {
	var record models.ReviewRecord
	path := fmt.Sprintf("/review/link/%s/%s", taskID, username)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"submission_link": link}, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// SubmitFile creates a review record from file content (user). The content
// must be UTF-8 text.
func (c *Client) SubmitFile(ctx context.Context, taskID, username, filename string, content []byte) (*models.ReviewRecord, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("submission_file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/review/file/%s/%s", taskID, username)
	req, err := c.newRequest(ctx, http.MethodPost, path, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var record models.ReviewRecord
	if err := c.send(req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// PendingReviews lists records awaiting feedback (admin).
func (c *Client) PendingReviews(ctx context.Context) ([]models.ReviewRecord, error) {
	var records []models.ReviewRecord
	if err := c.doJSON(ctx, http.MethodGet, "/admin/pending-reviews", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SendFeedback applies supervisor feedback to a pending review (admin).
func (c *Client) SendFeedback(ctx context.Context, reviewID, sentiment string, dhi models.DHIScores) (*models.ReviewRecord, error) {
	payload := map[string]interface{}{
		"sentiment":  sentiment,
		"dhi_scores": dhi,
	}
	var resp struct {
		UpdatedRecord *models.ReviewRecord `json:"updated_record"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/feedback/"+reviewID, payload, &resp); err != nil {
		return nil, err
	}
	return resp.UpdatedRecord, nil
}

// GenerateNextTask requests the follow-up task for a reviewed submission
// (user; username must match the record's submitter).
func (c *Client) GenerateNextTask(ctx context.Context, reviewID, username string) (*models.ReviewRecord, error) {
	var resp struct {
		UpdatedRecord *models.ReviewRecord `json:"updated_record"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/generate-next-task/"+reviewID, map[string]string{"username": username}, &resp); err != nil {
		return nil, err
	}
	return resp.UpdatedRecord, nil
}

// GetReview fetches the full record.
func (c *Client) GetReview(ctx context.Context, reviewID string) (*models.ReviewRecord, error) {
	var record models.ReviewRecord
	if err := c.doJSON(ctx, http.MethodGet, "/review/"+reviewID, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UserReviews fetches all records submitted under a username.
func (c *Client) UserReviews(ctx context.Context, username string) ([]models.ReviewRecord, error) {
	var records []models.ReviewRecord
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/user/%s/reviews", username), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
			Kind  string `json:"kind"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = string(raw)
		}
		return &APIError{StatusCode: resp.StatusCode, Kind: apiErr.Kind, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
