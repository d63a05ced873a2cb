package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/repetit/testflow-backend/internal/model"
)

var (
	// ErrTransport covers check-test network failures (retryable by the user).
	ErrTransport = errors.New("upstream unreachable")
	// ErrInvalidResponse covers structurally unusable check-test payloads.
	ErrInvalidResponse = errors.New("invalid upstream response")
	// ErrSubmitFailed covers any submit-test failure, network or non-2xx.
	ErrSubmitFailed = errors.New("submission not accepted")
)

// NotAllowedError is an explicit upstream refusal with its reason string.
type NotAllowedError struct {
	Reason string
}

func (e *NotAllowedError) Error() string {
	return "access not allowed: " + e.Reason
}

// Client talks to the exam platform that owns check-test and submit-test.
// It makes exactly one attempt per call: retry policy belongs to the user,
// backed by the local backup record.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "upstream").Logger(),
	}
}

// checkResponse mirrors the check-test contract.
type checkResponse struct {
	Allowed        bool      `json:"allowed"`
	Minutes        int       `json:"minutes"`
	CloseQuestions int       `json:"close_questions"`
	OpenQuestions  int       `json:"open_questions"`
	TestName       string    `json:"test_name"`
	TestID         string    `json:"test_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	AdminID        string    `json:"admin_id"`
	IsEnded        bool      `json:"is_ended"`
	Error          string    `json:"error"`
}

// CheckTest validates a test code for a requester and returns the test
// descriptor. Structural problems (missing minutes or name, no questions)
// are ErrInvalidResponse even when the upstream says allowed.
func (c *Client) CheckTest(ctx context.Context, userID, testID string) (*model.TestDescriptor, error) {
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("test_id", testID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/check-test?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	var payload checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if !payload.Allowed {
		return nil, &NotAllowedError{Reason: payload.Error}
	}
	if payload.Minutes <= 0 || payload.TestName == "" {
		return nil, fmt.Errorf("%w: missing minutes or test_name", ErrInvalidResponse)
	}
	if payload.CloseQuestions < 0 || payload.OpenQuestions < 0 ||
		payload.CloseQuestions+payload.OpenQuestions < 1 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidResponse)
	}

	return &model.TestDescriptor{
		TestID:         payload.TestID,
		TestName:       payload.TestName,
		Minutes:        payload.Minutes,
		CloseQuestions: payload.CloseQuestions,
		OpenQuestions:  payload.OpenQuestions,
		StartTime:      payload.StartTime,
		EndTime:        payload.EndTime,
		IsEnded:        payload.IsEnded,
		AdminID:        payload.AdminID,
	}, nil
}

// SubmitTest posts the normalized submission. Any failure, transport error
// or non-2xx status alike, is ErrSubmitFailed; the caller keeps the backup.
func (c *Client) SubmitTest(ctx context.Context, sub *model.Submission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit-test", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrSubmitFailed, resp.StatusCode)
	}

	c.log.Debug().Str("test_id", sub.TestID).Str("user_id", sub.UserID).Msg("Submission accepted")
	return nil
}
