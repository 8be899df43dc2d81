package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/zhouzirui/haggle/backend/internal/negotiation"
)

// ErrRemoteSessionNotFound is returned when the server no longer knows the session.
var ErrRemoteSessionNotFound = errors.New("remote session not found")

type apiError struct {
	Error string `json:"error"`
}

type sessionPayload struct {
	Session struct {
		ID          string `json:"id"`
		ProductName string `json:"productName"`
	} `json:"session"`
	State negotiation.View `json:"state"`
}

type transcriptPayload struct {
	SessionID string   `json:"sessionId"`
	Lines     []string `json:"lines"`
}

// Client talks to a running haggle API server.
type Client struct {
	client *resty.Client
}

// NewClient creates a REST client for the given server base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/") + "/api")
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")

	return &Client{client: client}
}

// Product fetches the terms the server negotiates over.
func (c *Client) Product(ctx context.Context) (ProductTerms, error) {
	var terms ProductTerms
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&terms).
		SetError(&apiError{}).
		Get("/product")
	if err := checkResponse(resp, err, "get product"); err != nil {
		return ProductTerms{}, err
	}
	return terms, nil
}

// Open creates a new server-side session.
func (c *Client) Open(ctx context.Context) (*RemoteNegotiator, error) {
	var payload sessionPayload
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&payload).
		SetError(&apiError{}).
		Post("/session")
	if err := checkResponse(resp, err, "create session"); err != nil {
		return nil, err
	}
	if payload.Session.ID == "" {
		return nil, errors.New("create session: server returned no session id")
	}
	return &RemoteNegotiator{client: c.client, sessionID: payload.Session.ID}, nil
}

// RemoteNegotiator drives one server-side session.
type RemoteNegotiator struct {
	client    *resty.Client
	sessionID string
}

// SessionID returns the server-assigned session id.
func (r *RemoteNegotiator) SessionID() string {
	return r.sessionID
}

func (r *RemoteNegotiator) Submit(ctx context.Context, content string) (negotiation.ResultView, error) {
	var result negotiation.ResultView
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParam("sessionID", r.sessionID).
		SetBody(map[string]string{"content": content}).
		SetResult(&result).
		SetError(&apiError{}).
		Post("/session/{sessionID}/messages")
	if err := checkResponse(resp, err, "submit message"); err != nil {
		return negotiation.ResultView{}, err
	}
	return result, nil
}

func (r *RemoteNegotiator) State(ctx context.Context) (negotiation.View, error) {
	var payload sessionPayload
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParam("sessionID", r.sessionID).
		SetResult(&payload).
		SetError(&apiError{}).
		Get("/session/{sessionID}")
	if err := checkResponse(resp, err, "get state"); err != nil {
		return negotiation.View{}, err
	}
	return payload.State, nil
}

func (r *RemoteNegotiator) Transcript(ctx context.Context) ([]string, error) {
	var payload transcriptPayload
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParam("sessionID", r.sessionID).
		SetResult(&payload).
		SetError(&apiError{}).
		Get("/session/{sessionID}/transcript")
	if err := checkResponse(resp, err, "get transcript"); err != nil {
		return nil, err
	}
	return payload.Lines, nil
}

func (r *RemoteNegotiator) Close(ctx context.Context) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParam("sessionID", r.sessionID).
		SetError(&apiError{}).
		Delete("/session/{sessionID}")
	return checkResponse(resp, err, "close session")
}

func checkResponse(resp *resty.Response, err error, action string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if !resp.IsError() {
		return nil
	}

	message := strings.TrimSpace(resp.String())
	if apiErr, ok := resp.Error().(*apiError); ok && apiErr.Error != "" {
		message = apiErr.Error
	}
	if resp.StatusCode() == 404 {
		return fmt.Errorf("%s: %w: %s", action, ErrRemoteSessionNotFound, message)
	}
	return fmt.Errorf("%s: server returned %d: %s", action, resp.StatusCode(), message)
}
