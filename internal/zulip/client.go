// Package zulip is the HTTP client for the chat server's command and message endpoints
package zulip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codegangsta/zcommand/internal/zcommand"
)

const (
	// CommandPath is the zcommand endpoint
	CommandPath = "/json/zcommand"
	// MessagesPath is the endpoint ordinary chat messages are posted to
	MessagesPath = "/json/messages"

	// DefaultTimeout bounds a single round trip
	DefaultTimeout = 10 * time.Second
)

// Response is the common envelope of every server reply
type Response struct {
	Result string `json:"result"` // "success" or "error"
	Msg    string `json:"msg"`
	ID     int64  `json:"id,omitempty"`
}

// APIError is a reply the server sent but that was not a success
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("server error %d", e.Status)
	}
	return fmt.Sprintf("server error %d: %s", e.Status, e.Msg)
}

// Client talks to a single server as a single user
type Client struct {
	baseURL string
	email   string
	apiKey  string
	client  *http.Client
}

// NewClient creates a client. A zero timeout means DefaultTimeout.
func NewClient(baseURL, email, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		email:   email,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Command sends a zcommand and returns the server's acknowledgement
func (c *Client) Command(ctx context.Context, command string) (*zcommand.Result, error) {
	resp, err := c.post(ctx, CommandPath, url.Values{"command": {command}})
	if err != nil {
		return nil, err
	}
	return &zcommand.Result{Msg: resp.Msg}, nil
}

// SendMessage posts an ordinary private message and returns its id
func (c *Client) SendMessage(ctx context.Context, to, content string) (int64, error) {
	resp, err := c.post(ctx, MessagesPath, url.Values{
		"type":    {"private"},
		"to":      {to},
		"content": {content},
	})
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.email != "" {
		httpReq.SetBasicAuth(c.email, c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var out Response
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode != http.StatusOK {
		msg := out.Msg
		if decodeErr != nil {
			msg = strings.TrimSpace(string(body))
		}
		return nil, &APIError{Status: resp.StatusCode, Msg: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding response: %w", decodeErr)
	}
	if out.Result != "success" {
		return nil, &APIError{Status: resp.StatusCode, Msg: out.Msg}
	}

	return &out, nil
}

// LocationURL is the web address of an in-app location such as
// "settings/your-account"
func LocationURL(baseURL, location string) string {
	return strings.TrimRight(baseURL, "/") + "/#" + location
}
