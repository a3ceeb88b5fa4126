// Package jsonbin reads and writes a single JSON document in a JSONBin-style store.
package jsonbin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the JSONBin v3 bin endpoint.
const DefaultBaseURL = "https://api.jsonbin.io/v3/b/"

const maxErrorBody = 4 << 10

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Body   string
	Code   int
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("jsonbin %s: status %d", e.Method, e.Code)
	}
	return fmt.Sprintf("jsonbin %s: status %d: %s", e.Method, e.Code, e.Body)
}

// Client talks to one bin.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	BinID     string
	AccessKey string
}

// New returns a client with the default base URL and a request timeout.
func New(binID, accessKey string, timeout time.Duration) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		BaseURL:   DefaultBaseURL,
		BinID:     binID,
		AccessKey: accessKey,
	}
}

func (c *Client) url() string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + c.BinID
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// Read fetches the document. A {"record": ...} envelope is unwrapped.
func (c *Client) Read(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(), nil)
	if err != nil {
		return nil, err
	}
	c.headers(req)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	return unwrapRecord(body), nil
}

// Write replaces the document.
func (c *Client) Write(ctx context.Context, doc []byte) error {
	if !json.Valid(doc) {
		return fmt.Errorf("jsonbin PUT: document is not valid JSON")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url(), bytes.NewReader(doc))
	if err != nil {
		return err
	}
	c.headers(req)
	req.Header.Set("X-Bin-Meta", "false")

	_, err = c.do(req)
	return err
}

func (c *Client) headers(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.AccessKey != "" {
		req.Header.Set("X-Access-Key", c.AccessKey)
	}
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Method: req.Method, Code: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}

	return io.ReadAll(resp.Body)
}

func unwrapRecord(body []byte) []byte {
	var env struct {
		Record json.RawMessage `json:"record"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Record) == 0 || string(env.Record) == "null" {
		return body
	}

	return env.Record
}
