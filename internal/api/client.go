// Package api is the typed client for the pet-store REST backend.
//
// Every operation performs exactly one HTTP call with a bounded timeout and
// no retries. Any failure (transport, non-2xx status, or a response body
// that does not parse) is reported once to the diagnostic sink and then
// returned as a single *Error carrying the endpoint and method, so callers
// can treat all of them uniformly.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultTimeout bounds each request when the config does not say otherwise.
const DefaultTimeout = 5 * time.Second

// SystemErrorMessage is the only failure text end users ever see. Backend
// error detail goes to the logbook, never to the screen.
const SystemErrorMessage = "System error. Please contact the system administrator."

// Reporter is the diagnostic sink for API failures. *logbook.Logbook
// satisfies it.
type Reporter interface {
	Error(format string, args ...any)
}

// Error is the single failure type surfaced by the client.
type Error struct {
	Endpoint string
	Method   string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s %s: %v", e.Method, e.Endpoint, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Option customizes Client construction.
type Option func(*Client)

// WithReporter attaches the diagnostic sink failures are reported to.
func WithReporter(r Reporter) Option {
	return func(c *Client) {
		c.reporter = r
	}
}

// WithTransport injects an http.RoundTripper, mainly for tests.
func WithTransport(tr http.RoundTripper) Option {
	return func(c *Client) {
		c.http.Transport = tr
	}
}

// Client issues typed requests against the pet-store backend.
type Client struct {
	baseURL  string
	http     *http.Client
	reporter Reporter
}

// NewClient validates the base URL and builds a client with the given
// per-request timeout.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("api: invalid base url %q: %w", baseURL, err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// ListPets fetches the summary rows for the table.
func (c *Client) ListPets(ctx context.Context) ([]PetListItem, error) {
	var out []PetListItem
	if err := c.doJSON(ctx, http.MethodGet, "/pet/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPetKinds fetches the reference data.
func (c *Client) ListPetKinds(ctx context.Context) ([]PetKind, error) {
	var out []PetKind
	if err := c.doJSON(ctx, http.MethodGet, "/pet/kinds", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPet fetches one full record.
func (c *Client) GetPet(ctx context.Context, petID int) (Pet, error) {
	var out Pet
	if err := validatePetID(petID); err != nil {
		return out, err
	}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/pet/%d", petID), nil, &out); err != nil {
		return Pet{}, err
	}
	return out, nil
}

// CreatePet adds a new pet and returns the record the server created.
func (c *Client) CreatePet(ctx context.Context, data PetFormData) (Pet, error) {
	var out Pet
	if err := c.doJSON(ctx, http.MethodPost, "/pet", &data, &out); err != nil {
		return Pet{}, err
	}
	return out, nil
}

// UpdatePet replaces an existing pet and returns the updated record.
func (c *Client) UpdatePet(ctx context.Context, petID int, data PetFormData) (Pet, error) {
	var out Pet
	if err := validatePetID(petID); err != nil {
		return out, err
	}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/pet/%d", petID), &data, &out); err != nil {
		return Pet{}, err
	}
	return out, nil
}

// DeletePet removes a pet and returns the deleted record.
func (c *Client) DeletePet(ctx context.Context, petID int) (Pet, error) {
	var out Pet
	if err := validatePetID(petID); err != nil {
		return out, err
	}
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/pet/%d", petID), nil, &out); err != nil {
		return Pet{}, err
	}
	return out, nil
}

func validatePetID(petID int) error {
	if petID <= 0 {
		return fmt.Errorf("api: pet id must be a positive integer, got %d", petID)
	}
	return nil
}

// doJSON performs one request. in and out are optional; a nil out discards
// the response body.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return c.fail(endpoint, method, fmt.Errorf("encode request body: %w", err))
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return c.fail(endpoint, method, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(endpoint, method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return c.fail(endpoint, method, fmt.Errorf("read response body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Non-2xx bodies carry no guaranteed shape; the status code is all
		// the diagnostics get.
		return c.fail(endpoint, method, fmt.Errorf("received non successful status code: %d", resp.StatusCode))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return c.fail(endpoint, method, fmt.Errorf("parse JSON response: %w", err))
	}
	return nil
}

// fail reports the failure to the diagnostic sink before returning it.
func (c *Client) fail(endpoint, method string, cause error) error {
	apiErr := &Error{Endpoint: endpoint, Method: method, Err: cause}
	if c.reporter != nil {
		c.reporter.Error("%v", apiErr)
	}
	return apiErr
}

// IsAPIError reports whether err originated from a backend call (as opposed
// to local input validation).
func IsAPIError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr)
}
