// Package shortlink talks to the external link-shortening service and
// synchronizes minted short links back into post metadata.
package shortlink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogsmith/internal/retry"
)

// ResultKind tags the outcome of a create call.
type ResultKind int

const (
	// Created means the service minted a new short link.
	Created ResultKind = iota
	// Exists means the service answered 409; the short link is
	// reconstructed deterministically from the slug.
	Exists
)

// Result is the outcome of one create call against the service.
type Result struct {
	Kind      ResultKind
	ShortLink string
}

// ErrUnparseableResponse means the service answered 2xx but none of the
// known response shapes yielded a short link.
var ErrUnparseableResponse = errors.New("short-link response matched no known shape")

// Client is a minimal client for the link-shortening service.
type Client struct {
	base   string
	token  string
	http   *http.Client
	policy retry.Policy
}

// NewClient builds a client for the service at base, authenticating with
// a bearer token. Transport retries follow the given policy.
func NewClient(base, token string, policy retry.Policy) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		token:  token,
		http:   &http.Client{Timeout: 15 * time.Second},
		policy: policy,
	}
}

// Base returns the service base URL without a trailing slash.
func (c *Client) Base() string { return c.base }

type createRequest struct {
	URL  string `json:"url"`
	Slug string `json:"slug"`
}

// Create asks the service to mint a short link for longURL under the
// desired slug. A 409 yields Result{Kind: Exists} with no link; other
// non-2xx statuses are errors.
func (c *Client) Create(ctx context.Context, longURL, slug string) (Result, error) {
	payload, err := json.Marshal(createRequest{URL: longURL, Slug: slug})
	if err != nil {
		return Result{}, fmt.Errorf("encode create request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(c.policy.Delay(attempt)):
			}
		}

		res, err := c.createOnce(ctx, payload)
		if err == nil || !isTransient(err) {
			return res, err
		}
		lastErr = err
	}
	return Result{}, lastErr
}

func (c *Client) createOnce(ctx context.Context, payload []byte) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/link/create", bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("build create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, &transportError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, &transportError{err: err}
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		return Result{Kind: Exists}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Result{}, fmt.Errorf("short-link service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	link, ok := extractShortLink(body, c.base)
	if !ok {
		return Result{}, ErrUnparseableResponse
	}
	return Result{Kind: Created, ShortLink: link}, nil
}

type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}
