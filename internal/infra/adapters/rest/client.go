// Package rest implements the resource ports over the backend's uniform
// JSON/HTTP envelope. Every adapter is stateless: one request function per
// (resource, verb) pair, with failures classified into the shared fault
// taxonomy before they reach an orchestrator.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/swapwear/marketplace/internal/core/domain/fault"
)

const headerIdempotencyKey = "X-Idempotency-Key"

// Client carries the shared transport for all resource adapters.
//
// No client-enforced timeout is configured: deadline control belongs to the
// caller's context. A request that never resolves leaves the initiating
// action pending, which the contract accepts as a gap.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds the shared transport. The OpenTelemetry round-tripper
// stamps each outgoing request with the active trace context.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// apiError is the backend's error envelope.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// do issues one request and decodes the response into out (out may be nil
// for operations without a payload). Non-2xx statuses become classified
// faults; undecodable success bodies become MalformedResponse.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	return c.doWith(ctx, op, method, path, nil, body, out)
}

func (c *Client) doWith(ctx context.Context, op, method, path string, headers map[string]string, body, out any) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fault.Remote(op, 0, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		var envelope apiError
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
		_ = json.Unmarshal(raw, &envelope)
		msg := envelope.text()
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return fault.Remote(op, res.StatusCode, fmt.Errorf("%s", msg))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fault.Wrap(fault.MalformedResponse, op, err)
	}
	return nil
}
