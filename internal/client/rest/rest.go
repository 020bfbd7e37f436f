// Package rest provides the thin JSON/HTTP plumbing shared by the client
// gateways: request encoding, API error decoding, and a transient-failure
// predicate used with bounded retry.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// Error is an API-level failure decoded from the backend error envelope
// {"error": {"code": "...", "message": "..."}}.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Do performs a JSON request. A non-nil in is encoded as the request body; a
// non-nil out receives the decoded response body. bearer, when non-empty, is
// sent as the Authorization token. Responses outside 2xx are returned as
// *Error; transport failures come back unwrapped.
func Do(ctx context.Context, hc *http.Client, method, url, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Code: "unknown"}
		var env errorEnvelope
		if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr == nil && env.Error.Code != "" {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// IsTransient reports whether err looks like a temporary failure worth
// retrying: transport errors and 5xx responses.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	// context errors are final; anything else at the transport level may heal
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// Backoff returns the bounded backoff used for idempotent gateway calls.
func Backoff() retry.Backoff {
	return retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))
}
