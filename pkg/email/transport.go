package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"agency-contact-api/internal/domain"
)

// maxResponseBody caps how much of a provider response is read
const maxResponseBody = 64 << 10

// NewHTTPClient returns the client shared by the HTTP-based transports
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// postJSON sends body as JSON and returns the status code and (bounded) response body
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body interface{}) (int, []byte, error) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return do(client, req)
}

func do(client *http.Client, req *http.Request) (int, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}

func isSuccess(status int) bool {
	return status/100 == 2
}

// transportFailure classifies an error raised before a response was available
func transportFailure(provider string, err error) *domain.TransportError {
	te := &domain.TransportError{Provider: provider, Err: err}
	if errors.Is(err, context.DeadlineExceeded) {
		te.Timeout = true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		te.Timeout = true
	}
	return te
}

// statusFailure builds a TransportError for a non-2xx response
func statusFailure(provider string, status int, body []byte) *domain.TransportError {
	te := &domain.TransportError{
		Provider:   provider,
		StatusCode: status,
		Messages:   providerMessages(body),
	}
	if len(te.Messages) == 0 {
		if detail := strings.TrimSpace(string(body)); detail != "" {
			te.Err = errors.New(truncate(detail, 512))
		}
	}
	return te
}

// providerMessages extracts user-facing messages from an {errors:[{message}]} body
func providerMessages(body []byte) []string {
	var parsed struct {
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil
	}

	var messages []string
	for _, e := range parsed.Errors {
		if msg := strings.TrimSpace(e.Message); msg != "" {
			messages = append(messages, msg)
		}
	}
	return messages
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
