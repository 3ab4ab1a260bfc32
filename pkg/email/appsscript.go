package email

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"time"

	"agency-contact-api/internal/domain"
)

// AppsScriptTransport posts multipart form data to a Google Apps Script web app.
// The script's response is treated as opaque: only transport errors count as failure.
type AppsScriptTransport struct {
	client *http.Client
	url    string
}

func NewAppsScriptTransport(client *http.Client, url string) *AppsScriptTransport {
	return &AppsScriptTransport{client: client, url: url}
}

func (t *AppsScriptTransport) Name() string { return "appsscript" }

func (t *AppsScriptTransport) Send(ctx context.Context, p *domain.Payload) error {
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	fields := [][2]string{
		{"name", p.Name},
		{"email", p.Email},
		{"phone", p.Phone},
		{"message", p.Message},
		{"reference_id", p.ReferenceID},
		{"submitted_at", p.SubmittedAt.UTC().Format(time.RFC3339)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return &domain.TransportError{Provider: t.Name(), Err: err}
		}
	}
	if err := mw.Close(); err != nil {
		return &domain.TransportError{Provider: t.Name(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, body)
	if err != nil {
		return &domain.TransportError{Provider: t.Name(), Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if _, _, err := do(t.client, req); err != nil {
		return transportFailure(t.Name(), err)
	}
	return nil
}
