package email

import (
	"context"
	"net/http"

	"agency-contact-api/internal/domain"
)

// ResendTransport sends the notification (or the auto-reply) through the Resend HTTP API
type ResendTransport struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	from      string
	inbox     string
	autoReply bool
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

// NewResendTransport creates the notification transport; inbox receives every submission
func NewResendTransport(client *http.Client, baseURL, apiKey, from, inbox string) *ResendTransport {
	return &ResendTransport{client: client, baseURL: baseURL, apiKey: apiKey, from: from, inbox: inbox}
}

// NewResendAutoReply creates the transport that confirms receipt to the submitter
func NewResendAutoReply(client *http.Client, baseURL, apiKey, from, inbox string) *ResendTransport {
	t := NewResendTransport(client, baseURL, apiKey, from, inbox)
	t.autoReply = true
	return t
}

func (t *ResendTransport) Name() string {
	if t.autoReply {
		return "resend_auto_reply"
	}
	return "resend"
}

func (t *ResendTransport) Send(ctx context.Context, p *domain.Payload) error {
	var (
		msg *message
		err error
		req resendEmail
	)
	if t.autoReply {
		msg, err = renderAutoReply(p)
		req = resendEmail{From: t.from, To: []string{p.Email}, ReplyTo: t.inbox}
	} else {
		msg, err = renderNotification(p)
		req = resendEmail{From: t.from, To: []string{t.inbox}, ReplyTo: p.Email}
	}
	if err != nil {
		return &domain.TransportError{Provider: t.Name(), Err: err}
	}
	req.Subject = msg.Subject
	req.HTML = msg.HTML
	req.Text = msg.Text

	status, body, err := postJSON(ctx, t.client, t.baseURL+"/emails", map[string]string{
		"Authorization": "Bearer " + t.apiKey,
	}, req)
	if err != nil {
		return transportFailure(t.Name(), err)
	}
	if !isSuccess(status) {
		return statusFailure(t.Name(), status, body)
	}
	return nil
}
