package email

import (
	"context"
	"net/http"

	"agency-contact-api/internal/domain"
)

// FormspreeTransport posts the submission to a Formspree form endpoint
type FormspreeTransport struct {
	client   *http.Client
	endpoint string
}

type formspreeRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	ReplyTo string `json:"_replyto"`
	Subject string `json:"_subject"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
}

func NewFormspreeTransport(client *http.Client, endpoint string) *FormspreeTransport {
	return &FormspreeTransport{client: client, endpoint: endpoint}
}

func (t *FormspreeTransport) Name() string { return "formspree" }

// Send reports Formspree's {errors:[{message}]} body through TransportError.Messages
func (t *FormspreeTransport) Send(ctx context.Context, p *domain.Payload) error {
	req := formspreeRequest{
		Name:    p.Name,
		Email:   p.Email,
		ReplyTo: p.Email,
		Subject: sanitizeHeader("New contact form submission from " + p.Name),
		Phone:   p.Phone,
		Message: p.Message,
	}

	status, body, err := postJSON(ctx, t.client, t.endpoint, nil, req)
	if err != nil {
		return transportFailure(t.Name(), err)
	}
	if !isSuccess(status) {
		return statusFailure(t.Name(), status, body)
	}
	return nil
}
