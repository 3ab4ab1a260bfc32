package email

import (
	"context"
	"net/http"

	"agency-contact-api/internal/domain"
)

// EmailJSTransport sends a submission through an EmailJS template.
// The notification and the auto-reply differ only by template.
type EmailJSTransport struct {
	client     *http.Client
	baseURL    string
	serviceID  string
	templateID string
	publicKey  string
	privateKey string
	inbox      string
	name       string
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// EmailJSConfig holds the account identifiers shared by both templates
type EmailJSConfig struct {
	BaseURL    string
	ServiceID  string
	PublicKey  string
	PrivateKey string
	Inbox      string
}

func NewEmailJSTransport(client *http.Client, cfg EmailJSConfig, templateID string) *EmailJSTransport {
	return newEmailJS(client, cfg, templateID, "emailjs")
}

func NewEmailJSAutoReply(client *http.Client, cfg EmailJSConfig, templateID string) *EmailJSTransport {
	return newEmailJS(client, cfg, templateID, "emailjs_auto_reply")
}

func newEmailJS(client *http.Client, cfg EmailJSConfig, templateID, name string) *EmailJSTransport {
	return &EmailJSTransport{
		client:     client,
		baseURL:    cfg.BaseURL,
		serviceID:  cfg.ServiceID,
		templateID: templateID,
		publicKey:  cfg.PublicKey,
		privateKey: cfg.PrivateKey,
		inbox:      cfg.Inbox,
		name:       name,
	}
}

func (t *EmailJSTransport) Name() string { return t.name }

func (t *EmailJSTransport) Send(ctx context.Context, p *domain.Payload) error {
	req := emailJSRequest{
		ServiceID:   t.serviceID,
		TemplateID:  t.templateID,
		UserID:      t.publicKey,
		AccessToken: t.privateKey,
		TemplateParams: map[string]string{
			"from_name":    p.Name,
			"from_email":   p.Email,
			"reply_to":     p.Email,
			"phone":        p.Phone,
			"message":      p.Message,
			"to_email":     t.inbox,
			"reference_id": p.ReferenceID,
		},
	}

	status, body, err := postJSON(ctx, t.client, t.baseURL+"/api/v1.0/email/send", nil, req)
	if err != nil {
		return transportFailure(t.Name(), err)
	}
	if !isSuccess(status) {
		return statusFailure(t.Name(), status, body)
	}
	return nil
}
