package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"agency-contact-api/internal/domain"
)

// message is a rendered email ready for any transport that sends full emails
type message struct {
	Subject string
	HTML    string
	Text    string
}

// notificationHTML is the HTML template for the notification sent to the agency inbox
const notificationHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New Contact Form Submission</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #111827; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .field { margin-bottom: 15px; }
        .label { font-weight: bold; color: #555; }
        .message-box { background: white; padding: 15px; border-left: 4px solid #6366f1; margin-top: 10px; white-space: pre-wrap; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>New Contact Form Submission</h1></div>
        <div class="content">
            <div class="field"><div class="label">From:</div><div>{{.Name}} ({{.Email}})</div></div>
            {{if .Phone}}<div class="field"><div class="label">Phone:</div><div>{{.Phone}}</div></div>{{end}}
            <div class="field"><div class="label">Message:</div><div class="message-box">{{.Message}}</div></div>
        </div>
        <div class="footer">
            <p>Reference {{.ReferenceID}} received {{.SubmittedAt.UTC.Format "2006-01-02 15:04 MST"}}.</p>
            <p>To reply, send an email to: {{.Email}}</p>
        </div>
    </div>
</body>
</html>`

const notificationText = `New contact form submission

From: {{.Name}} <{{.Email}}>
{{if .Phone}}Phone: {{.Phone}}
{{end}}
{{.Message}}

Reference {{.ReferenceID}}
`

// autoReplyHTML is the confirmation sent back to the submitter
const autoReplyHTML = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>We received your message</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <p>Hi {{.Name}},</p>
    <p>Thanks for reaching out. We received your message and will get back to you shortly.</p>
    <blockquote style="border-left: 4px solid #6366f1; padding-left: 12px; white-space: pre-wrap;">{{.Message}}</blockquote>
    <p style="color: #888; font-size: 12px;">Reference {{.ReferenceID}}</p>
</body>
</html>`

const autoReplyText = `Hi {{.Name}},

Thanks for reaching out. We received your message and will get back to you shortly.

> {{.Message}}

Reference {{.ReferenceID}}
`

var (
	notificationHTMLTmpl = htmltemplate.Must(htmltemplate.New("notification").Parse(notificationHTML))
	notificationTextTmpl = texttemplate.Must(texttemplate.New("notification").Parse(notificationText))
	autoReplyHTMLTmpl    = htmltemplate.Must(htmltemplate.New("auto_reply").Parse(autoReplyHTML))
	autoReplyTextTmpl    = texttemplate.Must(texttemplate.New("auto_reply").Parse(autoReplyText))
)

func renderNotification(p *domain.Payload) (*message, error) {
	html, text, err := render(p, notificationHTMLTmpl, notificationTextTmpl)
	if err != nil {
		return nil, err
	}
	return &message{
		Subject: sanitizeHeader(fmt.Sprintf("New contact form submission from %s", p.Name)),
		HTML:    html,
		Text:    text,
	}, nil
}

func renderAutoReply(p *domain.Payload) (*message, error) {
	html, text, err := render(p, autoReplyHTMLTmpl, autoReplyTextTmpl)
	if err != nil {
		return nil, err
	}
	return &message{
		Subject: "We received your message",
		HTML:    html,
		Text:    text,
	}, nil
}

func render(p *domain.Payload, h *htmltemplate.Template, t *texttemplate.Template) (string, string, error) {
	var html, text bytes.Buffer
	if err := h.Execute(&html, p); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}
	if err := t.Execute(&text, p); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return html.String(), text.String(), nil
}

// sanitizeHeader strips CR/LF so user input cannot inject extra headers
func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
