package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agency-contact-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload() *domain.Payload {
	return &domain.Payload{
		ReferenceID: "ref-1",
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "+1 555 0100",
		Message:     "Hello <b>there</b>",
		SubmittedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestResendTransport(t *testing.T) {
	t.Run("Should send notification to the inbox with reply-to set", func(t *testing.T) {
		var got resendEmail
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/emails", r.URL.Path)
			assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":"abc"}`))
		}))
		defer srv.Close()

		tr := NewResendTransport(srv.Client(), srv.URL, "re_test", "Site <noreply@agency.dev>", "hello@agency.dev")
		require.NoError(t, tr.Send(context.Background(), testPayload()))

		assert.Equal(t, []string{"hello@agency.dev"}, got.To)
		assert.Equal(t, "jane@example.com", got.ReplyTo)
		assert.Equal(t, "New contact form submission from Jane Doe", got.Subject)
		assert.Contains(t, got.HTML, "Hello &lt;b&gt;there&lt;/b&gt;")
		assert.Contains(t, got.Text, "+1 555 0100")
	})

	t.Run("Auto-reply goes to the submitter", func(t *testing.T) {
		var got resendEmail
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		}))
		defer srv.Close()

		tr := NewResendAutoReply(srv.Client(), srv.URL, "re_test", "noreply@agency.dev", "hello@agency.dev")
		require.NoError(t, tr.Send(context.Background(), testPayload()))
		assert.Equal(t, "resend_auto_reply", tr.Name())
		assert.Equal(t, []string{"jane@example.com"}, got.To)
		assert.Equal(t, "We received your message", got.Subject)
	})

	t.Run("Non-2xx is a transport error without user-facing messages", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"statusCode":401,"message":"API key is invalid","name":"validation_error"}`))
		}))
		defer srv.Close()

		err := NewResendTransport(srv.Client(), srv.URL, "bad", "a@b.co", "c@d.co").Send(context.Background(), testPayload())
		var te *domain.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
		assert.Empty(t, te.Messages)
		assert.Contains(t, te.Error(), "API key is invalid")
	})
}

func TestFormspreeTransport(t *testing.T) {
	t.Run("Should post JSON with _replyto", func(t *testing.T) {
		var got map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"next":"/thanks","ok":true}`))
		}))
		defer srv.Close()

		require.NoError(t, NewFormspreeTransport(srv.Client(), srv.URL).Send(context.Background(), testPayload()))
		assert.Equal(t, "jane@example.com", got["_replyto"])
		assert.Equal(t, "jane@example.com", got["email"])
		assert.Equal(t, "Jane Doe", got["name"])
		assert.Equal(t, "+1 555 0100", got["phone"])
	})

	t.Run("422 errors array becomes Messages", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"errors":[{"field":"email","code":"TYPE_EMAIL","message":"Email invalid"}]}`))
		}))
		defer srv.Close()

		err := NewFormspreeTransport(srv.Client(), srv.URL).Send(context.Background(), testPayload())
		var te *domain.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusUnprocessableEntity, te.StatusCode)
		assert.Equal(t, []string{"Email invalid"}, te.Messages)
		assert.False(t, te.Timeout)
	})
}

func TestEmailJSTransport(t *testing.T) {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1.0/email/send", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if got.TemplateID == "broken" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("The template ID is invalid"))
			return
		}
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	cfg := EmailJSConfig{BaseURL: srv.URL, ServiceID: "svc", PublicKey: "pub", PrivateKey: "priv", Inbox: "hello@agency.dev"}

	require.NoError(t, NewEmailJSTransport(srv.Client(), cfg, "tmpl").Send(context.Background(), testPayload()))
	assert.Equal(t, "svc", got.ServiceID)
	assert.Equal(t, "tmpl", got.TemplateID)
	assert.Equal(t, "pub", got.UserID)
	assert.Equal(t, "priv", got.AccessToken)
	assert.Equal(t, "Jane Doe", got.TemplateParams["from_name"])
	assert.Equal(t, "hello@agency.dev", got.TemplateParams["to_email"])

	err := NewEmailJSAutoReply(srv.Client(), cfg, "broken").Send(context.Background(), testPayload())
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "emailjs_auto_reply", te.Provider)
	assert.Equal(t, http.StatusBadRequest, te.StatusCode)
}

func TestAppsScriptTransport(t *testing.T) {
	t.Run("Should post multipart fields and ignore the response status", func(t *testing.T) {
		fields := map[string]string{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
			require.NoError(t, r.ParseMultipartForm(1<<20))
			for k, v := range r.MultipartForm.Value {
				fields[k] = v[0]
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		require.NoError(t, NewAppsScriptTransport(srv.Client(), srv.URL).Send(context.Background(), testPayload()))
		assert.Equal(t, "Jane Doe", fields["name"])
		assert.Equal(t, "jane@example.com", fields["email"])
		assert.Equal(t, "ref-1", fields["reference_id"])
		assert.Equal(t, "2026-01-02T03:04:05Z", fields["submitted_at"])
	})

	t.Run("Connection failure is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		err := NewAppsScriptTransport(http.DefaultClient, url).Send(context.Background(), testPayload())
		var te *domain.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "appsscript", te.Provider)
	})
}

func TestHTTPTransportTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewFormspreeTransport(srv.Client(), srv.URL).Send(ctx, testPayload())
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.Timeout)
}

func TestSMTPTransport(t *testing.T) {
	var (
		gotTo  []string
		gotMsg string
	)
	tr := NewSMTPTransport(SMTPConfig{Host: "smtp.test", Port: "587", Username: "user@agency.dev", Inbox: "hello@agency.dev"})
	tr.send = func(ctx context.Context, cfg SMTPConfig, from string, to []string, msg []byte) error {
		assert.Equal(t, "user@agency.dev", from)
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	p := testPayload()
	p.Name = "Jane\r\nBcc: victim@example.com"
	require.NoError(t, tr.Send(context.Background(), p))

	assert.Equal(t, []string{"hello@agency.dev"}, gotTo)
	headers := strings.SplitN(gotMsg, "\r\n\r\n", 2)[0]
	assert.Contains(t, headers, "Reply-To: jane@example.com\r\n")
	assert.NotContains(t, headers, "\r\nBcc:")
	assert.Contains(t, gotMsg, "multipart/alternative")

	tr.send = func(context.Context, SMTPConfig, string, []string, []byte) error {
		return errors.New("535 authentication failed")
	}
	err := tr.Send(context.Background(), testPayload())
	var te *domain.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "smtp", te.Provider)
}

func TestProviderMessages(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, providerMessages([]byte(`{"errors":[{"message":"a"},{"message":" "},{"message":"b"}]}`)))
	assert.Nil(t, providerMessages([]byte(`not json`)))
	assert.Nil(t, providerMessages([]byte(`{"message":"x"}`)))
}
