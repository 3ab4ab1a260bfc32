package v1

import (
	"context"
	"net/http"

	"agency-contact-api/internal/delivery/http/response"
	"agency-contact-api/internal/domain"
	"agency-contact-api/pkg/apperror"
	"agency-contact-api/pkg/logger"
	"agency-contact-api/pkg/security"

	"github.com/gin-gonic/gin"
)

// SubmissionGuard rejects identical submissions while one is in flight
type SubmissionGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// ContactRequest is the inbound form, accepted as JSON, urlencoded or multipart.
// Formspree-style clients send the email as _replyto.
type ContactRequest struct {
	Name    string `json:"name" form:"name" example:"Jane Doe"`
	Email   string `json:"email" form:"email" example:"jane@example.com"`
	ReplyTo string `json:"_replyto,omitempty" form:"_replyto"`
	Phone   string `json:"phone,omitempty" form:"phone" example:"+1 555 0100"`
	Message string `json:"message" form:"message" example:"We'd like a new landing page."`
}

func (r ContactRequest) toForm() domain.SubmissionForm {
	email := r.Email
	if email == "" {
		email = r.ReplyTo
	}
	return domain.SubmissionForm{Name: r.Name, Email: email, Phone: r.Phone, Message: r.Message}
}

type ContactHandler struct {
	contactUC domain.ContactUsecase
	guard     SubmissionGuard
	keyFunc   func(domain.SubmissionForm) string
	audit     *security.SecurityLogger
	provider  string
}

// NewContactHandler registers the contact routes (public, no auth required)
func NewContactHandler(public *gin.RouterGroup, deps RouterDeps, extra ...gin.HandlerFunc) {
	handler := &ContactHandler{
		contactUC: deps.ContactUC,
		guard:     deps.Guard,
		keyFunc:   deps.GuardKey,
		audit:     deps.Audit,
		provider:  deps.Provider,
	}
	if handler.audit == nil {
		handler.audit = security.DefaultLogger()
	}

	public.POST("/contact", append(extra, handler.SubmitContact)...)
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Validate a contact form and forward it to the configured email provider. Public endpoint.
// @Tags         contact
// @Accept       json,x-www-form-urlencoded,mpfd
// @Produce      json
// @Param        contact  body      ContactRequest  true  "Contact Form Data"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Failure      504      {object}  response.Response
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	form := req.toForm()
	ctx := c.Request.Context()
	meta := security.SubmissionMeta{
		Email:     form.Email,
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString(string(domain.KeyRequestID)),
		Provider:  h.provider,
	}

	if res := h.contactUC.Validate(form); !res.Valid {
		h.audit.LogSubmissionRejected(ctx, meta, res.Fields)
		c.Error(apperror.BadRequest(res.Reason).WithDetails(gin.H{"fields": res.Fields}))
		return
	}

	if h.guard != nil && h.keyFunc != nil {
		key := h.keyFunc(form)
		ok, err := h.guard.Acquire(ctx, key)
		if err != nil {
			logger.Log.Warn("Submission guard unavailable", "request_id", meta.RequestID, "error", err)
		} else if !ok {
			h.audit.LogSubmissionDuplicate(ctx, meta)
			c.Error(apperror.Conflict("This message is already being sent."))
			return
		} else {
			defer func() {
				// Release even if the client went away
				if err := h.guard.Release(context.WithoutCancel(ctx), key); err != nil {
					logger.Log.Warn("Failed to release submission guard", "request_id", meta.RequestID, "error", err)
				}
			}()
		}
	}

	status := h.contactUC.Submit(ctx, form)
	if status.Kind == domain.StatusSucceeded {
		h.audit.LogSubmissionAccepted(ctx, meta)
		response.Success(c, http.StatusOK, domain.MsgSent, response.SubmissionData{Status: status.Kind})
		return
	}

	h.audit.LogSubmissionFailed(ctx, meta, string(status.Reason))
	c.Error(statusError(status))
}

// statusError maps a Failed status to the HTTP error the client sees
func statusError(status domain.SubmissionStatus) *apperror.AppError {
	details := response.SubmissionData{Status: status.Kind, Reason: status.Reason}
	switch status.Reason {
	case domain.ReasonValidation:
		return apperror.BadRequest(status.Message).WithDetails(gin.H{"fields": status.Fields})
	case domain.ReasonTimeout:
		return apperror.GatewayTimeout(status.Message, nil).WithDetails(details)
	case domain.ReasonConfiguration:
		return apperror.Unavailable(status.Message, nil).WithDetails(details)
	default:
		return apperror.BadGateway(status.Message, nil).WithDetails(details)
	}
}
