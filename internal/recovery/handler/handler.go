package handler

import (
	"net/http"
	"time"

	"tinko-recovery-backend/internal/auth"
	"tinko-recovery-backend/internal/recovery/repository"
	"tinko-recovery-backend/internal/recovery/service"
	"tinko-recovery-backend/internal/recovery/transport"
	"tinko-recovery-backend/platform/apperr"
	"tinko-recovery-backend/platform/httpkit"
	"tinko-recovery-backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc   *service.Service
	users auth.UserProvider
	val   *validator.Validator
}

func New(svc *service.Service, users auth.UserProvider, val *validator.Validator) *Handler {
	return &Handler{svc: svc, users: users, val: val}
}

// PaymentFailed ingests a gateway failure event. The endpoint is public so
// gateways and merchant SDKs can post without credentials; an optional bearer
// token attaches the transaction to the caller's organization.
func (h *Handler) PaymentFailed(c *gin.Context) {
	var req transport.FailureEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	var occurredAt *time.Time
	if req.OccurredAt != nil && *req.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, *req.OccurredAt)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid occurred_at, use RFC 3339", nil)
			return
		}
		utc := parsed.UTC()
		occurredAt = &utc
	}

	result, err := h.svc.IngestFailureEvent(c.Request.Context(), service.IngestInput{
		TransactionRef: req.TransactionRef,
		AmountCents:    req.AmountCents,
		Currency:       req.Currency,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		Gateway:        req.Gateway,
		FailureReason:  req.FailureReason,
		OccurredAt:     occurredAt,
	}, h.callerOrgID(c), idempotencyKey(c))
	if httpkit.HandleError(c, err) {
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	httpkit.JSON(c, status, toFailureEventResponse(result.Event, result.TransactionRef, string(result.Classification.Hardness)))
}

// ListEventsByRef returns failure events for a transaction reference. An
// unknown reference yields an empty list.
func (h *Handler) ListEventsByRef(c *gin.Context) {
	events, err := h.svc.ListEventsByRef(c.Request.Context(), c.Param("ref"))
	if httpkit.HandleError(c, err) {
		return
	}

	ref := c.Param("ref")
	items := make([]transport.FailureEventResponse, 0, len(events))
	for _, fe := range events {
		items = append(items, toFailureEventResponse(fe, ref, ""))
	}
	httpkit.OK(c, items)
}

// Classify exposes the failure classifier for merchant tooling.
func (h *Handler) Classify(c *gin.Context) {
	var req transport.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	httpkit.OK(c, gin.H{
		"ok":   true,
		"data": service.ClassifyEvent(req.Code, req.Message),
	})
}

// CreateLink issues a recovery link for a failed transaction.
func (h *Handler) CreateLink(c *gin.Context) {
	var req transport.CreateLinkRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
			return
		}
	}

	link, err := h.svc.CreateLink(c.Request.Context(), c.Param("ref"), req.Channel, time.Duration(req.TTLHours)*time.Hour)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.RecoveryLinkResponse{
		AttemptID:     link.Attempt.ID.String(),
		TransactionID: link.Attempt.TransactionID.String(),
		Token:         link.Attempt.Token,
		URL:           link.URL,
		ExpiresAt:     link.Attempt.ExpiresAt,
	})
}

// ListAttemptsByRef returns the recovery attempts for a transaction reference.
func (h *Handler) ListAttemptsByRef(c *gin.Context) {
	attempts, err := h.svc.ListAttemptsByRef(c.Request.Context(), c.Param("ref"))
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.RecoveryAttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		items = append(items, toAttemptResponse(attempt, h.svc.LinkURL(attempt.Token)))
	}
	httpkit.OK(c, items)
}

// GetByToken resolves a recovery token into the public envelope shape.
func (h *Handler) GetByToken(c *gin.Context) {
	resolution, err := h.svc.ResolveToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "token resolution failed", nil)
		return
	}

	switch resolution.State {
	case service.TokenNotFound:
		httpkit.OK(c, notFoundEnvelope())
	case service.TokenExpired:
		httpkit.OK(c, transport.Envelope{
			OK:    false,
			Data:  gin.H{"status": "expired"},
			Error: &transport.EnvelopeError{Code: "EXPIRED", Message: "Link has expired"},
		})
	case service.TokenUsed:
		httpkit.OK(c, transport.Envelope{
			OK:    false,
			Data:  gin.H{"status": "used"},
			Error: &transport.EnvelopeError{Code: "USED", Message: "Link already used"},
		})
	default:
		httpkit.OK(c, transport.Envelope{
			OK: true,
			Data: gin.H{
				"transaction_ref": resolution.Attempt.TransactionRef,
				"status":          resolution.Attempt.Status,
				"attempt_id":      resolution.Attempt.ID.String(),
			},
		})
	}
}

// MarkOpen records that the customer opened the link. Idempotent.
func (h *Handler) MarkOpen(c *gin.Context) {
	resolution, err := h.svc.MarkOpened(c.Request.Context(), c.Param("token"))
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "mark open failed", nil)
		return
	}
	if resolution.State == service.TokenNotFound {
		httpkit.OK(c, notFoundEnvelope())
		return
	}

	httpkit.OK(c, transport.Envelope{
		OK: true,
		Data: gin.H{
			"status":    resolution.Attempt.Status,
			"opened_at": resolution.Attempt.OpenedAt,
		},
	})
}

// MarkUsed consumes the link after a completed payment retry.
func (h *Handler) MarkUsed(c *gin.Context) {
	resolution, err := h.svc.MarkUsed(c.Request.Context(), c.Param("token"))
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "mark used failed", nil)
		return
	}

	switch resolution.State {
	case service.TokenNotFound:
		httpkit.OK(c, notFoundEnvelope())
	case service.TokenExpired:
		httpkit.OK(c, transport.Envelope{
			OK:    false,
			Data:  gin.H{"status": "expired"},
			Error: &transport.EnvelopeError{Code: "EXPIRED", Message: "Link has expired"},
		})
	default:
		httpkit.OK(c, transport.Envelope{
			OK: true,
			Data: gin.H{
				"status":  resolution.Attempt.Status,
				"used_at": resolution.Attempt.UsedAt,
			},
		})
	}
}

// RetryPage serves the hosted payment retry page.
func (h *Handler) RetryPage(c *gin.Context) {
	data, err := h.svc.PageData(c.Request.Context(), c.Param("token"))
	if err != nil {
		status := http.StatusNotFound
		message := "Invalid or Expired Link"
		if apperr.Is(err, apperr.KindGone) {
			status = http.StatusGone
		} else if !apperr.Is(err, apperr.KindNotFound) {
			status = http.StatusInternalServerError
			message = "Something went wrong"
		}
		c.HTML(status, "retry_error.html.tmpl", gin.H{"Message": message})
		return
	}

	c.HTML(http.StatusOK, "retry.html.tmpl", data)
}

// callerOrgID resolves the organization of an optionally authenticated
// caller. Anonymous ingest gets nil.
func (h *Handler) callerOrgID(c *gin.Context) *uuid.UUID {
	identity := httpkit.GetIdentity(c)
	if !identity.IsAuthenticated() {
		return nil
	}
	profile, err := h.users.GetUserByID(c.Request.Context(), identity.UserID())
	if err != nil {
		return nil
	}
	return profile.OrganizationID
}

func idempotencyKey(c *gin.Context) *string {
	key := c.GetHeader("Idempotency-Key")
	if key == "" {
		return nil
	}
	return &key
}

func notFoundEnvelope() transport.Envelope {
	return transport.Envelope{
		OK:    false,
		Data:  nil,
		Error: &transport.EnvelopeError{Code: "NOT_FOUND", Message: "Invalid or unknown link"},
	}
}

func toFailureEventResponse(fe repository.FailureEvent, ref, hardness string) transport.FailureEventResponse {
	return transport.FailureEventResponse{
		ID:             fe.ID.String(),
		TransactionID:  fe.TransactionID.String(),
		TransactionRef: ref,
		Gateway:        fe.Gateway,
		Reason:         fe.Reason,
		Category:       fe.Category,
		Hardness:       hardness,
		OccurredAt:     fe.OccurredAt,
		CreatedAt:      fe.CreatedAt,
	}
}

func toAttemptResponse(a repository.RecoveryAttempt, url string) transport.RecoveryAttemptResponse {
	return transport.RecoveryAttemptResponse{
		AttemptID:   a.ID.String(),
		Channel:     a.Channel,
		Token:       a.Token,
		Status:      a.Status,
		URL:         url,
		ExpiresAt:   a.ExpiresAt,
		OpenedAt:    a.OpenedAt,
		UsedAt:      a.UsedAt,
		RetryCount:  a.RetryCount,
		MaxRetries:  a.MaxRetries,
		NextRetryAt: a.NextRetryAt,
		CreatedAt:   a.CreatedAt,
	}
}
