package handler

import (
	"net/http"
	"strconv"

	"tinko-recovery-backend/internal/customer/repository"
	"tinko-recovery-backend/internal/customer/service"
	"tinko-recovery-backend/internal/customer/transport"
	"tinko-recovery-backend/platform/httpkit"
	"tinko-recovery-backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/customer/onboarding", h.Onboard)
	rg.GET("/customer/profile", h.GetProfile)
	rg.PATCH("/customer/profile", h.UpdateProfile)
	rg.GET("/customer/organization/stats", h.GetStats)
	rg.POST("/customer/transactions", h.CreateTransaction)
	rg.GET("/customer/transactions", h.ListTransactions)
	rg.GET("/customer/transactions/:ref", h.GetTransaction)
}

func (h *Handler) Onboard(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	profile, err := h.svc.Onboard(c.Request.Context(), identity.UserID(), service.OnboardingInput{
		BusinessName:   req.BusinessName,
		Website:        req.Website,
		PaymentGateway: req.PaymentGateway,
		MonthlyVolume:  req.MonthlyVolume,
		Phone:          req.Phone,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, toProfileResponse(profile))
}

func (h *Handler) GetProfile(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	profile, err := h.svc.GetProfile(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toProfileResponse(profile))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	profile, err := h.svc.UpdateProfile(c.Request.Context(), identity.UserID(), service.ProfileUpdateInput{
		FullName:      req.FullName,
		Phone:         req.Phone,
		Website:       req.Website,
		MonthlyVolume: req.MonthlyVolume,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toProfileResponse(profile))
}

func (h *Handler) GetStats(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	stats, err := h.svc.GetStats(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.StatsResponse{
		TotalTransactions: stats.TotalTransactions,
		TotalActiveUsers:  stats.TotalActiveUsers,
	})
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	txn, err := h.svc.CreateTransaction(c.Request.Context(), identity.UserID(), service.TransactionInput{
		TransactionRef: req.TransactionRef,
		AmountCents:    req.AmountCents,
		Currency:       req.Currency,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, toTransactionResponse(txn))
}

func (h *Handler) ListTransactions(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	transactions, err := h.svc.ListTransactions(c.Request.Context(), identity.UserID(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.TransactionResponse, 0, len(transactions))
	for _, txn := range transactions {
		items = append(items, toTransactionResponse(txn))
	}
	httpkit.OK(c, transport.TransactionListResponse{
		Transactions: items,
		Limit:        limit,
		Offset:       offset,
	})
}

func (h *Handler) GetTransaction(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	txn, err := h.svc.GetTransactionByRef(c.Request.Context(), identity.UserID(), c.Param("ref"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toTransactionResponse(txn))
}

func toProfileResponse(profile service.CustomerProfile) transport.CustomerProfileResponse {
	return transport.CustomerProfileResponse{
		ID:       profile.User.ID.String(),
		Email:    profile.User.Email,
		FullName: profile.User.FullName,
		Phone:    profile.User.Phone,
		Role:     profile.User.Role,
		Organization: transport.OrganizationResponse{
			ID:             profile.Organization.ID.String(),
			Name:           profile.Organization.Name,
			Slug:           profile.Organization.Slug,
			IsActive:       profile.Organization.IsActive,
			Website:        profile.Organization.Website,
			PaymentGateway: profile.Organization.PaymentGateway,
			MonthlyVolume:  profile.Organization.MonthlyVolume,
		},
		CreatedAt: profile.User.CreatedAt,
	}
}

func toTransactionResponse(txn repository.Transaction) transport.TransactionResponse {
	return transport.TransactionResponse{
		ID:             txn.ID.String(),
		TransactionRef: txn.TransactionRef,
		AmountCents:    txn.AmountCents,
		Currency:       txn.Currency,
		CustomerEmail:  txn.CustomerEmail,
		CustomerPhone:  txn.CustomerPhone,
		CreatedAt:      txn.CreatedAt,
	}
}
