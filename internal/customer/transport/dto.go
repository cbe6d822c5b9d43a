// Package transport defines request and response DTOs for the customer HTTP API.
package transport

import "time"

// OnboardingRequest is the body for POST /v1/customer/onboarding.
type OnboardingRequest struct {
	BusinessName   string  `json:"business_name" binding:"required,min=1,max=200"`
	Website        *string `json:"website" binding:"omitempty,url,max=500"`
	PaymentGateway *string `json:"payment_gateway" binding:"omitempty,max=100"`
	MonthlyVolume  *string `json:"monthly_volume" binding:"omitempty,max=100"`
	Phone          *string `json:"phone" binding:"omitempty,max=32"`
}

// ProfileUpdateRequest is the body for PATCH /v1/customer/profile.
// All fields are optional; absent fields are left unchanged.
type ProfileUpdateRequest struct {
	FullName      *string `json:"full_name" binding:"omitempty,min=1,max=200"`
	Phone         *string `json:"phone" binding:"omitempty,max=32"`
	Website       *string `json:"website" binding:"omitempty,url,max=500"`
	MonthlyVolume *string `json:"monthly_volume" binding:"omitempty,max=100"`
}

// OrganizationResponse describes the caller's organization.
type OrganizationResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Slug           string  `json:"slug"`
	IsActive       bool    `json:"is_active"`
	Website        *string `json:"website,omitempty"`
	PaymentGateway *string `json:"payment_gateway,omitempty"`
	MonthlyVolume  *string `json:"monthly_volume,omitempty"`
}

// CustomerProfileResponse merges account and organization details.
type CustomerProfileResponse struct {
	ID           string               `json:"id"`
	Email        string               `json:"email"`
	FullName     *string              `json:"full_name,omitempty"`
	Phone        *string              `json:"phone,omitempty"`
	Role         string               `json:"role"`
	Organization OrganizationResponse `json:"organization"`
	CreatedAt    time.Time            `json:"created_at"`
}

// StatsResponse holds aggregate counts for the organization dashboard.
type StatsResponse struct {
	TotalTransactions int64 `json:"total_transactions"`
	TotalActiveUsers  int64 `json:"total_active_users"`
}

// CreateTransactionRequest registers a transaction for later recovery.
type CreateTransactionRequest struct {
	TransactionRef string  `json:"transaction_ref" binding:"required,min=1,max=128"`
	AmountCents    int64   `json:"amount_cents" binding:"required,gt=0"`
	Currency       string  `json:"currency" binding:"required,len=3"`
	CustomerEmail  *string `json:"customer_email" binding:"omitempty,email"`
	CustomerPhone  *string `json:"customer_phone" binding:"omitempty,max=32"`
}

// TransactionResponse describes a registered transaction.
type TransactionResponse struct {
	ID             string    `json:"id"`
	TransactionRef string    `json:"transaction_ref"`
	AmountCents    *int64    `json:"amount_cents,omitempty"`
	Currency       *string   `json:"currency,omitempty"`
	CustomerEmail  *string   `json:"customer_email,omitempty"`
	CustomerPhone  *string   `json:"customer_phone,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TransactionListResponse wraps a page of transactions.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}
