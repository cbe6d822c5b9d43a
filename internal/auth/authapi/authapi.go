// Package authapi holds the shared types of the auth bounded context.
// It exists as a leaf package so that auth subpackages (handler, service)
// can reference these types without importing the parent auth package,
// which would create an import cycle. The parent package re-exports them
// via type aliases, so other domains keep using auth.Profile and
// auth.UserProvider.
package authapi

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Profile represents user information that can be shared with other domains.
type Profile struct {
	ID             uuid.UUID
	Email          string
	FullName       *string
	Phone          *string
	Role           string
	OrganizationID *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserProvider is an interface that other domains can use to get user information.
// This abstracts authentication details from other bounded contexts.
type UserProvider interface {
	// GetUserByID returns basic user information needed by other domains.
	GetUserByID(ctx context.Context, userID uuid.UUID) (Profile, error)
}
