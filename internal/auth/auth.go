// Package auth provides authentication and authorization functionality.
// This file defines the public API of the auth bounded context.
// Only types and interfaces defined here should be imported by other domains.
//
// The definitions live in the authapi leaf package and are re-exported here
// as aliases so that auth subpackages can use them without importing this
// package (which also imports them, and would otherwise form a cycle).
package auth

import "tinko-recovery-backend/internal/auth/authapi"

// Profile represents user information that can be shared with other domains.
type Profile = authapi.Profile

// UserProvider is an interface that other domains can use to get user information.
// This abstracts authentication details from other bounded contexts.
type UserProvider = authapi.UserProvider
