// Package service implements customer onboarding, profile and transaction
// business logic.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tinko-recovery-backend/internal/auth"
	"tinko-recovery-backend/internal/customer/repository"
	"tinko-recovery-backend/internal/events"
	"tinko-recovery-backend/platform/apperr"
	"tinko-recovery-backend/platform/logger"
	"tinko-recovery-backend/platform/phone"
)

// maxSlugAttempts bounds the suffix retry loop when resolving a unique slug.
const maxSlugAttempts = 100

type Service struct {
	repo  *repository.Repository
	users auth.UserProvider
	bus   events.Bus
	log   *logger.Logger
}

func NewService(repo *repository.Repository, users auth.UserProvider, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, users: users, bus: bus, log: log}
}

// OnboardingInput carries the business details captured on the onboarding form.
type OnboardingInput struct {
	BusinessName   string
	Website        *string
	PaymentGateway *string
	MonthlyVolume  *string
	Phone          *string
}

// CustomerProfile merges the user's account with their organization.
type CustomerProfile struct {
	User         auth.Profile
	Organization repository.Organization
}

// Onboard provisions an organization for the user and links the user to it.
// The organization slug is derived from the business name; when the slug is
// already taken the next numeric suffix is tried until one fits.
func (s *Service) Onboard(ctx context.Context, userID uuid.UUID, input OnboardingInput) (CustomerProfile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return CustomerProfile{}, err
	}
	if user.OrganizationID != nil {
		return CustomerProfile{}, apperr.Conflict("onboarding already completed")
	}

	var normalizedPhone *string
	if input.Phone != nil && *input.Phone != "" {
		p := phone.NormalizeE164(*input.Phone)
		normalizedPhone = &p
	}

	base := Slugify(input.BusinessName)
	suffix, err := s.firstFreeSuffix(ctx, base)
	if err != nil {
		return CustomerProfile{}, err
	}

	var org repository.Organization
	for attempt := suffix; attempt < suffix+maxSlugAttempts; attempt++ {
		org, err = s.createOrganization(ctx, userID, input, suffixedSlug(base, attempt), normalizedPhone)
		if errors.Is(err, repository.ErrSlugTaken) {
			// Lost the race to a concurrent onboarding; try the next suffix.
			continue
		}
		if err != nil {
			s.log.DatabaseError("customer.onboard", err)
			return CustomerProfile{}, err
		}
		break
	}
	if errors.Is(err, repository.ErrSlugTaken) {
		return CustomerProfile{}, apperr.Internal("could not allocate organization slug")
	}

	user, err = s.users.GetUserByID(ctx, userID)
	if err != nil {
		return CustomerProfile{}, err
	}

	s.log.Info("organization_onboarded",
		"organization_id", org.ID.String(),
		"slug", org.Slug,
		"user_id", userID.String(),
	)
	s.bus.Publish(ctx, events.OrganizationOnboarded{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: org.ID,
		Slug:           org.Slug,
		UserID:         userID,
	})

	return CustomerProfile{User: user, Organization: org}, nil
}

// firstFreeSuffix probes for the lowest suffix whose slug is not taken yet.
// The probe is advisory; the insert still races under the unique constraint.
func (s *Service) firstFreeSuffix(ctx context.Context, base string) (int, error) {
	for n := 0; n < maxSlugAttempts; n++ {
		exists, err := s.repo.SlugExists(ctx, suffixedSlug(base, n))
		if err != nil {
			return 0, err
		}
		if !exists {
			return n, nil
		}
	}
	return 0, apperr.Internal(fmt.Sprintf("no free slug for %q", base))
}

// createOrganization inserts the organization and links the user inside one
// transaction so a failed link never leaves an orphaned organization.
func (s *Service) createOrganization(ctx context.Context, userID uuid.UUID, input OnboardingInput, slug string, normalizedPhone *string) (repository.Organization, error) {
	tx, err := s.repo.Pool().Begin(ctx)
	if err != nil {
		return repository.Organization{}, err
	}
	defer tx.Rollback(ctx)

	org, err := s.repo.CreateOrganization(ctx, tx, input.BusinessName, slug, input.Website, input.PaymentGateway, input.MonthlyVolume)
	if err != nil {
		return repository.Organization{}, err
	}
	if err := s.repo.LinkUserToOrganization(ctx, tx, userID, org.ID, normalizedPhone); err != nil {
		return repository.Organization{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return repository.Organization{}, err
	}
	return org, nil
}

// GetProfile returns the merged customer profile. Users who have not completed
// onboarding have no organization yet and get a not-found error.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (CustomerProfile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return CustomerProfile{}, err
	}
	if user.OrganizationID == nil {
		return CustomerProfile{}, apperr.NotFound("profile not found")
	}
	org, err := s.repo.GetOrganization(ctx, *user.OrganizationID)
	if errors.Is(err, repository.ErrNotFound) {
		return CustomerProfile{}, apperr.NotFound("profile not found")
	}
	if err != nil {
		return CustomerProfile{}, err
	}
	return CustomerProfile{User: user, Organization: org}, nil
}

// ProfileUpdateInput holds the optional fields a customer may patch.
type ProfileUpdateInput struct {
	FullName      *string
	Phone         *string
	Website       *string
	MonthlyVolume *string
}

// UpdateProfile patches user and organization fields. Nil fields are left
// untouched.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileUpdateInput) (CustomerProfile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return CustomerProfile{}, err
	}
	if user.OrganizationID == nil {
		return CustomerProfile{}, apperr.NotFound("profile not found")
	}

	var normalizedPhone *string
	if input.Phone != nil && *input.Phone != "" {
		p := phone.NormalizeE164(*input.Phone)
		normalizedPhone = &p
	}

	if input.FullName != nil || normalizedPhone != nil {
		if err := s.repo.UpdateUserProfile(ctx, userID, input.FullName, normalizedPhone); err != nil {
			return CustomerProfile{}, err
		}
	}
	if input.Website != nil || input.MonthlyVolume != nil {
		if _, err := s.repo.UpdateOrganizationProfile(ctx, *user.OrganizationID, input.Website, input.MonthlyVolume); err != nil {
			return CustomerProfile{}, err
		}
	}
	return s.GetProfile(ctx, userID)
}

// GetStats returns aggregate counts for the caller's organization.
func (s *Service) GetStats(ctx context.Context, userID uuid.UUID) (repository.OrganizationStats, error) {
	orgID, err := s.requireOrganization(ctx, userID)
	if err != nil {
		return repository.OrganizationStats{}, err
	}
	return s.repo.GetOrganizationStats(ctx, orgID)
}

// TransactionInput describes a transaction registered by the merchant.
type TransactionInput struct {
	TransactionRef string
	AmountCents    int64
	Currency       string
	CustomerEmail  *string
	CustomerPhone  *string
}

func (s *Service) CreateTransaction(ctx context.Context, userID uuid.UUID, input TransactionInput) (repository.Transaction, error) {
	orgID, err := s.requireOrganization(ctx, userID)
	if err != nil {
		return repository.Transaction{}, err
	}

	var normalizedPhone *string
	if input.CustomerPhone != nil && *input.CustomerPhone != "" {
		p := phone.NormalizeE164(*input.CustomerPhone)
		normalizedPhone = &p
	}

	txn, err := s.repo.CreateTransaction(ctx, orgID, input.TransactionRef, input.AmountCents, input.Currency, input.CustomerEmail, normalizedPhone)
	if errors.Is(err, repository.ErrDuplicateRef) {
		return repository.Transaction{}, apperr.Conflict("transaction ref already registered")
	}
	if err != nil {
		s.log.DatabaseError("customer.create_transaction", err)
		return repository.Transaction{}, err
	}
	return txn, nil
}

func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]repository.Transaction, error) {
	orgID, err := s.requireOrganization(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListTransactions(ctx, orgID, limit, offset)
}

func (s *Service) GetTransactionByRef(ctx context.Context, userID uuid.UUID, ref string) (repository.Transaction, error) {
	orgID, err := s.requireOrganization(ctx, userID)
	if err != nil {
		return repository.Transaction{}, err
	}
	txn, err := s.repo.GetTransactionByRef(ctx, orgID, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Transaction{}, apperr.NotFound("transaction not found")
	}
	return txn, err
}

func (s *Service) requireOrganization(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	if user.OrganizationID == nil {
		return uuid.Nil, apperr.NotFound("profile not found")
	}
	return *user.OrganizationID, nil
}
