package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"horizon/internal/infrastructure/appwrite"
	"horizon/internal/infrastructure/dwolla"
)

// ErrNoSession is returned when the caller has no valid session, either
// because no session cookie was presented or the secret has expired.
var ErrNoSession = errors.New("user: no session")

// ErrInvalidCredentials is returned when sign-in credentials are rejected.
var ErrInvalidCredentials = errors.New("user: invalid credentials")

// SessionClientFactory builds a session-scoped identity client for one
// request's session secret.
type SessionClientFactory func(sessionSecret string) appwrite.SessionInterface

// Service handles user registration, authentication and directory lookups.
type Service struct {
	identity appwrite.AdminInterface
	sessions SessionClientFactory
	rail     dwolla.ClientInterface
	repo     Repository
}

func NewService(identity appwrite.AdminInterface, sessions SessionClientFactory, rail dwolla.ClientInterface, repo Repository) *Service {
	return &Service{
		identity: identity,
		sessions: sessions,
		rail:     rail,
		repo:     repo,
	}
}

// SignUp registers a new user end to end: identity account, payment-rail
// customer, directory record, then a session for the fresh account. Steps
// run in order and the first failure aborts the rest, so a user whose
// payment-rail enrollment fails never gets a directory record.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (*User, *appwrite.Session, error) {
	fullName := params.FirstName + " " + params.LastName

	account, err := s.identity.CreateAccount(ctx, uuid.NewString(), params.Email, params.Password, fullName)
	if err != nil {
		return nil, nil, fmt.Errorf("sign-up: create identity account: %w", err)
	}

	customerURL, err := s.rail.CreateCustomer(ctx, dwolla.CreateCustomerParams{
		FirstName:   params.FirstName,
		LastName:    params.LastName,
		Email:       params.Email,
		Type:        "personal",
		Address1:    params.Address1,
		City:        params.City,
		State:       params.State,
		PostalCode:  params.PostalCode,
		DateOfBirth: params.DateOfBirth,
		SSN:         params.SSN,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("sign-up: create payment customer: %w", err)
	}

	created, err := s.repo.Create(ctx, CreateUserParams{
		IdentityID:        account.ID,
		Email:             params.Email,
		FirstName:         params.FirstName,
		LastName:          params.LastName,
		Address1:          params.Address1,
		City:              params.City,
		State:             params.State,
		PostalCode:        params.PostalCode,
		DateOfBirth:       params.DateOfBirth,
		SSN:               params.SSN,
		DwollaCustomerID:  dwolla.CustomerIDFromURL(customerURL),
		DwollaCustomerURL: customerURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("sign-up: create directory record: %w", err)
	}

	session, err := s.identity.CreateEmailSession(ctx, params.Email, params.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("sign-up: create session: %w", err)
	}

	return created, session, nil
}

// SignIn exchanges credentials for a session and resolves the directory
// record behind it.
func (s *Service) SignIn(ctx context.Context, email, password string) (*User, *appwrite.Session, error) {
	session, err := s.identity.CreateEmailSession(ctx, email, password)
	if err != nil {
		if errors.Is(err, appwrite.ErrUnauthorized) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("sign-in: create session: %w", err)
	}

	u, err := s.repo.GetByIdentityID(ctx, session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("sign-in: resolve directory record: %w", err)
	}

	return u, session, nil
}

// CurrentUser resolves the directory record for the session secret presented
// by the caller. An absent or rejected secret yields ErrNoSession, which
// callers treat as anonymity rather than failure.
func (s *Service) CurrentUser(ctx context.Context, sessionSecret string) (*User, error) {
	if sessionSecret == "" {
		return nil, ErrNoSession
	}

	account, err := s.sessions(sessionSecret).GetAccount(ctx)
	if err != nil {
		if errors.Is(err, appwrite.ErrUnauthorized) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to resolve session account: %w", err)
	}

	return s.repo.GetByIdentityID(ctx, account.ID)
}

// Logout invalidates the caller's session server-side.
func (s *Service) Logout(ctx context.Context, sessionSecret string) error {
	if sessionSecret == "" {
		return ErrNoSession
	}

	if err := s.sessions(sessionSecret).DeleteCurrentSession(ctx); err != nil {
		if errors.Is(err, appwrite.ErrUnauthorized) {
			return ErrNoSession
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// GetUserInfo fetches a directory record by identity account id.
func (s *Service) GetUserInfo(ctx context.Context, identityID string) (*User, error) {
	return s.repo.GetByIdentityID(ctx, identityID)
}
