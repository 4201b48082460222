package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"convoke/internal/domain"
)

const activationExpiryHours = 48

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type userService struct {
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenVerifier  domain.TokenVerifier
	tokenExpiry    time.Duration
	emailService   domain.EmailService
	activationBase string
	clock          domain.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewUserService creates a UserService with the given repository and auth ports.
// activationBase is the public URL prefix the activation token is appended to.
func NewUserService(
	userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenVerifier domain.TokenVerifier,
	tokenExpiry time.Duration,
	emailService domain.EmailService,
	activationBase string,
	clock domain.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		tokenVerifier:  tokenVerifier,
		tokenExpiry:    tokenExpiry,
		emailService:   emailService,
		activationBase: activationBase,
		clock:          clock,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *userService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, domain.NewError(domain.KindPolicyViolation, "Invalid email format")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewError(domain.KindPolicyViolation, "Name is required")
	}
	if len(password) < 8 {
		return nil, domain.NewError(domain.KindPolicyViolation, "Password must be at least 8 characters")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.NewError(domain.KindConflict, "Email already in use")
	} else if !notFound(err) {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.NewUser(email, name, hash, salt, s.clock.Now())
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokenIssuer.Issue(user.ID, user.Email, domain.TokenPurposeActivate, activationExpiryHours*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("issue activation token: %w", err)
	}
	data := &domain.ActivationEmailData{
		Email:          user.Email,
		Name:           user.Name,
		ActivationURL:  s.activationBase + token,
		ExpiresInHours: activationExpiryHours,
	}
	if err := s.emailService.SendAccountActivation(ctx, data); err != nil {
		// The account exists; activation can be re-requested later.
		s.logger.WarnContext(ctx, "activation email failed", "email", user.Email, "err", err)
	}
	return user, nil
}

func (s *userService) Activate(ctx context.Context, token string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	userID, err := s.tokenVerifier.Verify(token, domain.TokenPurposeActivate)
	if err != nil {
		return nil, domain.NewError(domain.KindInvalidTransition, "Activation link is invalid or expired")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if notFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.Active {
		return user, nil
	}
	now := s.clock.Now()
	if err := s.userRepo.SetActive(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("activate user: %w", err)
	}
	user.Active = true
	user.UpdatedAt = now
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if notFound(err) {
			return "", nil, domain.NewError(domain.KindForbidden, "Invalid credentials")
		}
		return "", nil, fmt.Errorf("get user by email: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.PasswordSalt, password); err != nil {
		return "", nil, domain.NewError(domain.KindForbidden, "Invalid credentials")
	}
	if !user.Active {
		return "", nil, domain.NewError(domain.KindForbidden, "Account is not activated")
	}
	token, err := s.tokenIssuer.Issue(user.ID, user.Email, domain.TokenPurposeSession, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue session token: %w", err)
	}
	return token, user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
