package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/currencyguard-server/internal/apierror"
	"github.com/dtroode/currencyguard-server/internal/logger"
	"github.com/dtroode/currencyguard-server/internal/model"
	"github.com/dtroode/currencyguard-server/internal/password"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

type Auth struct {
	userStore    model.UserStore
	hasher       *password.Hasher
	tokenService *TokenService
	logger       *logger.Logger
	now          func() time.Time
}

func NewAuth(
	userStore model.UserStore,
	hasher *password.Hasher,
	tokenService *TokenService,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		hasher:       hasher,
		tokenService: tokenService,
		logger:       logger,
		now:          time.Now,
	}
}

// Register creates a new account and returns its ID.
func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (uuid.UUID, error) {
	params.FullName = strings.TrimSpace(params.FullName)
	params.Email = strings.TrimSpace(params.Email)

	a.logger.Debug("Auth service: starting user registration",
		"email", params.Email)

	// A used email is a conflict whatever the other fields hold.
	if params.Email != "" {
		existingUser, err := a.userStore.GetByEmail(ctx, params.Email)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			a.logger.Error("Auth service: failed to get user by email",
				"email", params.Email,
				"error", err.Error())
			return uuid.Nil, fmt.Errorf("failed to get user by email: %w", err)
		}

		if existingUser.ID != uuid.Nil {
			a.logger.Info("Auth service: user already exists",
				"email", params.Email)
			return uuid.Nil, apierror.NewErrEmailIsTaken(params.Email)
		}
	}

	if err := validateRegistration(params); err != nil {
		a.logger.Info("Auth service: registration rejected",
			"email", params.Email,
			"reason", err.Error())
		return uuid.Nil, err
	}

	hash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return uuid.Nil, err
	}

	now := a.now()
	user := model.User{
		ID:           uuid.New(),
		FullName:     params.FullName,
		Email:        params.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := a.userStore.Create(ctx, user)
	if errors.Is(err, model.ErrEmailTaken) {
		a.logger.Info("Auth service: user created concurrently",
			"email", params.Email)
		return uuid.Nil, apierror.NewErrEmailIsTaken(params.Email)
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", params.Email,
			"error", err.Error())
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user registration completed successfully",
		"email", params.Email,
		"user_id", created.ID)

	return created.ID, nil
}

// Login checks credentials and issues a session token.
func (a *Auth) Login(ctx context.Context, email, plain string) (model.Session, error) {
	email = strings.TrimSpace(email)

	a.logger.Debug("Auth service: starting user login",
		"email", email)

	if email == "" || plain == "" {
		return model.Session{}, apierror.NewErrValidation("email and password are required")
	}

	user, err := a.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		_ = a.hasher.CompareDummy(plain)
		a.logger.Info("Auth service: login failed",
			"email", email)
		return model.Session{}, apierror.NewErrInvalidCredentials()
	}
	if err != nil {
		return model.Session{}, err
	}

	if !a.VerifyPassword(user, plain) {
		a.logger.Info("Auth service: login failed",
			"email", email)
		return model.Session{}, apierror.NewErrInvalidCredentials()
	}

	token, err := a.tokenService.Issue(ctx, user.ID)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: login completed successfully",
		"user_id", user.ID)

	return model.Session{Token: token, User: user}, nil
}

// FindByEmail returns the user with the given email or model.ErrNotFound.
func (a *Auth) FindByEmail(ctx context.Context, email string) (model.User, error) {
	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.ErrNotFound
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by email",
			"email", email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// VerifyPassword reports whether plain matches the user's stored hash.
func (a *Auth) VerifyPassword(user model.User, plain string) bool {
	err := a.hasher.Compare(user.PasswordHash, plain)
	if err != nil && !errors.Is(err, password.ErrMismatch) {
		a.logger.Warn("Auth service: stored password hash is unusable",
			"user_id", user.ID,
			"error", err.Error())
	}
	return err == nil
}

func validateRegistration(params model.RegisterParams) error {
	if params.FullName == "" || params.Email == "" || params.Password == "" {
		return apierror.NewErrValidation("full name, email and password are required")
	}
	addr, err := mail.ParseAddress(params.Email)
	if err != nil || addr.Address != params.Email {
		return apierror.NewErrValidation("email is not a valid address")
	}
	if len([]rune(params.Password)) < MinPasswordLength {
		return apierror.NewErrValidation(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}
