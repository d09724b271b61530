package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/dtroode/currencyguard-server/internal/api/http/middleware"
	"github.com/dtroode/currencyguard-server/internal/apierror"
	"github.com/dtroode/currencyguard-server/internal/logger"
	"github.com/dtroode/currencyguard-server/internal/model"
)

// maxAuthBodyBytes bounds register and login request bodies.
const maxAuthBodyBytes = 64 << 10

// AuthService defines user registration and login operations.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (uuid.UUID, error)
	Login(ctx context.Context, email, password string) (model.Session, error)
}

// Auth handles registration and login.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{authService: authService, logger: logger}
}

// Register creates an account.
// POST /auth/register
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	userID, err := h.authService.Register(r.Context(), model.RegisterParams{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Warn("Auth handler: registration failed",
			"email", req.Email,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.logger.Debug("Auth handler: registration completed",
		"user_id", userID)

	middleware.WriteJSON(w, http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

// Login issues a session token.
// POST /auth/login
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("Auth handler: login failed",
			"email", req.Email,
			"error", err.Error())
		handleError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, loginResponse{
		Token: session.Token,
		User: userResponse{
			ID:       session.User.ID,
			FullName: session.User.FullName,
			Email:    session.User.Email,
		},
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAuthBodyBytes))
	if err := decoder.Decode(v); err != nil {
		return apierror.NewErrValidation("request body must be a JSON object")
	}
	return nil
}
