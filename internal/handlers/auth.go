package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/carelink/apiserver/internal/services"
	"github.com/carelink/apiserver/internal/store"
	"github.com/carelink/apiserver/internal/token"
	"github.com/go-chi/chi/v5"
)

const (
	msgRegistrationFailed = "Registration failed. Please try again."
	msgLoginFailed        = "Login failed. Please try again."
	msgInvalidRequest     = "invalid request"
	msgUnauthorized       = "unauthorized"
	msgBadRefreshToken    = "Invalid or expired refresh token"
	msgInvalidCredentials = "Invalid email or password"
)

// AuthHandler provides the registration, login, token refresh, and
// doctor directory endpoints.
type AuthHandler struct {
	accounts *services.AccountService
	tokens   *token.Service
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(accounts *services.AccountService, tokens *token.Service) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, accounts *services.AccountService, tokens *token.Service) {
	handler := NewAuthHandler(accounts, tokens)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/refresh", handler.Refresh)
	r.Get("/doctors", handler.ListDoctors)
	r.With(handler.RequireAuth).Get("/me", handler.Me)
}

// RequireAuth enforces bearer-token authentication and injects the
// token subject into the request context.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		claims, err := h.tokens.VerifyAccess(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), contextSubjectKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthResponse is the success payload shared by registration and login.
// User holds the role-specific profile representation, never a bare
// account record.
type AuthResponse struct {
	User   any        `json:"user"`
	Tokens token.Pair `json:"tokens"`
}

// Register creates a new account with its role profile and returns the
// profile representation plus a token pair.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	profile, pair, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		var validation *services.ValidationError
		var notCreated *services.ProfileNotCreatedError
		switch {
		case errors.As(err, &validation):
			writeJSON(w, http.StatusBadRequest, validation.Fields)
		case errors.As(err, &notCreated):
			writeError(w, http.StatusInternalServerError, notCreated.Error())
		default:
			writeError(w, http.StatusInternalServerError, msgRegistrationFailed)
		}
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{User: profile, Tokens: pair})
}

// Login verifies credentials and returns the same payload shape as
// registration.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	profile, pair, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		var validation *services.ValidationError
		var notFound *services.ProfileNotFoundError
		switch {
		case errors.As(err, &validation):
			writeJSON(w, http.StatusBadRequest, validation.Fields)
		case errors.Is(err, services.ErrInvalidCredentials):
			writeJSON(w, http.StatusBadRequest, services.FieldErrors{
				"non_field_errors": {msgInvalidCredentials},
			})
		case errors.As(err, &notFound):
			writeError(w, http.StatusNotFound, notFound.Error())
		default:
			writeError(w, http.StatusInternalServerError, msgLoginFailed)
		}
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: profile, Tokens: pair})
}

// RefreshRequest is the token refresh payload.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh mints a fresh token pair from a valid refresh token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if strings.TrimSpace(req.Refresh) == "" {
		writeJSON(w, http.StatusBadRequest, services.FieldErrors{
			"refresh": {"This field is required."},
		})
		return
	}

	pair, err := h.accounts.Refresh(r.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRefreshToken) {
			writeError(w, http.StatusUnauthorized, msgBadRefreshToken)
			return
		}
		writeError(w, http.StatusInternalServerError, msgLoginFailed)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// ListDoctors returns every doctor profile. An empty directory is a
// valid, empty array.
func (h *AuthHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.accounts.ListDoctors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list doctors")
		return
	}
	writeJSON(w, http.StatusOK, doctors)
}

// Me returns the role profile of the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	profile, err := h.accounts.ProfileByUserID(r.Context(), userID)
	if err != nil {
		var notFound *services.ProfileNotFoundError
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
		case errors.As(err, &notFound):
			writeError(w, http.StatusNotFound, notFound.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to load profile")
		}
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
