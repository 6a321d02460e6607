package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/emporiumlabs/emporium/internal/logger"
	"github.com/emporiumlabs/emporium/pkg/api/auth"
	"github.com/emporiumlabs/emporium/pkg/api/middleware"
)

// Operator identifies the single operator account allowed on the admin API.
// The password hash is bcrypt, written to the config file by 'emporium init'.
type Operator struct {
	Username     string
	PasswordHash string
}

// AuthHandler handles operator authentication endpoints.
type AuthHandler struct {
	operator Operator
	jwt      *auth.JWTService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(operator Operator, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{operator: operator, jwt: jwtService}
}

// LoginRequest is the request body for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MeResponse is the response body for GET /api/v1/auth/me.
type MeResponse struct {
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Login handles POST /api/v1/auth/login.
//
// Validates the operator credentials against the configured bcrypt hash and
// returns a signed JWT. The hash comparison runs before the username check so
// response timing does not reveal which part of the credentials was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Username == "" || req.Password == "" {
		BadRequest(w, "Username and password are required")
		return
	}

	if h.jwt == nil || h.operator.Username == "" || h.operator.PasswordHash == "" {
		logger.WarnCtx(r.Context(), "Login attempted with no operator account configured")
		Unauthorized(w, "Invalid username or password")
		return
	}

	err := bcrypt.CompareHashAndPassword([]byte(h.operator.PasswordHash), []byte(req.Password))
	if err != nil || req.Username != h.operator.Username {
		Unauthorized(w, "Invalid username or password")
		return
	}

	token, err := h.jwt.GenerateToken(req.Username)
	if err != nil {
		logger.ErrorCtx(r.Context(), "Failed to sign operator token", logger.Err(err))
		InternalServerError(w, "Failed to generate token")
		return
	}

	logger.InfoCtx(r.Context(), "Operator logged in", slog.String(logger.KeyUsername, req.Username))

	WriteJSONOK(w, token)
}

// Me handles GET /api/v1/auth/me.
// Returns the authenticated operator's claims.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	resp := MeResponse{Username: claims.Username}
	if claims.IssuedAt != nil {
		resp.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}

	WriteJSONOK(w, resp)
}
