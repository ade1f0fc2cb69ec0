package api

import (
	"net/http"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/model"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	responder
	userService *user.Service
	jwtService  *auth.JWTService
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(userService *user.Service, jwtService *auth.JWTService, production bool) *AuthHandlers {
	return &AuthHandlers{
		responder:   responder{production},
		userService: userService,
		jwtService:  jwtService,
	}
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
	Message string      `json:"message,omitempty"`
}

// Register handles user registration
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var in user.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.userService.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	token, err := h.setAuthCookie(w, r, u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, AuthResponse{User: u, Token: token, Message: "Registration successful"})
}

// Login handles user login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var in user.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.userService.Authenticate(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	token, err := h.setAuthCookie(w, r, u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, AuthResponse{User: u, Token: token, Message: "Login successful"})
}

// Logout clears the access token cookie. Tokens are stateless, so an
// API client holding one keeps it until it expires.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondMessage(w, "Logout successful")
}

// Me returns the current authenticated user's information
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.userService.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *AuthHandlers) setAuthCookie(w http.ResponseWriter, r *http.Request, u *model.User) (string, error) {
	token, expiry, err := h.jwtService.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}
