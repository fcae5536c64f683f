package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/mkovardin/webshop/internal/apperrors"
	"github.com/mkovardin/webshop/internal/handlers/render"
	"github.com/mkovardin/webshop/internal/models"
)

// Auth service as the handler sees it
type AuthService interface {
	Register(ctx context.Context, email string, password string) (models.User, error)
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)
	Logout(ctx context.Context, refresh string) error

	SetRefreshCookie(w http.ResponseWriter, refresh models.IssuedToken)
	ClearRefreshCookie(w http.ResponseWriter)
	ReadRefreshCookie(r *http.Request) (string, error)
	AccessTTLSeconds() int
}

// Wire format for successful login and refresh
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type AuthHandler struct {
	auth AuthService
}

func NewAuth(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /refresh", h.refresh)
	mux.HandleFunc("POST /logout", h.logout)

	return mux
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}
	type RegisterSuccessResponse struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	user, err := h.auth.Register(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, RegisterSuccessResponse{ID: user.ID.String(), Email: user.Email})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.auth.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAuthenticationFailed):
			render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.auth.SetRefreshCookie(w, pair.Refresh)
	render.JSON(w, TokenResponse{
		AccessToken: pair.Access.Value,
		TokenType:   "Bearer",
		ExpiresIn:   h.auth.AccessTTLSeconds(),
	})
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	refresh, err := h.auth.ReadRefreshCookie(r)
	if err != nil {
		render.ServiceError(w, "Refresh token invalid", http.StatusUnauthorized)
		return
	}

	pair, err := h.auth.Refresh(r.Context(), refresh)
	if err != nil {
		// One message for every cause: expired, revoked, rotated or
		// never existed look the same from outside
		switch {
		case errors.Is(err, apperrors.ErrRefreshTokenInvalid):
			render.ServiceError(w, "Refresh token invalid", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.auth.SetRefreshCookie(w, pair.Refresh)
	render.JSON(w, TokenResponse{
		AccessToken: pair.Access.Value,
		TokenType:   "Bearer",
		ExpiresIn:   h.auth.AccessTTLSeconds(),
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	refresh, err := h.auth.ReadRefreshCookie(r)
	if err != nil {
		render.ServiceError(w, "Refresh token invalid", http.StatusUnauthorized)
		return
	}

	if err := h.auth.Logout(r.Context(), refresh); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRefreshTokenInvalid):
			render.ServiceError(w, "Refresh token invalid", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.auth.ClearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
