package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mkovardin/webshop/internal/apperrors"
	"github.com/mkovardin/webshop/internal/models"
)

const (
	defaultRefreshCookieName = "refresh_session"
	defaultRefreshCookiePath = "/api/auth"
)

// SetRefreshCookie writes the raw refresh secret to the response.
// HttpOnly always, Secure unless disabled for local development, SameSite
// Lax, scoped to the auth path so the secret never rides on other requests.
func (s *AuthService) SetRefreshCookie(w http.ResponseWriter, refresh models.IssuedToken) {
	maxAge := int(time.Until(refresh.ExpiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    refresh.Value,
		Path:     s.refreshCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !s.insecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearRefreshCookie emits a cookie with the same attributes, empty value
// and MaxAge<0 so the client drops it
func (s *AuthService) ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    "",
		Path:     s.refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !s.insecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadRefreshCookie extracts the raw refresh secret from the request.
// Missing cookie is reported as apperrors.ErrRefreshTokenInvalid.
func (s *AuthService) ReadRefreshCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.refreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", fmt.Errorf("no refresh cookie: %w", apperrors.ErrRefreshTokenInvalid)
	}

	return cookie.Value, nil
}

// SetRefreshCookieToRequest attaches the refresh secret to an outgoing
// request, test helper mirroring SetRefreshCookie
func (s *AuthService) SetRefreshCookieToRequest(r *http.Request, refresh models.IssuedToken) {
	r.AddCookie(&http.Cookie{
		Name:  s.refreshCookieName,
		Value: refresh.Value,
		Path:  s.refreshCookiePath,
	})
}
