package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/mkovardin/webshop/internal/repository/postgres"
	"github.com/mkovardin/webshop/internal/service/auth"
	"github.com/mkovardin/webshop/internal/service/auth/tokenmanager"
	"github.com/mkovardin/webshop/internal/testutil"
)

func Test_AuthHandler(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Run http server and attach auth handlers
	// Production AuthService will be used
	withTx := func(dbpool *pgxpool.Pool, t *testing.T, fn func(url string, auth *auth.AuthService)) {
		testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret", RefreshTTL: 24 * time.Hour}, storage)
			require.NoError(t, err, "token manager should be created without errors")

			// Initialize production auth service
			s, err := auth.NewService(auth.Config{}, tokenManager, storage)
			require.NoError(t, err, "auth service starting error", err)

			h := NewAuth(s)
			srv := httptest.NewServer(h.Handler())
			defer srv.Close()

			fn(srv.URL, s)
		})
	}

	readBody := func(t *testing.T, resp *http.Response) string {
		t.Helper()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		return string(body)
	}

	refreshCookie := func(t *testing.T, resp *http.Response) *http.Cookie {
		t.Helper()
		for _, c := range resp.Cookies() {
			if c.Name == "refresh_session" {
				return c
			}
		}
		t.Fatal("refresh cookie not found in response")
		return nil
	}

	login := func(t *testing.T, url string, email string, password string) *http.Response {
		t.Helper()
		data := `{"email": "` + email + `", "password": "` + password + `"}`
		resp, err := http.Post(url+"/login", "application/json", strings.NewReader(data))
		require.NoError(t, err)
		return resp
	}

	t.Run("register ok", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, auth *auth.AuthService) {
			data := `{"email": "nk@example.com", "password": "StrongEnoughPassword"}`

			resp, err := http.Post(url+"/register", "application/json", strings.NewReader(data))
			require.NoError(t, err)
			body := readBody(t, resp)

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, `"email":"nk@example.com"`)
			require.Contains(t, body, `"id"`)
			require.Equal(t, 0, len(resp.Cookies()), "registration must not start a session")
		})
	})

	t.Run("register duplicate", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, auth *auth.AuthService) {
			_, err := auth.Register(t.Context(), "nk@example.com", "StrongEnoughPassword")
			require.NoError(t, err)

			data := `{"email": "nk@example.com", "password": "OtherPassword123"}`
			resp, err := http.Post(url+"/register", "application/json", strings.NewReader(data))
			require.NoError(t, err)
			body := readBody(t, resp)

			require.Equalf(t, http.StatusConflict, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "User already exists"
				}`, body)
		})
	})

	t.Run("register invalid body", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, auth *auth.AuthService) {
			data := `{"email": "not-an-email", "password": "short"}`

			resp, err := http.Post(url+"/register", "application/json", strings.NewReader(data))
			require.NoError(t, err)
			body := readBody(t, resp)

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, "validation_failed")
		})
	})

	t.Run("login ok", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, auth *auth.AuthService) {
			_, err := auth.Register(t.Context(), "nk@example.com", "StrongEnoughPassword")
			require.NoError(t, err)

			resp := login(t, url, "nk@example.com", "StrongEnoughPassword")
			body := readBody(t, resp)

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, `"access_token"`)
			require.Contains(t, body, `"token_type":"Bearer"`)
			require.Contains(t, body, `"expires_in":900`)

			cookie := refreshCookie(t, resp)
			require.True(t, cookie.HttpOnly, "refresh cookie should be HttpOnly")
			require.True(t, cookie.Secure, "refresh cookie should be Secure")
			require.Equal(t, "/api/auth", cookie.Path, "refresh cookie should be scoped to auth path")
			require.Equal(t, http.SameSiteLaxMode, cookie.SameSite, "refresh cookie should be SameSite Lax")
			require.InDelta(t, (24 * time.Hour).Seconds(), cookie.MaxAge, 5, "max age should be refresh TTL")
			require.NotEmpty(t, cookie.Value, "refresh cookie should not be empty")
		})
	})

	t.Run("login failed", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, auth *auth.AuthService) {
			resp := login(t, url, "nk@example.com", "WrongPassword")
			body := readBody(t, resp)

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Invalid email or password"
				}`, body)

			require.Equal(t, 0, len(resp.Cookies()), "no cookies should be set on login error")
		})
	})

	t.Run("refresh ok", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, auth *auth.AuthService) {
			_, err := auth.Register(t.Context(), "nk@example.com", "StrongEnoughPassword")
			require.NoError(t, err)

			loginResp := login(t, url, "nk@example.com", "StrongEnoughPassword")
			_ = readBody(t, loginResp)
			oldCookie := refreshCookie(t, loginResp)

			req, err := http.NewRequest(http.MethodPost, url+"/refresh", nil)
			require.NoError(t, err)
			req.AddCookie(oldCookie)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			body := readBody(t, resp)

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, body, `"access_token"`)

			newCookie := refreshCookie(t, resp)
			require.NotEqual(t, oldCookie.Value, newCookie.Value, "refresh must rotate the secret")
		})
	})

	t.Run("refresh with stale cookie", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, auth *auth.AuthService) {
			_, err := auth.Register(t.Context(), "nk@example.com", "StrongEnoughPassword")
			require.NoError(t, err)

			loginResp := login(t, url, "nk@example.com", "StrongEnoughPassword")
			_ = readBody(t, loginResp)
			oldCookie := refreshCookie(t, loginResp)

			// Rotate once, then replay the old secret
			for i, wantCode := range []int{http.StatusOK, http.StatusUnauthorized} {
				req, err := http.NewRequest(http.MethodPost, url+"/refresh", nil)
				require.NoError(t, err)
				req.AddCookie(oldCookie)

				resp, err := http.DefaultClient.Do(req)
				require.NoError(t, err)
				body := readBody(t, resp)
				require.Equalf(t, wantCode, resp.StatusCode, "attempt %d, not expected code. Body: %s", i, body)
			}
		})
	})

	t.Run("refresh without cookie", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, auth *auth.AuthService) {
			resp, err := http.Post(url+"/refresh", "application/json", nil)
			require.NoError(t, err)
			body := readBody(t, resp)

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Refresh token invalid"
				}`, body)
		})
	})

	t.Run("logout ok", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, auth *auth.AuthService) {
			_, err := auth.Register(t.Context(), "nk@example.com", "StrongEnoughPassword")
			require.NoError(t, err)

			loginResp := login(t, url, "nk@example.com", "StrongEnoughPassword")
			_ = readBody(t, loginResp)
			cookie := refreshCookie(t, loginResp)

			req, err := http.NewRequest(http.MethodPost, url+"/logout", nil)
			require.NoError(t, err)
			req.AddCookie(cookie)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			_ = readBody(t, resp)

			require.Equal(t, http.StatusNoContent, resp.StatusCode)
			cleared := refreshCookie(t, resp)
			require.Empty(t, cleared.Value, "logout must clear the refresh cookie")
			require.Negative(t, cleared.MaxAge)

			// The secret is dead after logout
			req, err = http.NewRequest(http.MethodPost, url+"/refresh", nil)
			require.NoError(t, err)
			req.AddCookie(cookie)
			resp, err = http.DefaultClient.Do(req)
			require.NoError(t, err)
			_ = readBody(t, resp)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	})

	t.Run("logout without cookie", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, auth *auth.AuthService) {
			resp, err := http.Post(url+"/logout", "application/json", nil)
			require.NoError(t, err)
			body := readBody(t, resp)

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})
}
