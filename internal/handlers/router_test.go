package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/mkovardin/webshop/internal/handlers/middleware"
	"github.com/mkovardin/webshop/internal/logger"
	"github.com/mkovardin/webshop/internal/models"
	"github.com/mkovardin/webshop/internal/repository/postgres"
	"github.com/mkovardin/webshop/internal/service/auth"
	"github.com/mkovardin/webshop/internal/service/auth/tokenmanager"
	"github.com/mkovardin/webshop/internal/service/product"
	"github.com/mkovardin/webshop/internal/testutil"
)

// Full api surface wired the same way the server app wires it
func Test_Router(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withServer := func(t *testing.T, fn func(url string, tx pgx.Tx)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"}, storage)
			require.NoError(t, err)
			authService, err := auth.NewService(auth.Config{}, tokenManager, storage)
			require.NoError(t, err)
			productService := product.NewService(storage.Product())

			mux := NewRouter(
				NewAuth(authService),
				NewProduct(productService),
				middleware.Authenticate(authService, "/api/auth/"),
				middleware.LoggerMiddleware(logger.NewNoOpLogger()),
			)

			srv := httptest.NewServer(mux)
			defer srv.Close()

			fn(srv.URL, tx)
		})
	}

	do := func(t *testing.T, method string, url string, body string, bearer string) (*http.Response, string) {
		t.Helper()

		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req, err := http.NewRequest(method, url, reader)
		require.NoError(t, err)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		respBody, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		return resp, string(respBody)
	}

	// Register, optionally promote to admin, login, return the access token
	obtainToken := func(t *testing.T, url string, tx pgx.Tx, email string, admin bool) string {
		t.Helper()

		resp, body := do(t, http.MethodPost, url+"/api/auth/register", `{"email": "`+email+`", "password": "StrongEnoughPassword"}`, "")
		require.Equalf(t, http.StatusOK, resp.StatusCode, "registration failed. Body: %s", body)

		if admin {
			_, err := tx.Exec(t.Context(), "UPDATE users SET roles = $1 WHERE email = $2", []string{models.RoleUser, models.RoleAdmin}, email)
			require.NoError(t, err)
		}

		resp, body = do(t, http.MethodPost, url+"/api/auth/login", `{"email": "`+email+`", "password": "StrongEnoughPassword"}`, "")
		require.Equalf(t, http.StatusOK, resp.StatusCode, "login failed. Body: %s", body)

		var tokens TokenResponse
		require.NoError(t, json.Unmarshal([]byte(body), &tokens))
		require.NotEmpty(t, tokens.AccessToken, "access token not found in login response")
		return tokens.AccessToken
	}

	t.Run("product reads are public", func(t *testing.T) {
		withServer(t, func(url string, tx pgx.Tx) {
			resp, body := do(t, http.MethodGet, url+"/api/products", "", "")

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, "[]", body, "fresh catalog should be empty")
		})
	})

	t.Run("product writes need admin token", func(t *testing.T) {
		withServer(t, func(url string, tx pgx.Tx) {
			data := `{"name": "Dock", "category": "peripherals", "price": "149.00"}`

			// No token at all
			resp, _ := do(t, http.MethodPost, url+"/api/products", data, "")
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			// Valid token, plain user
			userToken := obtainToken(t, url, tx, "user@example.com", false)
			resp, _ = do(t, http.MethodPost, url+"/api/products", data, userToken)
			require.Equal(t, http.StatusForbidden, resp.StatusCode)

			// Admin does it
			adminToken := obtainToken(t, url, tx, "admin@example.com", true)
			resp, body := do(t, http.MethodPost, url+"/api/products", data, adminToken)
			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)

			// And the created product is publicly visible
			resp, body = do(t, http.MethodGet, url+"/api/products", "", "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Contains(t, body, "Dock")
		})
	})

	t.Run("garbage bearer token stays anonymous", func(t *testing.T) {
		withServer(t, func(url string, tx pgx.Tx) {
			// Reads still work, the gate fails open
			resp, _ := do(t, http.MethodGet, url+"/api/products", "", "garbage-token")
			require.Equal(t, http.StatusOK, resp.StatusCode)

			// Writes see an anonymous caller
			resp, _ = do(t, http.MethodPost, url+"/api/products", `{"name": "X", "price": "1.00"}`, "garbage-token")
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	})

	t.Run("unknown api path", func(t *testing.T) {
		withServer(t, func(url string, tx pgx.Tx) {
			resp, _ := do(t, http.MethodGet, url+"/api/unknown", "", "")
			require.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	})

	t.Run("auth endpoints bypass the gate", func(t *testing.T) {
		withServer(t, func(url string, tx pgx.Tx) {
			// Garbage bearer header must not break login
			resp, body := do(t, http.MethodPost, url+"/api/auth/register", `{"email": "gate@example.com", "password": "StrongEnoughPassword"}`, "garbage-token")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})
}
