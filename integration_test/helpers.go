package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"authgate/core"
	"authgate/core/providers"
	"authgate/logx"
	"authgate/storage"
)

type LoginResponse struct {
	Token string `json:"token"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// testStack wires the full pipeline against a real sqlite file and the mock
// provider backends, with the HTTP surface mounted on an httptest listener.
type testStack struct {
	repo *storage.SQLiteRepository
}

func buildTestStack(t *testing.T, oauthURL string) (http.Handler, *testStack) {
	t.Helper()

	config := &core.Config{
		JWTSecret:          "integration-test-secret",
		TokenExpiryMinutes: 60,
		HTTPTimeout:        5 * time.Second,
		PostLoginRedirect:  "http://localhost:3000/app",
	}

	github, err := providers.NewGithubProvider(&providers.GithubConfig{
		ClientID:        "gh-client-id",
		ClientSecret:    "gh-client-secret",
		RedirectURI:     "http://localhost:8080/auth/callback",
		OAuthBaseURL:    oauthURL,
		UserInfoBaseURL: oauthURL,
	}, config.Timeout())
	if err != nil {
		t.Fatalf("failed to build github provider: %v", err)
	}

	google, err := providers.NewGoogleProvider(&providers.GoogleConfig{
		ClientID:        "g-client-id",
		ClientSecret:    "g-client-secret",
		RedirectURI:     "http://localhost:8080/auth/callback",
		OAuthBaseURL:    oauthURL,
		UserInfoBaseURL: oauthURL,
	}, config.Timeout())
	if err != nil {
		t.Fatalf("failed to build google provider: %v", err)
	}

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "integration.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := logx.New(logx.Config{
		Service: "authgate-test",
		Env:     "test",
		Level:   "error",
		Format:  "text",
	})

	registry := core.NewRegistry(github, google)
	tokens := core.NewTokenService(config)
	authService := core.NewAuthService(registry, tokens, repo, logger)
	server := core.NewServer(authService, config)

	return server.Router(), &testStack{repo: repo}
}

func loginRequest(baseURL, provider, code string) (*http.Response, error) {
	body, _ := json.Marshal(map[string]string{
		"provider": provider,
		"code":     code,
	})

	client := &http.Client{Timeout: 5 * time.Second}
	return client.Post(baseURL+"/auth/login", "application/json", bytes.NewReader(body))
}

func verifyRequest(baseURL, token string) (*http.Response, error) {
	req, _ := http.NewRequest(http.MethodGet, baseURL+"/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 5 * time.Second}
	return client.Do(req)
}

func callbackRequest(baseURL, state, code string) (*http.Response, error) {
	// No redirect following, the test asserts on the 302 itself
	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return client.Get(baseURL + "/auth/callback?state=" + state + "&code=" + code)
}

func decodeBody(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}
