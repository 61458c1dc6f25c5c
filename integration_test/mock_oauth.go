package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

type githubUser struct {
	ID       int64   `json:"id"`
	ReposURL string  `json:"repos_url"`
	Name     *string `json:"name"`
}

type googleUser struct {
	ID    string  `json:"id"`
	Email *string `json:"email"`
	Name  *string `json:"name"`
}

var githubUsers = map[string]githubUser{
	"gh_valid_code_1": {
		ID:       42,
		ReposURL: "https://api.github.com/users/octocat/repos",
		Name:     strPtr("Octo Cat"),
	},
	"gh_valid_code_2": {
		ID:       42,
		ReposURL: "https://api.github.com/users/octocat/repos",
		Name:     strPtr("Octo Cat"),
	},
	"gh_nameless_code": {
		ID:       77,
		ReposURL: "https://api.github.com/users/ghost/repos",
		Name:     nil,
	},
}

var googleUsers = map[string]googleUser{
	"g_valid_code_1": {
		ID:    "google_user_1",
		Email: strPtr("user1@example.com"),
		Name:  strPtr("Test User 1"),
	},
}

func strPtr(s string) *string { return &s }

// MockOAuthServer stands in for both provider backends: GitHub-shaped
// endpoints (/access_token, /user) and Google-shaped ones (/token,
// /oauth2/v3/userinfo) on the same listener.
type MockOAuthServer struct {
	server *httptest.Server

	mu           sync.Mutex
	githubTokens map[string]githubUser
	googleTokens map[string]googleUser
}

func NewMockOAuthServer() *MockOAuthServer {
	m := &MockOAuthServer{
		githubTokens: make(map[string]githubUser),
		googleTokens: make(map[string]googleUser),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/access_token", m.handleGithubToken)
	mux.HandleFunc("/user", m.handleGithubUser)
	mux.HandleFunc("/token", m.handleGoogleToken)
	mux.HandleFunc("/oauth2/v3/userinfo", m.handleGoogleUserInfo)

	m.server = httptest.NewServer(mux)
	return m
}

func (m *MockOAuthServer) URL() string {
	return m.server.URL
}

func (m *MockOAuthServer) Close() {
	m.server.Close()
}

func (m *MockOAuthServer) handleGithubToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, `{"error":"invalid_request"}`, http.StatusBadRequest)
		return
	}

	code := r.PostForm.Get("code")
	user, ok := githubUsers[code]
	if !ok {
		http.Error(w, `{"error":"bad_verification_code"}`, http.StatusBadRequest)
		return
	}

	accessToken := "gh_access_" + code
	m.mu.Lock()
	m.githubTokens[accessToken] = user
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"access_token": accessToken,
		"token_type":   "bearer",
	})
}

func (m *MockOAuthServer) handleGithubUser(w http.ResponseWriter, r *http.Request) {
	user, ok := m.lookupGithub(bearerToken(r))
	if !ok {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (m *MockOAuthServer) handleGoogleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, `{"error":"invalid_request"}`, http.StatusBadRequest)
		return
	}

	code := r.PostForm.Get("code")
	user, ok := googleUsers[code]
	if !ok {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
		return
	}

	accessToken := "g_access_" + code
	m.mu.Lock()
	m.googleTokens[accessToken] = user
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"access_token": accessToken,
		"token_type":   "Bearer",
	})
}

func (m *MockOAuthServer) handleGoogleUserInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := m.lookupGoogle(bearerToken(r))
	if !ok {
		http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (m *MockOAuthServer) lookupGithub(token string) (githubUser, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.githubTokens[token]
	return user, ok
}

func (m *MockOAuthServer) lookupGoogle(token string) (googleUser, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.googleTokens[token]
	return user, ok
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) {
		return ""
	}
	return header[len(prefix):]
}
