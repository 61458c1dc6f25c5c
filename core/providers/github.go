package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"authgate/core"
)

const (
	GithubDefaultOAuthBaseURL    = "https://github.com/login/oauth"
	GithubDefaultUserInfoBaseURL = "https://api.github.com"
)

type GithubConfig struct {
	ClientID        string `yaml:"client_id"`
	ClientSecret    string `yaml:"client_secret"`
	RedirectURI     string `yaml:"redirect_uri"`
	OAuthBaseURL    string `yaml:"oauth_base_url"`
	UserInfoBaseURL string `yaml:"userinfo_base_url"`
}

type GithubProvider struct {
	config     *GithubConfig
	httpClient *http.Client
}

// NewGithubProvider fails when the config block is absent or incomplete so
// that a missing provider surfaces at wiring time, not on the first request.
func NewGithubProvider(config *GithubConfig, timeout time.Duration) (*GithubProvider, error) {
	if config == nil || config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("%w: github", core.ErrAuthConfigNotFound)
	}

	cfg := *config
	if cfg.OAuthBaseURL == "" {
		cfg.OAuthBaseURL = GithubDefaultOAuthBaseURL
	}
	if cfg.UserInfoBaseURL == "" {
		cfg.UserInfoBaseURL = GithubDefaultUserInfoBaseURL
	}

	return &GithubProvider{
		config:     &cfg,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (g *GithubProvider) Key() string {
	return "github"
}

type githubTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type githubUserInfo struct {
	ID       int64   `json:"id"`
	ReposURL string  `json:"repos_url"`
	Name     *string `json:"name"`
}

func (g *GithubProvider) ExchangeCode(ctx context.Context, code string) (core.AccessToken, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", g.config.ClientID)
	form.Set("client_secret", g.config.ClientSecret)
	form.Set("redirect_uri", g.config.RedirectURI)
	form.Set("grant_type", "authorization_code")

	body, err := postForm(ctx, g.httpClient, g.config.OAuthBaseURL+"/access_token", form)
	if err != nil {
		return "", err
	}

	var tokenResp githubTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrClientCallFailed, err)
	}

	return core.AccessToken(tokenResp.AccessToken), nil
}

func (g *GithubProvider) FetchProfile(ctx context.Context, token core.AccessToken) (*core.UserProfile, error) {
	body, err := getJSON(ctx, g.httpClient, g.config.UserInfoBaseURL+"/user", string(token))
	if err != nil {
		return nil, err
	}

	var info githubUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrClientCallFailed, err)
	}

	// GitHub omits the account email on /user without an extra scope. The
	// upstream contract this gateway replaces filled the email slot with
	// repos_url instead, and callers depend on seeing that value.
	email := info.ReposURL

	return &core.UserProfile{
		ID:    strconv.FormatInt(info.ID, 10),
		Email: &email,
		Name:  info.Name,
	}, nil
}
