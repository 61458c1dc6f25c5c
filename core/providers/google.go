package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"authgate/core"
)

const (
	GoogleDefaultOAuthBaseURL    = "https://oauth2.googleapis.com"
	GoogleDefaultUserInfoBaseURL = "https://www.googleapis.com"
)

type GoogleConfig struct {
	ClientID        string `yaml:"client_id"`
	ClientSecret    string `yaml:"client_secret"`
	RedirectURI     string `yaml:"redirect_uri"`
	OAuthBaseURL    string `yaml:"oauth_base_url"`
	UserInfoBaseURL string `yaml:"userinfo_base_url"`
}

type GoogleProvider struct {
	config     *GoogleConfig
	httpClient *http.Client
}

func NewGoogleProvider(config *GoogleConfig, timeout time.Duration) (*GoogleProvider, error) {
	if config == nil || config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("%w: google", core.ErrAuthConfigNotFound)
	}

	cfg := *config
	if cfg.OAuthBaseURL == "" {
		cfg.OAuthBaseURL = GoogleDefaultOAuthBaseURL
	}
	if cfg.UserInfoBaseURL == "" {
		cfg.UserInfoBaseURL = GoogleDefaultUserInfoBaseURL
	}

	return &GoogleProvider{
		config:     &cfg,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (g *GoogleProvider) Key() string {
	return "google"
}

type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type googleUserInfo struct {
	ID    string  `json:"id"`
	Email *string `json:"email"`
	Name  *string `json:"name"`
}

func (g *GoogleProvider) ExchangeCode(ctx context.Context, code string) (core.AccessToken, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", g.config.ClientID)
	form.Set("client_secret", g.config.ClientSecret)
	form.Set("redirect_uri", g.config.RedirectURI)
	form.Set("grant_type", "authorization_code")

	body, err := postForm(ctx, g.httpClient, g.config.OAuthBaseURL+"/token", form)
	if err != nil {
		return "", err
	}

	var tokenResp googleTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrClientCallFailed, err)
	}

	return core.AccessToken(tokenResp.AccessToken), nil
}

func (g *GoogleProvider) FetchProfile(ctx context.Context, token core.AccessToken) (*core.UserProfile, error) {
	body, err := getJSON(ctx, g.httpClient, g.config.UserInfoBaseURL+"/oauth2/v3/userinfo", string(token))
	if err != nil {
		return nil, err
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrClientCallFailed, err)
	}

	return &core.UserProfile{
		ID:    info.ID,
		Email: info.Email,
		Name:  info.Name,
	}, nil
}
