package providers

import (
	"context"
	"fmt"

	"authgate/core"
)

const MockKey = "mock"

// Predefined test authorization codes
const (
	ValidCode1        = "mock_auth_code_1"
	ValidCode2        = "mock_auth_code_2"
	ValidCodeNameless = "mock_auth_code_nameless"
	ValidCodeBlank    = "mock_auth_code_blank"
)

// Predefined test access tokens
const (
	Token1        core.AccessToken = "mock_access_token_1"
	Token2        core.AccessToken = "mock_access_token_2"
	TokenNameless core.AccessToken = "mock_access_token_nameless"
	TokenBlank    core.AccessToken = "mock_access_token_blank"
)

// Predefined test profiles
var (
	Profile1 = &core.UserProfile{
		ID:    "mock_user_1",
		Email: ptr("user1@mock.test"),
		Name:  ptr("Mock User One"),
	}

	Profile2 = &core.UserProfile{
		ID:    "mock_user_2",
		Email: ptr("user2@mock.test"),
		Name:  ptr("Mock User Two"),
	}

	// ProfileNameless only carries an email, so the derived username falls
	// back to it.
	ProfileNameless = &core.UserProfile{
		ID:    "mock_user_3",
		Email: ptr("user3@mock.test"),
	}

	// ProfileBlank carries neither name nor email.
	ProfileBlank = &core.UserProfile{
		ID: "mock_user_4",
	}
)

// MockProvider is a test implementation of core.OAuthProvider.
type MockProvider struct {
	codeToToken    map[string]core.AccessToken
	tokenToProfile map[core.AccessToken]*core.UserProfile

	// track method calls for verification
	ExchangeCodeCalls int
	FetchProfileCalls int
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		codeToToken: map[string]core.AccessToken{
			ValidCode1:        Token1,
			ValidCode2:        Token2,
			ValidCodeNameless: TokenNameless,
			ValidCodeBlank:    TokenBlank,
		},

		tokenToProfile: map[core.AccessToken]*core.UserProfile{
			Token1:        Profile1,
			Token2:        Profile2,
			TokenNameless: ProfileNameless,
			TokenBlank:    ProfileBlank,
		},
	}
}

func (m *MockProvider) Key() string {
	return MockKey
}

func (m *MockProvider) ExchangeCode(ctx context.Context, code string) (core.AccessToken, error) {
	m.ExchangeCodeCalls++

	token, ok := m.codeToToken[code]
	if !ok {
		return "", fmt.Errorf("%w: status 400: bad_verification_code", core.ErrClientCallFailed)
	}

	return token, nil
}

func (m *MockProvider) FetchProfile(ctx context.Context, token core.AccessToken) (*core.UserProfile, error) {
	m.FetchProfileCalls++

	profile, ok := m.tokenToProfile[token]
	if !ok {
		return nil, fmt.Errorf("%w: status 401: bad_token", core.ErrClientCallFailed)
	}

	return profile, nil
}

func ptr(s string) *string {
	return &s
}
