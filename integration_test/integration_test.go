package integration_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
)

type IntegrationTestSuite struct {
	suite.Suite
	mockOAuth  *MockOAuthServer
	httpServer *httptest.Server
	baseURL    string
	stack      *testStack
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.mockOAuth = NewMockOAuthServer()

	handler, stack := buildTestStack(s.T(), s.mockOAuth.URL())
	s.stack = stack
	s.httpServer = httptest.NewServer(handler)
	s.baseURL = s.httpServer.URL
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.httpServer != nil {
		s.httpServer.Close()
	}
	if s.mockOAuth != nil {
		s.mockOAuth.Close()
	}
}

func (s *IntegrationTestSuite) TestGithubLoginFlow() {
	resp, err := loginRequest(s.baseURL, "github", "gh_valid_code_1")
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var login LoginResponse
	decodeBody(s.T(), resp, &login)
	s.Require().NotEmpty(login.Token)

	verifyResp, err := verifyRequest(s.baseURL, login.Token)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, verifyResp.StatusCode)

	var status StatusResponse
	decodeBody(s.T(), verifyResp, &status)
	s.Equal("ok", status.Status)

	record, err := s.stack.repo.FindByUsername(context.Background(), "Octo Cat")
	s.Require().NoError(err)
	s.Equal(login.Token, record.Token)
}

func (s *IntegrationTestSuite) TestProviderKeyIsCaseInsensitive() {
	resp, err := loginRequest(s.baseURL, "GITHUB", "gh_valid_code_1")
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (s *IntegrationTestSuite) TestRepeatLoginUpdatesExistingRecord() {
	resp, err := loginRequest(s.baseURL, "github", "gh_valid_code_1")
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	first, err := s.stack.repo.FindByUsername(context.Background(), "Octo Cat")
	s.Require().NoError(err)

	resp, err = loginRequest(s.baseURL, "github", "gh_valid_code_2")
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var login LoginResponse
	decodeBody(s.T(), resp, &login)

	second, err := s.stack.repo.FindByUsername(context.Background(), "Octo Cat")
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(login.Token, second.Token)
}

func (s *IntegrationTestSuite) TestNamelessProfileKeyedByEmailSlot() {
	resp, err := loginRequest(s.baseURL, "github", "gh_nameless_code")
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// GitHub profiles carry repos_url in the email slot, so a nameless
	// account is keyed by that value.
	_, err = s.stack.repo.FindByUsername(context.Background(), "https://api.github.com/users/ghost/repos")
	s.NoError(err)
}

func (s *IntegrationTestSuite) TestUnknownProvider() {
	resp, err := loginRequest(s.baseURL, "facebook", "any_code")
	s.Require().NoError(err)
	s.Require().Equal(http.StatusBadRequest, resp.StatusCode)

	var errResp ErrorResponse
	decodeBody(s.T(), resp, &errResp)
	s.Equal("invalid_provider", errResp.Error)
}

func (s *IntegrationTestSuite) TestInvalidCode() {
	resp, err := loginRequest(s.baseURL, "github", "expired_code")
	s.Require().NoError(err)
	s.Require().Equal(http.StatusBadGateway, resp.StatusCode)

	var errResp ErrorResponse
	decodeBody(s.T(), resp, &errResp)
	s.Equal("provider_error", errResp.Error)
}

func (s *IntegrationTestSuite) TestGoogleCallbackSetsSessionCookie() {
	resp, err := callbackRequest(s.baseURL, "google", "g_valid_code_1")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusFound, resp.StatusCode)
	s.Equal("http://localhost:3000/app", resp.Header.Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "authToken" {
			sessionCookie = c
		}
	}
	s.Require().NotNil(sessionCookie, "authToken cookie missing")
	s.True(sessionCookie.HttpOnly)
	s.Require().NotEmpty(sessionCookie.Value)

	verifyResp, err := verifyRequest(s.baseURL, sessionCookie.Value)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, verifyResp.StatusCode)
	verifyResp.Body.Close()
}

func (s *IntegrationTestSuite) TestCallbackMissingParams() {
	resp, err := callbackRequest(s.baseURL, "google", "")
	s.Require().NoError(err)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func (s *IntegrationTestSuite) TestVerifyGarbageToken() {
	resp, err := verifyRequest(s.baseURL, "not.a.token")
	s.Require().NoError(err)
	s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)

	var errResp ErrorResponse
	decodeBody(s.T(), resp, &errResp)
	s.Equal("invalid_token", errResp.Error)
}

func (s *IntegrationTestSuite) TestHealth() {
	resp, err := http.Get(s.baseURL + "/health")
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
