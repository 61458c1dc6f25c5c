package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrUsernameUndefined reports a profile carrying neither a name nor an
// email, which leaves nothing to derive the record key from.
var ErrUsernameUndefined = errors.New("profile has no name or email")

// AuthService runs the authorization-code login pipeline: resolve provider,
// exchange code, fetch profile, mint session token, upsert the user record.
// Every step is fail-fast; no retries happen at this layer.
type AuthService struct {
	registry *Registry
	tokens   *TokenService
	repo     UserRepository
	logger   *slog.Logger
}

func NewAuthService(registry *Registry, tokens *TokenService, repo UserRepository, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		registry: registry,
		tokens:   tokens,
		repo:     repo,
		logger:   logger,
	}
}

// HandleAuthorization handles one provider callback. The session token is
// minted before the record write, but only returned once the write committed:
// a failed upsert fails the whole pipeline.
func (s *AuthService) HandleAuthorization(ctx context.Context, providerKey, code string) (string, error) {
	key := strings.ToLower(providerKey)

	// 1. Resolve the provider adapter
	provider, err := s.registry.Resolve(key)
	if err != nil {
		loginsTotal.WithLabelValues(key, "provider_not_found").Inc()
		return "", err
	}

	// 2. Exchange authorization code for the provider access token
	accessToken, err := provider.ExchangeCode(ctx, code)
	if err != nil {
		loginsTotal.WithLabelValues(key, "exchange_failed").Inc()
		return "", fmt.Errorf("failed to exchange code: %w", err)
	}

	// 3. Fetch the normalized user profile
	profile, err := provider.FetchProfile(ctx, accessToken)
	if err != nil {
		loginsTotal.WithLabelValues(key, "profile_failed").Inc()
		return "", fmt.Errorf("failed to fetch profile: %w", err)
	}

	// 4. Mint our own session token from the profile claims
	token, err := s.tokens.Mint(key, profile.Email, profile.Name, profile.ID)
	if err != nil {
		return "", fmt.Errorf("failed to mint session token: %w", err)
	}

	// 5. Derive the record key
	username, err := deriveUsername(profile)
	if err != nil {
		loginsTotal.WithLabelValues(key, "no_username").Inc()
		return "", err
	}

	// 6. Upsert the user record, last write wins on re-login
	record, err := s.repo.UpsertToken(ctx, username, token)
	if err != nil {
		loginsTotal.WithLabelValues(key, "save_failed").Inc()
		return "", fmt.Errorf("%w: %v", ErrFailedToSaveData, err)
	}

	loginsTotal.WithLabelValues(key, "ok").Inc()
	s.logger.Info("login completed",
		"provider", key,
		"username", username,
		"record_id", record.ID,
	)

	return token, nil
}

// VerifySession checks an Authorization header value. Exactly one leading
// "Bearer " prefix is stripped; anything else reaches verification unchanged
// and fails there.
func (s *AuthService) VerifySession(authorization string) error {
	token := strings.TrimPrefix(authorization, "Bearer ")

	if _, err := s.tokens.Verify(token); err != nil {
		if errors.Is(err, ErrTokenExpired) {
			verificationsTotal.WithLabelValues("expired").Inc()
		} else {
			verificationsTotal.WithLabelValues("invalid").Inc()
		}
		return err
	}

	verificationsTotal.WithLabelValues("ok").Inc()
	return nil
}

// deriveUsername prefers the display name and falls back to the email
// address. A profile with neither cannot be keyed.
func deriveUsername(profile *UserProfile) (string, error) {
	switch {
	case profile.Name != nil:
		return *profile.Name, nil
	case profile.Email != nil:
		return *profile.Email, nil
	default:
		return "", ErrUsernameUndefined
	}
}
