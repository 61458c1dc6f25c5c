package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	key string
}

func (f *fakeProvider) Key() string { return f.key }

func (f *fakeProvider) ExchangeCode(ctx context.Context, code string) (AccessToken, error) {
	return "token", nil
}

func (f *fakeProvider) FetchProfile(ctx context.Context, token AccessToken) (*UserProfile, error) {
	return &UserProfile{ID: "1"}, nil
}

func TestRegistry_Resolve(t *testing.T) {
	registry := NewRegistry(&fakeProvider{key: "github"}, &fakeProvider{key: "google"})

	p, err := registry.Resolve("github")
	require.NoError(t, err)
	assert.Equal(t, "github", p.Key())

	_, err = registry.Resolve("facebook")
	assert.ErrorIs(t, err, ErrProviderNotFound)
	assert.Contains(t, err.Error(), "facebook")
}

func TestRegistry_LowercasesKeysOnRegistration(t *testing.T) {
	registry := NewRegistry(&fakeProvider{key: "GitHub"})

	_, err := registry.Resolve("github")
	assert.NoError(t, err)
}

func TestRegistry_Keys(t *testing.T) {
	registry := NewRegistry(&fakeProvider{key: "google"}, &fakeProvider{key: "github"})

	assert.Equal(t, []string{"github", "google"}, registry.Keys())
}
