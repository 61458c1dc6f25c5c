package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrProviderNotFound   = errors.New("provider not found")
	ErrAuthConfigNotFound = errors.New("auth config not found")
	ErrClientCallFailed   = errors.New("client call failed")
	ErrEmptyResponseBody  = errors.New("empty response body")
)

// OAuthProvider is the capability a provider adapter implements: exchange an
// authorization code for an access token, then fetch the normalized profile
// for that token. Provider quirks stay inside the adapter.
type OAuthProvider interface {
	Key() string

	ExchangeCode(ctx context.Context, code string) (AccessToken, error)

	FetchProfile(ctx context.Context, token AccessToken) (*UserProfile, error)
}

// Registry maps a lowercase provider key to its adapter. The mapping is built
// once at wiring time and never mutated afterwards.
type Registry struct {
	providers map[string]OAuthProvider
}

func NewRegistry(providers ...OAuthProvider) *Registry {
	m := make(map[string]OAuthProvider, len(providers))
	for _, p := range providers {
		m[strings.ToLower(p.Key())] = p
	}
	return &Registry{providers: m}
}

// Resolve returns the adapter registered under key. The caller lowercases the
// key before lookup.
func (r *Registry) Resolve(key string) (OAuthProvider, error) {
	p, ok := r.providers[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, key)
	}
	return p, nil
}

// Keys lists the registered provider keys in stable order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.providers))
	for key := range r.providers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
