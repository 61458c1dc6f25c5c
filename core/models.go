package core

import "time"

// AccessToken is the provider-issued bearer credential. It is used exactly
// once, to fetch the user's profile, and never persisted.
type AccessToken string

// UserProfile is the normalized shape a provider adapter extracts from its
// userinfo response. Email and Name are nil when the provider omits them.
type UserProfile struct {
	ID    string
	Email *string
	Name  *string
}

// UserRecord is the persisted row for a logged-in user. The primary key is a
// generated ULID; Username carries a unique index. Token always holds the
// most recently minted session token for that username.
type UserRecord struct {
	ID        string
	Username  string
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
