package model

import "time"

// Owner represents a tenant account that collects form submissions.
type Owner struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	SiteKey      string    `json:"siteKey"`
	PasswordHash string    `json:"-"` // Never serialize
	GoogleID     string    `json:"-"`
	Theme        Fields    `json:"theme"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasPassword reports whether the owner can log in with a local password.
func (o *Owner) HasPassword() bool {
	return o.PasswordHash != ""
}

// IsFederated reports whether the owner was registered through an external identity.
func (o *Owner) IsFederated() bool {
	return o.GoogleID != ""
}

// ThemeOrEmpty returns the theme, substituting an empty mapping for nil.
func (o *Owner) ThemeOrEmpty() Fields {
	if o.Theme == nil {
		return Fields{}
	}
	return o.Theme
}

// TokenClaims holds the identity carried by a verified bearer token.
// This is injected into the request context by auth middleware.
type TokenClaims struct {
	OwnerID string
	SiteKey string
	Email   string
}
