// Package oauth implements the Google authorization-code login flow.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// DefaultUserInfoURL is Google's OpenID Connect userinfo endpoint.
const DefaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

var (
	// ErrMissingCode is returned when the callback carries no authorization code.
	ErrMissingCode = errors.New("missing authorization code")
	// ErrNoEmail is returned when the profile has no usable email address.
	ErrNoEmail = errors.New("google profile has no verified email")
)

// Profile is the subset of the Google identity used for login.
type Profile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Google drives the OAuth consent redirect and the code exchange.
type Google struct {
	conf        *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// Option customizes a Google provider.
type Option func(*Google)

// WithEndpoint overrides the authorization and token endpoints.
func WithEndpoint(ep oauth2.Endpoint) Option {
	return func(g *Google) { g.conf.Endpoint = ep }
}

// WithUserInfoURL overrides the profile endpoint.
func WithUserInfoURL(url string) Option {
	return func(g *Google) { g.userInfoURL = url }
}

// WithHTTPClient sets the client used for token exchange and profile fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Google) { g.httpClient = c }
}

// NewGoogle creates a provider for the given client credentials.
func NewGoogle(clientID, clientSecret, callbackURL string, opts ...Option) *Google {
	g := &Google{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     endpoints.Google,
		},
		userInfoURL: DefaultUserInfoURL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AuthCodeURL returns the consent page URL carrying state.
func (g *Google) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's profile.
func (g *Google) Exchange(ctx context.Context, code string) (*Profile, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	if g.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	}

	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	resp, err := g.conf.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, body)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if p.Email == "" || !p.EmailVerified {
		return nil, ErrNoEmail
	}
	return &p, nil
}
