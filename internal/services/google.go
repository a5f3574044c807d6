// Google identity provider for the "Sign in with Google" flow
package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/chalet/internal/shared"
	"golang.org/x/oauth2"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"
)

// GoogleService drives the OAuth2 authorization code flow against Google and yields an id_token
// that the marketplace backend accepts as a credential.
type GoogleService struct {
	config *oauth2.Config
}

// NewGoogleService creates a [GoogleService] from configured client credentials.
func NewGoogleService(cfg shared.GoogleConfig) (*GoogleService, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("%w: google client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	return &GoogleService{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleAuthURL,
				TokenURL: googleTokenURL,
			},
		},
	}, nil
}

// SetEndpoint overrides the provider endpoints.
func (g *GoogleService) SetEndpoint(authURL, tokenURL string) {
	g.config.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
}

// RedirectURL returns the configured callback URL.
func (g *GoogleService) RedirectURL() string { return g.config.RedirectURL }

// AuthURL returns the consent page URL for state.
func (g *GoogleService) AuthURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades an authorization code for the id_token issued alongside the access token.
func (g *GoogleService) Exchange(ctx context.Context, code string) (string, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", fmt.Errorf("%w: token response has no id_token", shared.ErrAuthFailed)
	}
	return idToken, nil
}
