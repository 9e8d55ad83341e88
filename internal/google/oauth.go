package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OOBRedirectURL is the redirect used by the copy-and-paste authorization flow.
const OOBRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// OAuthConfig returns the OAuth2 configuration for the installed-app flow.
func OAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("OAuth client id and secret are required")
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  OOBRedirectURL,
		Scopes:       CalendarScopes,
	}, nil
}

// AuthURL returns the URL the user visits to authorize calendar access.
func AuthURL(conf *oauth2.Config) string {
	return conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

// ExchangeAndSave exchanges an authorization code for a token and stores it at path.
func ExchangeAndSave(ctx context.Context, conf *oauth2.Config, authCode, path string) (*oauth2.Token, error) {
	token, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	if err := SaveToken(path, token); err != nil {
		return nil, err
	}
	return token, nil
}
