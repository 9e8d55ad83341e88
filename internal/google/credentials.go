package google

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// Credentials selects how the Calendar client authenticates.
// A service-account file takes precedence over a stored user token.
type Credentials struct {
	ServiceAccountFile string
	TokenFile          string
	ClientID           string
	ClientSecret       string
}

// ClientOptions builds API client options for the configured credentials.
func ClientOptions(ctx context.Context, creds Credentials, logger *slog.Logger) ([]option.ClientOption, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if creds.ServiceAccountFile != "" {
		data, err := os.ReadFile(creds.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read service account credentials: %w", err)
		}
		c, err := google.CredentialsFromJSON(ctx, data, CalendarScopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
		}
		logger.Debug("using service account credentials", "file", creds.ServiceAccountFile)
		return []option.ClientOption{option.WithCredentials(c)}, nil
	}

	if creds.TokenFile != "" {
		ts, err := TokenSource(ctx, creds, NewFileTokenProvider(creds.TokenFile), logger)
		if err != nil {
			return nil, err
		}
		logger.Debug("using stored OAuth token", "file", creds.TokenFile)
		return []option.ClientOption{option.WithTokenSource(ts)}, nil
	}

	return nil, fmt.Errorf("no Google credentials configured: set service_account_credentials_json or token_file")
}

// TokenSource returns a refreshing token source over the provider's token.
// Refreshed tokens are written back when the provider is file-based.
func TokenSource(ctx context.Context, creds Credentials, provider TokenProvider, logger *slog.Logger) (oauth2.TokenSource, error) {
	conf, err := OAuthConfig(creds.ClientID, creds.ClientSecret)
	if err != nil {
		return nil, err
	}

	token, err := provider.Token(ctx)
	if err != nil {
		return nil, err
	}

	ts := conf.TokenSource(ctx, token)
	if fp, ok := provider.(*FileTokenProvider); ok {
		return oauth2.ReuseTokenSource(token, newPersistingTokenSource(ts, fp.Path(), token, logger)), nil
	}
	return ts, nil
}
