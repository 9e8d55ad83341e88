package google

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/gcalevents/internal/logging"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs.
// This abstraction allows different token sources to be plugged in.
type TokenProvider interface {
	// Token retrieves the stored OAuth token.
	Token(ctx context.Context) (*oauth2.Token, error)

	// HasToken checks if a token is available.
	HasToken() bool
}

// FileTokenProvider reads a JSON-encoded oauth2.Token from disk.
type FileTokenProvider struct {
	path string
}

// NewFileTokenProvider creates a token provider for the given file.
func NewFileTokenProvider(path string) *FileTokenProvider {
	return &FileTokenProvider{path: path}
}

// Path returns the token file location.
func (p *FileTokenProvider) Path() string {
	return p.path
}

// Token reads the token file.
func (p *FileTokenProvider) Token(_ context.Context) (*oauth2.Token, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("no Google OAuth token found at %s: %w", p.path, err)
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", p.path, err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s holds no access or refresh token", p.path)
	}
	return token, nil
}

// HasToken checks if the token file exists.
func (p *FileTokenProvider) HasToken() bool {
	if p.path == "" {
		return false
	}
	_, err := os.Stat(p.path)
	return err == nil
}

// SaveToken writes a token to path as JSON, creating parent directories.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// persistingTokenSource writes refreshed tokens back to disk so the next
// process start does not need to refresh again.
type persistingTokenSource struct {
	base   oauth2.TokenSource
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	last string
}

func newPersistingTokenSource(base oauth2.TokenSource, path string, initial *oauth2.Token, logger *slog.Logger) *persistingTokenSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &persistingTokenSource{
		base:   base,
		path:   path,
		logger: logger,
		last:   initial.AccessToken,
	}
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		s.last = token.AccessToken
		if err := SaveToken(s.path, token); err != nil {
			s.logger.Warn("failed to persist refreshed token", logging.Err(err))
		} else {
			s.logger.Debug("persisted refreshed token", "token", logging.SanitizeToken(token.AccessToken))
		}
	}
	return token, nil
}
