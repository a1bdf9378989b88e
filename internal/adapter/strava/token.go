package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
)

const tokenURL = "https://www.strava.com/oauth/token"

// TokenService implements ports.TokenProvider. It keeps the token pair in the
// repository and refreshes it through the OAuth endpoint when it is about to
// expire, so callers always see a live access token.
type TokenService struct {
	clientID     string
	clientSecret string
	repo         ports.TokenRepository
	httpClient   *http.Client
	logger       ports.LoggerPort

	mu sync.Mutex
}

func NewTokenService(clientID, clientSecret string, repo ports.TokenRepository, logger ports.LoggerPort) *TokenService {
	return &TokenService{
		clientID:     clientID,
		clientSecret: clientSecret,
		repo:         repo,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

func (s *TokenService) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.repo.GetToken(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("no stored token, authorize first")
		}
		return "", err
	}

	if !token.IsExpired(time.Now()) {
		return token.AccessToken, nil
	}

	refreshed, err := s.exchange(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {token.RefreshToken},
	})
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.logger.Info("Refreshed Strava access token", map[string]interface{}{
		"expires_at": refreshed.ExpiresAt,
	})
	return refreshed.AccessToken, nil
}

func (s *TokenService) IsValid(ctx context.Context) bool {
	token, err := s.repo.GetToken(ctx)
	if err != nil {
		return false
	}
	return !token.IsExpired(time.Now())
}

// ExchangeCode trades the one-time authorization code for the first token
// pair. Run once to bootstrap; refreshes take over afterwards.
func (s *TokenService) ExchangeCode(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.exchange(ctx, url.Values{
		"grant_type": {"authorization_code"},
		"code":       {code},
	})
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	s.logger.Info("Exchanged authorization code for token pair", nil)
	return nil
}

func (s *TokenService) exchange(ctx context.Context, params url.Values) (*domain.StravaToken, error) {
	params.Set("client_id", s.clientID)
	params.Set("client_secret", s.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected token exchange status code %d", resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	token := &domain.StravaToken{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpiresAt:    time.Unix(body.ExpiresAt, 0),
	}
	if err := s.repo.SaveToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	return token, nil
}
