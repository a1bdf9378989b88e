package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/polasekp/strats/internal/core/domain"
	"github.com/polasekp/strats/internal/core/ports"
)

const defaultBaseURL = "https://www.strava.com/api/v3"

// Client implements ports.ActivitySource against the Strava v3 API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     ports.TokenProvider
	logger     ports.LoggerPort
}

func NewClient(tokens ports.TokenProvider, logger ports.LoggerPort) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		logger:     logger,
	}
}

func (c *Client) GetActivities(ctx context.Context, after, before *time.Time, limit int) ([]*domain.RemoteActivity, error) {
	params := url.Values{}
	params.Set("per_page", strconv.Itoa(limit))
	if after != nil {
		params.Set("after", strconv.FormatInt(after.Unix(), 10))
	}
	if before != nil {
		params.Set("before", strconv.FormatInt(before.Unix(), 10))
	}

	var wire []*wireActivity
	if err := c.getJSON(ctx, "/athlete/activities?"+params.Encode(), &wire); err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	activities := make([]*domain.RemoteActivity, 0, len(wire))
	for _, w := range wire {
		activities = append(activities, w.toRemote())
	}
	c.logger.Info("Fetched activities from Strava", map[string]interface{}{
		"count": len(activities),
	})
	return activities, nil
}

func (c *Client) GetActivity(ctx context.Context, id int64) (*domain.RemoteActivity, error) {
	var wire wireActivity
	if err := c.getJSON(ctx, fmt.Sprintf("/activities/%d", id), &wire); err != nil {
		return nil, fmt.Errorf("failed to get activity %d: %w", id, err)
	}
	return wire.toRemote(), nil
}

func (c *Client) GetGear(ctx context.Context, id string) (*domain.RemoteGear, error) {
	var wire wireGear
	if err := c.getJSON(ctx, "/gear/"+id, &wire); err != nil {
		return nil, fmt.Errorf("failed to get gear %s: %w", id, err)
	}
	return wire.toRemote(), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
