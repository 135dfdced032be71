// Package sofascore получает и нормализует данные матчей из публичного API
// Sofascore: событие, составы и инциденты превращаются в плоский список
// выступлений игроков клуба пользователя.
package sofascore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clubratings/club-ratings/scrape"
)

const defaultBaseURL = "https://api.sofascore.com/api/v1"

// Client — клиент API Sofascore поверх scrape.Fetcher.
type Client struct {
	fetcher *scrape.Fetcher
	baseURL string
}

func NewClient(fetcher *scrape.Fetcher, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		fetcher: fetcher,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Event возвращает метаданные матча.
func (c *Client) Event(ctx context.Context, matchID string) (*Event, error) {
	var env eventEnvelope
	if err := c.getJSON(ctx, fmt.Sprintf("%s/event/%s", c.baseURL, matchID), &env); err != nil {
		return nil, fmt.Errorf("event %s: %w", matchID, err)
	}
	return &env.Event, nil
}

// Lineups возвращает составы обеих сторон.
func (c *Client) Lineups(ctx context.Context, matchID string) (*Lineups, error) {
	var lineups Lineups
	if err := c.getJSON(ctx, fmt.Sprintf("%s/event/%s/lineups", c.baseURL, matchID), &lineups); err != nil {
		return nil, fmt.Errorf("lineups %s: %w", matchID, err)
	}
	return &lineups, nil
}

// Incidents возвращает события матча (голы, карточки, замены).
func (c *Client) Incidents(ctx context.Context, matchID string) ([]Incident, error) {
	var env incidentsEnvelope
	if err := c.getJSON(ctx, fmt.Sprintf("%s/event/%s/incidents", c.baseURL, matchID), &env); err != nil {
		return nil, fmt.Errorf("incidents %s: %w", matchID, err)
	}
	return env.Incidents, nil
}

// LastEvents возвращает последние события команды.
func (c *Client) LastEvents(ctx context.Context, teamID int) ([]TeamEvent, error) {
	var env teamEventsEnvelope
	if err := c.getJSON(ctx, fmt.Sprintf("%s/team/%d/events/last/0", c.baseURL, teamID), &env); err != nil {
		return nil, fmt.Errorf("team %d events: %w", teamID, err)
	}
	return env.Events, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dst interface{}) error {
	res, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(res.Body, dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
