// Package besoccer — резервный источник данных о матчах: HTML-страницы
// es.besoccer.com. В отличие от Sofascore здесь нет инцидентов, поэтому
// голы, карточки и точные минуты не восстанавливаются.
package besoccer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/clubratings/club-ratings/clubs"
	"github.com/clubratings/club-ratings/models"
	"github.com/clubratings/club-ratings/scrape"
)

const defaultBaseURL = "https://es.besoccer.com"

// Client загружает страницы BeSoccer через scrape.Fetcher.
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

// FetchMatchData загружает страницу составов матча и нормализует её в MatchData.
func (c *Client) FetchMatchData(ctx context.Context, matchURL string, club clubs.Club) (*models.MatchData, error) {
	res, err := c.fetcher.Fetch(ctx, LineupURL(matchURL))
	if err != nil {
		return nil, fmt.Errorf("besoccer match page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse besoccer html: %w", err)
	}
	return buildMatchData(doc, club, matchURL, time.Now().UTC())
}

// LastMatchURL возвращает ссылку на последний завершённый матч команды
// со страницы календаря.
func (c *Client) LastMatchURL(ctx context.Context, teamSlug string) (string, error) {
	fixturesURL := fmt.Sprintf("%s/equipo/partidos/%s", c.baseURL, teamSlug)
	res, err := c.fetcher.Fetch(ctx, fixturesURL)
	if err != nil {
		return "", fmt.Errorf("besoccer fixtures page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return "", fmt.Errorf("failed to parse besoccer html: %w", err)
	}

	fixtures := parseFinishedFixtures(doc, c.baseURL)
	if len(fixtures) == 0 {
		return "", ErrNoFinishedMatch
	}
	// Календарь идёт в хронологическом порядке, последний в списке — самый свежий.
	return fixtures[len(fixtures)-1], nil
}

// FinishedFixtures извлекает ссылки на завершённые матчи из уже загруженной
// страницы календаря. Используется прокси-эндпоинтом, который получает HTML отдельно.
func FinishedFixtures(body []byte, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse besoccer html: %w", err)
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return parseFinishedFixtures(doc, strings.TrimSuffix(baseURL, "/")), nil
}
