package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/clubratings/club-ratings/besoccer"
	"github.com/clubratings/club-ratings/clubs"
	"github.com/clubratings/club-ratings/models"
	"github.com/clubratings/club-ratings/sofascore"
)

// MatchSource — источник данных о матче.
type MatchSource string

const (
	SourceSofascore MatchSource = "sofascore"
	SourceBesoccer  MatchSource = "besoccer"
)

type MatchService interface {
	// FetchMatchData загружает и нормализует данные матча для клуба.
	// Пустой source выводится из URL, по умолчанию Sofascore.
	FetchMatchData(ctx context.Context, matchURL, clubID string, source MatchSource) (*models.MatchData, error)
	// LastMatchURL возвращает ссылку на последний завершённый матч клуба.
	LastMatchURL(ctx context.Context, clubID string, source MatchSource) (string, error)
}

type matchService struct {
	sofascore *sofascore.Client
	besoccer  *besoccer.Client
}

func NewMatchService(sofascoreClient *sofascore.Client, besoccerClient *besoccer.Client) MatchService {
	return &matchService{
		sofascore: sofascoreClient,
		besoccer:  besoccerClient,
	}
}

func (s *matchService) FetchMatchData(ctx context.Context, matchURL, clubID string, source MatchSource) (*models.MatchData, error) {
	club, ok := clubs.ByID(clubID)
	if !ok {
		return nil, ErrUnknownClub
	}

	if source == "" {
		source = detectSource(matchURL)
	}

	switch source {
	case SourceSofascore:
		return s.sofascore.FetchMatchData(ctx, matchURL, club)
	case SourceBesoccer:
		return s.besoccer.FetchMatchData(ctx, matchURL, club)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMatchSource, source)
	}
}

func (s *matchService) LastMatchURL(ctx context.Context, clubID string, source MatchSource) (string, error) {
	club, ok := clubs.ByID(clubID)
	if !ok {
		return "", ErrUnknownClub
	}
	if source == "" {
		source = SourceSofascore
	}

	switch source {
	case SourceSofascore:
		if club.SofascoreID == 0 {
			return "", fmt.Errorf("%w: club %s has no sofascore id", ErrUnsupportedMatchSource, club.ID)
		}
		return s.sofascore.LastMatchURL(ctx, club.SofascoreID)
	case SourceBesoccer:
		if club.BesoccerSlug == "" {
			return "", fmt.Errorf("%w: club %s has no besoccer slug", ErrUnsupportedMatchSource, club.ID)
		}
		return s.besoccer.LastMatchURL(ctx, club.BesoccerSlug)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMatchSource, source)
	}
}

func detectSource(matchURL string) MatchSource {
	if strings.Contains(matchURL, "besoccer.com") {
		return SourceBesoccer
	}
	return SourceSofascore
}
