package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/clubratings/club-ratings/models"
	"github.com/clubratings/club-ratings/repositories"
)

// PlayerStats — накопленная статистика одного игрока по валорациям пользователя.
type PlayerStats struct {
	PlayerID      int     `json:"player_id"`
	Name          string  `json:"name"`
	RatingsCount  int     `json:"ratings_count"`
	AverageScore  float64 `json:"average_score"`
	Goals         int     `json:"goals"`
	Assists       int     `json:"assists"`
	MinutesPlayed int     `json:"minutes_played"`
	YellowCards   int     `json:"yellow_cards"`
	RedCards      int     `json:"red_cards"`
}

// RecentMatch — краткая сводка одного из последних оценённых матчей.
type RecentMatch struct {
	RatingID     int                `json:"rating_id"`
	Rival        string             `json:"rival"`
	Result       models.MatchResult `json:"result"`
	Score        string             `json:"score"`
	Date         string             `json:"date"`
	AverageScore float64            `json:"average_score,omitempty"`
}

// DashboardStats — сводка для дашборда пользователя.
type DashboardStats struct {
	TotalRatings     int           `json:"total_ratings"`
	Wins             int           `json:"wins"`
	Draws            int           `json:"draws"`
	Losses           int           `json:"losses"`
	AverageTeamScore float64       `json:"average_team_score"`
	RecentMatches    []RecentMatch `json:"recent_matches"`
	Players          []PlayerStats `json:"players"`
}

// recentMatchesLimit — сколько последних матчей попадает в сводку.
const recentMatchesLimit = 5

type StatsService interface {
	// Dashboard агрегирует валорации пользователя по клубу.
	Dashboard(ctx context.Context, userID string, clubID *string) (*DashboardStats, error)
}

type statsService struct {
	ratingRepo repositories.RatingRepository
	userRepo   repositories.UserRepository
}

func NewStatsService(ratingRepo repositories.RatingRepository, userRepo repositories.UserRepository) StatsService {
	return &statsService{
		ratingRepo: ratingRepo,
		userRepo:   userRepo,
	}
}

func (s *statsService) Dashboard(ctx context.Context, userID string, clubID *string) (*DashboardStats, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	filter := repositories.RatingFilter{ClubID: clubID}
	if clubID != nil {
		filter.LegacyAsPrimary = user.ClubID != nil && *user.ClubID == *clubID
	}

	ratings, err := s.ratingRepo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}

	stats := ComputeDashboard(ratings)
	return &stats, nil
}

// ComputeDashboard — чистая агрегация списка валораций.
// Валорации ожидаются отсортированными от новых к старым.
func ComputeDashboard(ratings []models.Rating) DashboardStats {
	stats := DashboardStats{
		RecentMatches: []RecentMatch{},
		Players:       []PlayerStats{},
	}

	var teamScoreSum float64
	var teamScoreCount int

	type acc struct {
		PlayerStats
		scoreSum float64
	}
	players := make(map[int]*acc)

	for _, rating := range ratings {
		stats.TotalRatings++
		switch rating.Match.Result {
		case models.ResultWin:
			stats.Wins++
		case models.ResultDraw:
			stats.Draws++
		case models.ResultLoss:
			stats.Losses++
		}

		avg, rated := rating.AverageScore()
		if rated {
			teamScoreSum += avg
			teamScoreCount++
		}

		if len(stats.RecentMatches) < recentMatchesLimit {
			recent := RecentMatch{
				RatingID: rating.ID,
				Rival:    rating.Match.Rival,
				Result:   rating.Match.Result,
				Score:    rating.Match.Score(),
				Date:     rating.Match.Date.Format("2006-01-02"),
			}
			if rated {
				recent.AverageScore = avg
			}
			stats.RecentMatches = append(stats.RecentMatches, recent)
		}

		for _, p := range rating.Players {
			a := players[p.PlayerID]
			if a == nil {
				a = &acc{PlayerStats: PlayerStats{PlayerID: p.PlayerID, Name: p.Name}}
				players[p.PlayerID] = a
			}
			// Имя могло поменяться между матчами, берём последнее.
			a.Name = p.Name
			a.Goals += p.Goals
			a.Assists += p.Assists
			a.MinutesPlayed += p.MinutesPlayed
			if p.YellowCard {
				a.YellowCards++
			}
			if p.RedCard {
				a.RedCards++
			}
			if p.Score != nil {
				a.RatingsCount++
				a.scoreSum += *p.Score
			}
		}
	}

	if teamScoreCount > 0 {
		stats.AverageTeamScore = teamScoreSum / float64(teamScoreCount)
	}

	for _, a := range players {
		if a.RatingsCount > 0 {
			a.AverageScore = a.scoreSum / float64(a.RatingsCount)
		}
		stats.Players = append(stats.Players, a.PlayerStats)
	}
	// Лучшие по средней оценке сверху, без оценок — в конец.
	sort.Slice(stats.Players, func(i, j int) bool {
		a, b := stats.Players[i], stats.Players[j]
		if (a.RatingsCount > 0) != (b.RatingsCount > 0) {
			return a.RatingsCount > 0
		}
		if a.AverageScore != b.AverageScore {
			return a.AverageScore > b.AverageScore
		}
		return a.Name < b.Name
	})

	return stats
}
