package services

import (
	"math"
	"testing"
	"time"

	"github.com/clubratings/club-ratings/models"
)

func score(v float64) *float64 { return &v }

func statsRating(result models.MatchResult, players ...models.RatedPlayer) models.Rating {
	return models.Rating{
		UserID: "u1",
		Match: models.MatchInfo{
			Date:   time.Now(),
			Result: result,
		},
		Players: players,
	}
}

func TestComputeDashboardEmpty(t *testing.T) {
	stats := ComputeDashboard(nil)
	if stats.TotalRatings != 0 || stats.AverageTeamScore != 0 {
		t.Errorf("empty dashboard = %+v", stats)
	}
	if stats.Players == nil {
		t.Error("Players should be an empty slice, not nil")
	}
}

func TestComputeDashboard(t *testing.T) {
	ratings := []models.Rating{
		statsRating(models.ResultWin,
			models.RatedPlayer{PlayerID: 1, Name: "Armani", MinutesPlayed: 95, Score: score(8)},
			models.RatedPlayer{PlayerID: 2, Name: "Borja", Goals: 2, MinutesPlayed: 90, Score: score(9), YellowCard: true},
			models.RatedPlayer{PlayerID: 3, Name: "Suplente", MinutesPlayed: 0},
		),
		statsRating(models.ResultLoss,
			models.RatedPlayer{PlayerID: 1, Name: "Armani", MinutesPlayed: 90, Score: score(6)},
			models.RatedPlayer{PlayerID: 2, Name: "Borja", Assists: 1, MinutesPlayed: 45, Score: score(5), RedCard: true},
		),
		statsRating(models.ResultDraw,
			models.RatedPlayer{PlayerID: 1, Name: "Armani", MinutesPlayed: 90},
		),
	}

	stats := ComputeDashboard(ratings)

	if stats.TotalRatings != 3 {
		t.Errorf("TotalRatings = %d, want 3", stats.TotalRatings)
	}
	if stats.Wins != 1 || stats.Draws != 1 || stats.Losses != 1 {
		t.Errorf("W/D/L = %d/%d/%d, want 1/1/1", stats.Wins, stats.Draws, stats.Losses)
	}

	// Средние по матчам: (8+9)/2 = 8.5 и (6+5)/2 = 5.5; матч без оценок не учитывается.
	if want := 7.0; math.Abs(stats.AverageTeamScore-want) > 1e-9 {
		t.Errorf("AverageTeamScore = %f, want %f", stats.AverageTeamScore, want)
	}

	byID := make(map[int]PlayerStats)
	for _, p := range stats.Players {
		byID[p.PlayerID] = p
	}

	armani := byID[1]
	if armani.RatingsCount != 2 || math.Abs(armani.AverageScore-7.0) > 1e-9 {
		t.Errorf("armani = count %d, avg %f; want 2, 7.0", armani.RatingsCount, armani.AverageScore)
	}
	if armani.MinutesPlayed != 275 {
		t.Errorf("armani.MinutesPlayed = %d, want 275", armani.MinutesPlayed)
	}

	borja := byID[2]
	if borja.Goals != 2 || borja.Assists != 1 {
		t.Errorf("borja goals/assists = %d/%d, want 2/1", borja.Goals, borja.Assists)
	}
	if borja.YellowCards != 1 || borja.RedCards != 1 {
		t.Errorf("borja cards = %d/%d, want 1/1", borja.YellowCards, borja.RedCards)
	}

	if len(stats.RecentMatches) != 3 {
		t.Fatalf("len(RecentMatches) = %d, want 3", len(stats.RecentMatches))
	}
	if stats.RecentMatches[0].Result != models.ResultWin {
		t.Errorf("RecentMatches[0].Result = %q, want win", stats.RecentMatches[0].Result)
	}
	if math.Abs(stats.RecentMatches[0].AverageScore-8.5) > 1e-9 {
		t.Errorf("RecentMatches[0].AverageScore = %f, want 8.5", stats.RecentMatches[0].AverageScore)
	}

	// Сортировка: игроки с оценками впереди, неоценённые в конце.
	last := stats.Players[len(stats.Players)-1]
	if last.PlayerID != 3 {
		t.Errorf("last player = %d, want unrated player 3", last.PlayerID)
	}
	if stats.Players[0].PlayerID != 2 {
		t.Errorf("first player = %d, want best rated player 2", stats.Players[0].PlayerID)
	}
}

func TestValidateScores(t *testing.T) {
	tests := []struct {
		name    string
		players []models.RatedPlayer
		wantErr error
	}{
		{"no scores", []models.RatedPlayer{{PlayerID: 1}}, nil},
		{"valid range", []models.RatedPlayer{{PlayerID: 1, Score: score(1)}, {PlayerID: 2, Score: score(10)}}, nil},
		{"too low", []models.RatedPlayer{{PlayerID: 1, Score: score(0.5)}}, ErrScoreOutOfRange},
		{"too high", []models.RatedPlayer{{PlayerID: 1, Score: score(10.5)}}, ErrScoreOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateScores(tt.players); err != tt.wantErr {
				t.Errorf("validateScores() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
