package models

import (
	"fmt"
	"time"
)

// Side — сторона, за которую играл клуб пользователя.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// MatchResult — исход матча с точки зрения клуба пользователя.
type MatchResult string

const (
	ResultWin  MatchResult = "win"
	ResultLoss MatchResult = "loss"
	ResultDraw MatchResult = "draw"
)

// MatchInfo — нормализованные метаданные одного матча.
type MatchInfo struct {
	MatchURL    string      `json:"match_url"`
	Date        time.Time   `json:"date"`
	HomeTeam    string      `json:"home_team"`
	AwayTeam    string      `json:"away_team"`
	Competition string      `json:"competition"`
	Round       string      `json:"round,omitempty"`
	HomeScore   int         `json:"home_score"`
	AwayScore   int         `json:"away_score"`
	UserTeam    Side        `json:"user_team"`
	Rival       string      `json:"rival"`
	Result      MatchResult `json:"result"`
	UserScore   int         `json:"user_score"`
	RivalScore  int         `json:"rival_score"`
}

// Score возвращает строку счёта в порядке "хозяева - гости".
func (m MatchInfo) Score() string {
	return fmt.Sprintf("%d - %d", m.HomeScore, m.AwayScore)
}

// MatchPlayer — накопленная статистика одного игрока клуба пользователя
// в одном матче, восстановленная из lineup и инцидентов.
type MatchPlayer struct {
	PlayerID      int      `json:"id"`
	Name          string   `json:"name"`
	Position      string   `json:"position,omitempty"`
	ShirtNumber   string   `json:"shirt_number,omitempty"`
	Starter       bool     `json:"starter"`
	Played        bool     `json:"played"`
	MinutesPlayed int      `json:"minutes_played"`
	Goals         int      `json:"goals"`
	Assists       int      `json:"assists"`
	YellowCard    bool     `json:"yellow_card"`
	RedCard       bool     `json:"red_card"`
	SourceRating  *float64 `json:"source_rating,omitempty"`
}

// MatchData — результат нормализации: метаданные матча и список игроков.
type MatchData struct {
	Info    MatchInfo     `json:"match_info"`
	Players []MatchPlayer `json:"players"`
}
