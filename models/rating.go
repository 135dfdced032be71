package models

import "time"

// RatedPlayer — запись об одном игроке внутри валорации: статистика матча
// плюс оценка пользователя. Score == nil означает "без оценки" (не вышел,
// либо пользователь пропустил игрока).
type RatedPlayer struct {
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
	Score         *float64 `json:"score,omitempty"`
}

// Rated сообщает, поставил ли пользователь оценку игроку.
func (p RatedPlayer) Rated() bool {
	return p.Score != nil
}

// Rating — валорация одного матча одним пользователем.
// Players хранится как JSONB-документ: состав фиксируется на момент матча
// и целиком переписывается при редактировании.
type Rating struct {
	ID     int     `json:"id" db:"id"`
	UserID string  `json:"user_id" db:"user_id"`
	ClubID *string `json:"club_id,omitempty" db:"club_id"`

	Match   MatchInfo     `json:"match_info" db:"match_info"`
	Players []RatedPlayer `json:"players" db:"players"`

	// ReactionCounts — агрегат по типам реакций, заполняется при чтении.
	ReactionCounts map[ReactionType]int `json:"reaction_counts,omitempty" db:"-"`
	CommentCount   int                  `json:"comment_count,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AverageScore — средняя оценка по игрокам с оценкой; ok=false, если оценок нет.
func (r *Rating) AverageScore() (avg float64, ok bool) {
	var sum float64
	var n int
	for _, p := range r.Players {
		if p.Score != nil {
			sum += *p.Score
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
