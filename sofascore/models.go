package sofascore

// Формы ответов публичного API api.sofascore.com/api/v1.
// Контракт внешний и нестабильный: почти все поля опциональны,
// отсутствующие значения получают нулевые умолчания на границе нормализатора.

// Team — участник события.
type Team struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Score — счёт одной стороны; Display отсутствует у незавершённых матчей.
type Score struct {
	Display *int `json:"display"`
}

func (s *Score) Value() int {
	if s == nil || s.Display == nil {
		return 0
	}
	return *s.Display
}

// EventTime — добавленное время по таймам.
type EventTime struct {
	InjuryTime1 *int `json:"injuryTime1"`
	InjuryTime2 *int `json:"injuryTime2"`
}

// RoundInfo — номер тура.
type RoundInfo struct {
	Round *int `json:"round"`
}

// Status — состояние события; Type принимает "finished", "inprogress",
// "notstarted" и другие значения источника.
type Status struct {
	Type string `json:"type"`
}

// Event — метаданные матча (ответ event/{id}).
type Event struct {
	ID             int        `json:"id"`
	Slug           string     `json:"slug"`
	HomeTeam       Team       `json:"homeTeam"`
	AwayTeam       Team       `json:"awayTeam"`
	HomeScore      *Score     `json:"homeScore"`
	AwayScore      *Score     `json:"awayScore"`
	Tournament     Tournament `json:"tournament"`
	RoundInfo      *RoundInfo `json:"roundInfo"`
	StartTimestamp int64      `json:"startTimestamp"`
	Status         *Status    `json:"status"`
	Time           *EventTime `json:"time"`
}

type Tournament struct {
	Name string `json:"name"`
}

type eventEnvelope struct {
	Event Event `json:"event"`
}

// PlayerRef — идентичность игрока внутри lineup и инцидентов.
type PlayerRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PlayerStatistics — статистика игрока в lineup; Rating — оценка источника (1-10).
type PlayerStatistics struct {
	Rating *float64 `json:"rating"`
}

// LineupPlayer — игрок в составе. Substitute=true означает запасного;
// в players источник кладёт и стартовый состав, и скамейку.
type LineupPlayer struct {
	Player      PlayerRef         `json:"player"`
	Position    string            `json:"position"`
	ShirtNumber *int              `json:"shirtNumber"`
	Substitute  bool              `json:"substitute"`
	Statistics  *PlayerStatistics `json:"statistics"`
}

// TeamLineup — состав одной стороны.
type TeamLineup struct {
	Players []LineupPlayer `json:"players"`
}

// Lineups — ответ event/{id}/lineups.
type Lineups struct {
	Home TeamLineup `json:"home"`
	Away TeamLineup `json:"away"`
}

// Incident — дискретное событие матча (ответ event/{id}/incidents).
// IncidentType: "goal", "card", "substitution", прочие игнорируются.
type Incident struct {
	IncidentType  string     `json:"incidentType"`
	IncidentClass string     `json:"incidentClass"`
	Time          *int       `json:"time"`
	IsHome        bool       `json:"isHome"`
	Player        *PlayerRef `json:"player"`
	Assist1       *PlayerRef `json:"assist1"`
	PlayerIn      *PlayerRef `json:"playerIn"`
	PlayerOut     *PlayerRef `json:"playerOut"`
}

func (i Incident) Minute() int {
	if i.Time == nil {
		return 0
	}
	return *i.Time
}

type incidentsEnvelope struct {
	Incidents []Incident `json:"incidents"`
}

// TeamEvent — элемент ленты событий команды (ответ team/{id}/events/last/0).
type TeamEvent struct {
	ID             int     `json:"id"`
	Slug           string  `json:"slug"`
	StartTimestamp int64   `json:"startTimestamp"`
	Status         *Status `json:"status"`
}

func (e TeamEvent) Finished() bool {
	return e.Status != nil && e.Status.Type == "finished"
}

type teamEventsEnvelope struct {
	Events []TeamEvent `json:"events"`
}
