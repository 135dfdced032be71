package sofascore

import (
	"errors"
	"testing"
	"time"

	"github.com/clubratings/club-ratings/clubs"
	"github.com/clubratings/club-ratings/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestExtractMatchID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantID  string
		wantOK  bool
	}{
		{"hash format", "https://www.sofascore.com/football/match/river-plate-boca-juniors#id:12906721", "12906721", true},
		{"dash format", "https://www.sofascore.com/match/river-boca/id-12906721", "12906721", true},
		{"no id", "https://www.sofascore.com/football/match/river-plate-boca-juniors", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractMatchID(tt.url)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("ExtractMatchID(%q) = (%q, %v), want (%q, %v)", tt.url, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestMatchesClub(t *testing.T) {
	tests := []struct {
		name     string
		club     string
		home     string
		away     string
		clubID   int
		homeID   int
		awayID   int
		want     bool
	}{
		{"exact id home", "River", "River Plate", "Boca Juniors", 3211, 3211, 3202, true},
		{"exact id away", "River", "Boca Juniors", "River Plate", 3211, 3202, 3211, true},
		{"id mismatch wins over name", "Independiente", "Independiente Rivadavia", "Godoy Cruz", 3209, 36842, 6074, false},
		{"name exact no ids", "Independiente", "Independiente", "Racing Club", 0, 0, 0, true},
		{"prefix match accepted", "Racing", "Racing Club", "Lanús", 0, 0, 0, true},
		{"club name inside team name but not prefix", "Central", "Barracas Central", "Tigre", 0, 0, 0, false},
		{"case insensitive", "BOCA JUNIORS", "boca juniors", "Tigre", 0, 0, 0, true},
		{"no participation", "River", "Boca Juniors", "Racing Club", 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchesClub(tt.club, tt.home, tt.away, tt.clubID, tt.homeID, tt.awayID)
			if got != tt.want {
				t.Errorf("MatchesClub(%q, %q, %q) = %v, want %v", tt.club, tt.home, tt.away, got, tt.want)
			}
		})
	}
}

func testEvent() *Event {
	return &Event{
		ID:       12906721,
		Slug:     "boca-juniors-river-plate",
		HomeTeam: Team{ID: 3202, Name: "Boca Juniors"},
		AwayTeam: Team{ID: 3211, Name: "River Plate"},
		HomeScore: &Score{Display: intPtr(2)},
		AwayScore: &Score{Display: intPtr(1)},
		Tournament:     Tournament{Name: "Liga Profesional"},
		RoundInfo:      &RoundInfo{Round: intPtr(14)},
		StartTimestamp: 1755972000,
		Status:         &Status{Type: "finished"},
		Time:           &EventTime{InjuryTime1: intPtr(3), InjuryTime2: intPtr(6)},
	}
}

func testLineups() *Lineups {
	return &Lineups{
		Home: TeamLineup{Players: []LineupPlayer{
			{Player: PlayerRef{ID: 900, Name: "Home Keeper"}, Position: "G", ShirtNumber: intPtr(1)},
		}},
		Away: TeamLineup{Players: []LineupPlayer{
			{Player: PlayerRef{ID: 101, Name: "Franco Armani"}, Position: "G", ShirtNumber: intPtr(1), Statistics: &PlayerStatistics{Rating: floatPtr(6.8)}},
			{Player: PlayerRef{ID: 102, Name: "Marcos Acuña"}, Position: "D", ShirtNumber: intPtr(8)},
			{Player: PlayerRef{ID: 103, Name: "Miguel Borja"}, Position: "F", ShirtNumber: intPtr(9)},
			{Player: PlayerRef{ID: 201, Name: "Facundo Colidio"}, Position: "F", ShirtNumber: intPtr(20), Substitute: true},
			{Player: PlayerRef{ID: 202, Name: "Unused Sub"}, Position: "M", ShirtNumber: intPtr(30), Substitute: true},
		}},
	}
}

func testIncidents() []Incident {
	return []Incident{
		{IncidentType: "goal", Time: intPtr(12), IsHome: true, Player: &PlayerRef{ID: 900}},
		{IncidentType: "goal", Time: intPtr(40), IsHome: false, Player: &PlayerRef{ID: 103}, Assist1: &PlayerRef{ID: 102}},
		{IncidentType: "card", IncidentClass: "yellow", Time: intPtr(55), IsHome: false, Player: &PlayerRef{ID: 102}},
		{IncidentType: "substitution", Time: intPtr(63), IsHome: false, PlayerIn: &PlayerRef{ID: 201}, PlayerOut: &PlayerRef{ID: 103}},
		{IncidentType: "goal", Time: intPtr(78), IsHome: true, Player: &PlayerRef{ID: 900}},
		{IncidentType: "card", IncidentClass: "red", Time: intPtr(85), IsHome: false, Player: &PlayerRef{ID: 201}},
	}
}

func TestBuildMatchData(t *testing.T) {
	river, _ := clubs.ByID("river")

	data, err := BuildMatchData(testEvent(), testLineups(), testIncidents(), river, "https://www.sofascore.com/football/match/boca-juniors-river-plate#id:12906721")
	if err != nil {
		t.Fatalf("BuildMatchData() error = %v", err)
	}

	info := data.Info
	if info.UserTeam != models.SideAway {
		t.Errorf("UserTeam = %q, want %q", info.UserTeam, models.SideAway)
	}
	if info.Rival != "Boca Juniors" {
		t.Errorf("Rival = %q, want %q", info.Rival, "Boca Juniors")
	}
	if info.UserScore != 1 || info.RivalScore != 2 {
		t.Errorf("UserScore/RivalScore = %d/%d, want 1/2", info.UserScore, info.RivalScore)
	}
	if info.Result != models.ResultLoss {
		t.Errorf("Result = %q, want %q", info.Result, models.ResultLoss)
	}
	if info.Round != "14" {
		t.Errorf("Round = %q, want %q", info.Round, "14")
	}
	if info.Competition != "Liga Profesional" {
		t.Errorf("Competition = %q, want %q", info.Competition, "Liga Profesional")
	}
	wantDate := time.Unix(1755972000, 0).UTC()
	if !info.Date.Equal(wantDate) {
		t.Errorf("Date = %v, want %v", info.Date, wantDate)
	}
	if info.Score() != "2 - 1" {
		t.Errorf("Score() = %q, want %q", info.Score(), "2 - 1")
	}

	if len(data.Players) != 5 {
		t.Fatalf("len(Players) = %d, want 5", len(data.Players))
	}
	byID := make(map[int]models.MatchPlayer, len(data.Players))
	for _, p := range data.Players {
		byID[p.PlayerID] = p
	}

	// Матч длился 90 + 3 + 6 минут.
	const total = 99

	keeper := byID[101]
	if !keeper.Starter || !keeper.Played || keeper.MinutesPlayed != total {
		t.Errorf("keeper = starter %v, played %v, minutes %d; want true, true, %d",
			keeper.Starter, keeper.Played, keeper.MinutesPlayed, total)
	}
	if keeper.SourceRating == nil || *keeper.SourceRating != 6.8 {
		t.Errorf("keeper.SourceRating = %v, want 6.8", keeper.SourceRating)
	}

	assister := byID[102]
	if assister.Assists != 1 || !assister.YellowCard {
		t.Errorf("assister = assists %d, yellow %v; want 1, true", assister.Assists, assister.YellowCard)
	}

	scorer := byID[103]
	if scorer.Goals != 1 {
		t.Errorf("scorer.Goals = %d, want 1", scorer.Goals)
	}
	if scorer.MinutesPlayed != 63 {
		t.Errorf("scorer.MinutesPlayed = %d, want 63 (subbed off)", scorer.MinutesPlayed)
	}

	sub := byID[201]
	if sub.Starter || !sub.Played {
		t.Errorf("sub = starter %v, played %v; want false, true", sub.Starter, sub.Played)
	}
	if sub.MinutesPlayed != total-63 {
		t.Errorf("sub.MinutesPlayed = %d, want %d (entered at 63)", sub.MinutesPlayed, total-63)
	}
	if !sub.RedCard {
		t.Errorf("sub.RedCard = false, want true")
	}

	bench := byID[202]
	if bench.Played || bench.MinutesPlayed != 0 {
		t.Errorf("bench = played %v, minutes %d; want false, 0", bench.Played, bench.MinutesPlayed)
	}
	// Инциденты хозяев не должны попадать в статистику клуба гостей.
	if byID[101].Goals != 0 {
		t.Errorf("keeper.Goals = %d, want 0", byID[101].Goals)
	}
}

func TestBuildMatchDataRejectsForeignMatch(t *testing.T) {
	talleres, _ := clubs.ByID("talleres")

	_, err := BuildMatchData(testEvent(), testLineups(), nil, talleres, "https://www.sofascore.com/x#id:1")
	if !errors.Is(err, ErrNotClubMatch) {
		t.Fatalf("BuildMatchData() error = %v, want ErrNotClubMatch", err)
	}
}

func TestBuildMatchDataHomeSideDraw(t *testing.T) {
	boca, _ := clubs.ByID("boca")
	event := testEvent()
	event.AwayScore = &Score{Display: intPtr(2)}
	event.Time = nil

	data, err := BuildMatchData(event, testLineups(), nil, boca, "https://www.sofascore.com/x#id:1")
	if err != nil {
		t.Fatalf("BuildMatchData() error = %v", err)
	}
	if data.Info.UserTeam != models.SideHome {
		t.Errorf("UserTeam = %q, want %q", data.Info.UserTeam, models.SideHome)
	}
	if data.Info.Result != models.ResultDraw {
		t.Errorf("Result = %q, want %q", data.Info.Result, models.ResultDraw)
	}
	// Без добавленного времени титульный состав играет 90 минут.
	if got := data.Players[0].MinutesPlayed; got != 90 {
		t.Errorf("MinutesPlayed = %d, want 90", got)
	}
}

func TestSelectLastFinished(t *testing.T) {
	now := time.Unix(2000, 0)
	finished := func(id int, ts int64) TeamEvent {
		return TeamEvent{ID: id, Slug: "m", StartTimestamp: ts, Status: &Status{Type: "finished"}}
	}

	tests := []struct {
		name   string
		events []TeamEvent
		wantID int
		wantOK bool
	}{
		{"empty", nil, 0, false},
		{
			"picks latest finished",
			[]TeamEvent{finished(1, 100), finished(2, 500), finished(3, 300)},
			2, true,
		},
		{
			"skips in progress and scheduled",
			[]TeamEvent{
				finished(1, 100),
				{ID: 2, StartTimestamp: 400, Status: &Status{Type: "inprogress"}},
				{ID: 3, StartTimestamp: 3000, Status: &Status{Type: "finished"}},
				{ID: 4, StartTimestamp: 500, Status: &Status{Type: "notstarted"}},
			},
			1, true,
		},
		{
			"only future or unfinished",
			[]TeamEvent{
				{ID: 1, StartTimestamp: 5000, Status: &Status{Type: "finished"}},
				{ID: 2, StartTimestamp: 100, Status: &Status{Type: "postponed"}},
			},
			0, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := SelectLastFinished(tt.events, now)
			if ok != tt.wantOK || ev.ID != tt.wantID {
				t.Errorf("SelectLastFinished() = (id %d, %v), want (id %d, %v)", ev.ID, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestMatchURLRoundTrip(t *testing.T) {
	url := MatchURL("boca-juniors-river-plate", 12906721)
	id, ok := ExtractMatchID(url)
	if !ok || id != "12906721" {
		t.Fatalf("ExtractMatchID(MatchURL(...)) = (%q, %v), want (\"12906721\", true)", id, ok)
	}
}
