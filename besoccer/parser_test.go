package besoccer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/clubratings/club-ratings/clubs"
	"github.com/clubratings/club-ratings/models"
)

const lineupPageHTML = `
<html><body>
  <div class="match-header">
    <div class="team-name">River Plate</div>
    <div class="score">0</div>
    <div class="score">2</div>
    <div class="team-name">Racing Club</div>
  </div>
  <div class="team-home">
    <div class="player"><span class="number">1</span><span class="name">Franco Armani</span></div>
    <div class="player"><span class="number">9</span><span class="name">Miguel Borja</span></div>
    <div class="substitutes">
      <div class="player"><span class="number">20</span><span class="name">Facundo Colidio</span></div>
    </div>
  </div>
  <div class="team-away">
    <div class="player"><span class="number">25</span><span class="name">Gabriel Arias</span></div>
  </div>
</body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestBuildMatchData(t *testing.T) {
	river, _ := clubs.ByID("river")
	now := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)

	data, err := buildMatchData(mustDoc(t, lineupPageHTML), river, "https://es.besoccer.com/partido/river-plate/racing-club/2026123", now)
	if err != nil {
		t.Fatalf("buildMatchData() error = %v", err)
	}

	info := data.Info
	if info.HomeTeam != "River Plate" || info.AwayTeam != "Racing Club" {
		t.Errorf("teams = %q vs %q", info.HomeTeam, info.AwayTeam)
	}
	if info.UserTeam != models.SideHome {
		t.Errorf("UserTeam = %q, want %q", info.UserTeam, models.SideHome)
	}
	if info.UserScore != 0 || info.RivalScore != 2 {
		t.Errorf("UserScore/RivalScore = %d/%d, want 0/2", info.UserScore, info.RivalScore)
	}
	if info.Result != models.ResultLoss {
		t.Errorf("Result = %q, want %q", info.Result, models.ResultLoss)
	}
	if info.Rival != "Racing Club" {
		t.Errorf("Rival = %q, want %q", info.Rival, "Racing Club")
	}

	if len(data.Players) != 3 {
		t.Fatalf("len(Players) = %d, want 3 (only home lineup)", len(data.Players))
	}

	starter := data.Players[0]
	if starter.Name != "Franco Armani" || starter.ShirtNumber != "1" {
		t.Errorf("starter = %q #%s", starter.Name, starter.ShirtNumber)
	}
	if !starter.Starter || !starter.Played || starter.MinutesPlayed != 90 {
		t.Errorf("starter flags = starter %v, played %v, minutes %d", starter.Starter, starter.Played, starter.MinutesPlayed)
	}

	bench := data.Players[2]
	if bench.Name != "Facundo Colidio" {
		t.Errorf("bench name = %q", bench.Name)
	}
	if bench.Starter || bench.Played || bench.MinutesPlayed != 0 {
		t.Errorf("bench flags = starter %v, played %v, minutes %d", bench.Starter, bench.Played, bench.MinutesPlayed)
	}
}

func TestBuildMatchDataAwaySide(t *testing.T) {
	racing, _ := clubs.ByID("racing")

	data, err := buildMatchData(mustDoc(t, lineupPageHTML), racing, "https://es.besoccer.com/partido/x/y/1", time.Now().UTC())
	if err != nil {
		t.Fatalf("buildMatchData() error = %v", err)
	}
	if data.Info.UserTeam != models.SideAway {
		t.Errorf("UserTeam = %q, want %q", data.Info.UserTeam, models.SideAway)
	}
	if data.Info.Result != models.ResultWin {
		t.Errorf("Result = %q, want %q", data.Info.Result, models.ResultWin)
	}
	if len(data.Players) != 1 || data.Players[0].Name != "Gabriel Arias" {
		t.Fatalf("Players = %+v, want only the away lineup", data.Players)
	}
}

func TestBuildMatchDataRejectsForeignMatch(t *testing.T) {
	boca, _ := clubs.ByID("boca")

	_, err := buildMatchData(mustDoc(t, lineupPageHTML), boca, "https://es.besoccer.com/partido/x/y/1", time.Now().UTC())
	if !errors.Is(err, ErrNotClubMatch) {
		t.Fatalf("buildMatchData() error = %v, want ErrNotClubMatch", err)
	}
}

func TestParseFinishedFixtures(t *testing.T) {
	const fixturesHTML = `
<html><body>
  <a href="/partido/river-plate/lanus/2026001"><span class="marker">1 - 0</span></a>
  <a href="/partido/river-plate/tigre/2026002"><span class="marker">16:00</span></a>
  <a href="/partido/banfield/river-plate/2026003" class="live"><span class="marker">1 - 1</span></a>
  <a href="https://es.besoccer.com/partido/river-plate/boca-juniors/2026004"><span class="marker">2 - 2</span></a>
  <a href="/partido/river-plate/boca-juniors/2026004"><span class="marker">2 - 2</span></a>
  <a href="/noticias/algo">3 - 1</a>
</body></html>`

	urls := parseFinishedFixtures(mustDoc(t, fixturesHTML), "https://es.besoccer.com")
	want := []string{
		"https://es.besoccer.com/partido/river-plate/lanus/2026001",
		"https://es.besoccer.com/partido/river-plate/boca-juniors/2026004",
	}
	if len(urls) != len(want) {
		t.Fatalf("parseFinishedFixtures() = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestLineupURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://es.besoccer.com/partido/a/b/1", "https://es.besoccer.com/partido/a/b/1/alineaciones"},
		{"https://es.besoccer.com/partido/a/b/1/", "https://es.besoccer.com/partido/a/b/1/alineaciones"},
		{"https://es.besoccer.com/partido/a/b/1/alineaciones", "https://es.besoccer.com/partido/a/b/1/alineaciones"},
	}
	for _, tt := range tests {
		if got := LineupURL(tt.in); got != tt.want {
			t.Errorf("LineupURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractMatchID(t *testing.T) {
	id, ok := ExtractMatchID("https://es.besoccer.com/partido/river-plate/boca-juniors/2026123/alineaciones")
	if !ok || id != "2026123" {
		t.Errorf("ExtractMatchID() = (%q, %v), want (\"2026123\", true)", id, ok)
	}
	if _, ok := ExtractMatchID("https://es.besoccer.com/equipo/river-plate"); ok {
		t.Error("ExtractMatchID() matched a non-match url")
	}
}
