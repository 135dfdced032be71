package besoccer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/clubratings/club-ratings/clubs"
	"github.com/clubratings/club-ratings/models"
)

// ErrNotClubMatch — на странице матча не нашлось команды выбранного клуба.
var ErrNotClubMatch = errors.New("match page does not mention the selected club")

// ErrNoFinishedMatch — в календаре команды нет завершённых матчей.
var ErrNoFinishedMatch = errors.New("no finished match found in fixtures")

// Минуты BeSoccer не публикует, титульному составу засчитывается номинальный матч.
const nominalMatchMinutes = 90

var (
	matchIDPattern = regexp.MustCompile(`/partido/[^/]+/[^/]+/(\d+)`)
	scorePattern   = regexp.MustCompile(`^\s*(\d+)\s*-\s*(\d+)\s*$`)
)

// ExtractMatchID вытаскивает числовой идентификатор из URL матча BeSoccer.
func ExtractMatchID(matchURL string) (string, bool) {
	m := matchIDPattern.FindStringSubmatch(matchURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// LineupURL приводит ссылку на матч к странице составов.
func LineupURL(matchURL string) string {
	if strings.Contains(matchURL, "/alineaciones") {
		return matchURL
	}
	return strings.TrimSuffix(matchURL, "/") + "/alineaciones"
}

// buildMatchData нормализует страницу составов в MatchData. Точной даты и
// турнира на странице нет, подставляются день запроса и лига по умолчанию.
func buildMatchData(doc *goquery.Document, club clubs.Club, matchURL string, now time.Time) (*models.MatchData, error) {
	teams := doc.Find(".team-name, .name-team")
	homeTeam := strings.TrimSpace(teams.Eq(0).Text())
	awayTeam := strings.TrimSpace(teams.Eq(1).Text())

	scores := doc.Find(".score, .result-score")
	homeScore := parseScore(scores.Eq(0).Text())
	awayScore := parseScore(scores.Eq(1).Text())

	var isHome bool
	switch {
	case containsClub(homeTeam, club):
		isHome = true
	case containsClub(awayTeam, club):
		isHome = false
	default:
		return nil, fmt.Errorf("%w: %s vs %s is not a %s match",
			ErrNotClubMatch, homeTeam, awayTeam, club.Name)
	}

	info := models.MatchInfo{
		MatchURL:    matchURL,
		Date:        now.Truncate(24 * time.Hour),
		HomeTeam:    homeTeam,
		AwayTeam:    awayTeam,
		Competition: "Liga Profesional",
		HomeScore:   homeScore,
		AwayScore:   awayScore,
	}
	if isHome {
		info.UserTeam = models.SideHome
		info.Rival = awayTeam
		info.UserScore = homeScore
		info.RivalScore = awayScore
	} else {
		info.UserTeam = models.SideAway
		info.Rival = homeTeam
		info.UserScore = awayScore
		info.RivalScore = homeScore
	}
	switch {
	case info.UserScore > info.RivalScore:
		info.Result = models.ResultWin
	case info.UserScore < info.RivalScore:
		info.Result = models.ResultLoss
	default:
		info.Result = models.ResultDraw
	}

	container := doc.Find(".team-away, .visitor-lineup").First()
	if isHome {
		container = doc.Find(".team-home, .local-lineup").First()
	}

	var players []models.MatchPlayer
	container.Find(".player, .player-name").Each(func(i int, el *goquery.Selection) {
		name := strings.TrimSpace(el.Find(".name").First().Text())
		if name == "" {
			name = strings.TrimSpace(el.Text())
		}
		if name == "" {
			name = fmt.Sprintf("Jugador %d", i+1)
		}
		number := strings.TrimSpace(el.Find(".number").First().Text())
		if number == "" {
			number = strconv.Itoa(i + 1)
		}
		starter := el.Closest(".substitutes, .bench").Length() == 0

		p := models.MatchPlayer{
			PlayerID:    i + 1,
			Name:        name,
			ShirtNumber: number,
			Starter:     starter,
			Played:      starter,
		}
		if starter {
			p.MinutesPlayed = nominalMatchMinutes
		}
		players = append(players, p)
	})

	return &models.MatchData{Info: info, Players: players}, nil
}

// parseFinishedFixtures собирает ссылки на завершённые матчи из календаря
// команды. Завершённость определяется по счёту "N - M" в строке матча;
// у запланированных вместо счёта время начала, live-матчи помечены отдельно.
func parseFinishedFixtures(doc *goquery.Document, baseURL string) []string {
	var urls []string
	seen := make(map[string]bool)

	doc.Find(`a[href*="/partido/"]`).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if a.HasClass("live") || a.Find(".live").Length() > 0 {
			return
		}
		if !hasFinalScore(a) {
			return
		}
		full := absoluteURL(baseURL, href)
		if seen[full] {
			return
		}
		seen[full] = true
		urls = append(urls, full)
	})
	return urls
}

func hasFinalScore(a *goquery.Selection) bool {
	found := false
	a.Find(".marker, .score, .result-score").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if scorePattern.MatchString(strings.TrimSpace(s.Text())) {
			found = true
			return false
		}
		return true
	})
	if found {
		return true
	}
	return scorePattern.MatchString(strings.TrimSpace(a.Text()))
}

func parseScore(text string) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0
	}
	return n
}

func containsClub(teamName string, club clubs.Club) bool {
	team := strings.ToLower(strings.TrimSpace(teamName))
	if team == "" {
		return false
	}
	return strings.Contains(team, strings.ToLower(club.Name)) ||
		strings.Contains(team, strings.ToLower(club.ShortName))
}

func absoluteURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return baseURL + href
}
