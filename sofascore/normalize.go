package sofascore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clubratings/club-ratings/clubs"
	"github.com/clubratings/club-ratings/models"
)

// ErrNotClubMatch — матч не принадлежит выбранному клубу; данные игроков не возвращаются.
var ErrNotClubMatch = errors.New("match does not belong to the selected club")

// ErrNoFinishedMatch — в ленте команды нет завершённых матчей в прошлом.
var ErrNoFinishedMatch = errors.New("no finished match found for team")

const nominalMatchMinutes = 90

var matchIDPattern = regexp.MustCompile(`id[:\-](\d+)`)

// ExtractMatchID вытаскивает идентификатор матча из URL Sofascore
// (формат "...#id:12345" либо "...id-12345").
func ExtractMatchID(matchURL string) (string, bool) {
	m := matchIDPattern.FindStringSubmatch(matchURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// MatchURL строит каноническую ссылку на матч в формате, который понимает ExtractMatchID.
func MatchURL(slug string, id int) string {
	return fmt.Sprintf("https://www.sofascore.com/football/match/%s#id:%d", slug, id)
}

// MatchesClub решает, участвует ли клуб в матче. Числовые идентификаторы
// Sofascore, если они есть с обеих сторон, дают точное сравнение; иначе
// применяется сравнение имён с защитой от ложных срабатываний по префиксу.
func MatchesClub(clubName, homeTeam, awayTeam string, clubID, homeID, awayID int) bool {
	if clubID != 0 && (homeID != 0 || awayID != 0) {
		return clubID == homeID || clubID == awayID
	}
	return nameMatchesClub(homeTeam, clubName) || nameMatchesClub(awayTeam, clubName)
}

// nameMatchesClub сравнивает имя команды с именем клуба без учёта регистра.
// Точное совпадение принимается сразу; частичное — только когда имя команды
// начинается со слов клуба. Так "Independiente" не совпадает с
// "Independiente Rivadavia" как подстрока в середине, а совпадение по началу
// остаётся сознательным допущением исходной эвристики.
func nameMatchesClub(teamName, clubName string) bool {
	team := strings.ToLower(strings.TrimSpace(teamName))
	club := strings.ToLower(strings.TrimSpace(clubName))
	if team == "" || club == "" {
		return false
	}
	if team == club {
		return true
	}
	if !strings.Contains(team, club) {
		return false
	}
	if len(team) > len(club) {
		teamWords := strings.Join(strings.Fields(team), " ")
		clubWords := strings.Join(strings.Fields(club), " ")
		return strings.HasPrefix(teamWords, clubWords)
	}
	return true
}

// clubInEvent проверяет обе формы имени клуба против участников события.
func clubInEvent(event *Event, club clubs.Club) bool {
	return MatchesClub(club.ShortName, event.HomeTeam.Name, event.AwayTeam.Name,
		club.SofascoreID, event.HomeTeam.ID, event.AwayTeam.ID) ||
		MatchesClub(club.Name, event.HomeTeam.Name, event.AwayTeam.Name,
			club.SofascoreID, event.HomeTeam.ID, event.AwayTeam.ID)
}

// clubIsHome определяет сторону клуба: по идентификатору, если он известен,
// иначе по имени хозяев.
func clubIsHome(event *Event, club clubs.Club) bool {
	if club.SofascoreID != 0 {
		return event.HomeTeam.ID == club.SofascoreID
	}
	return nameMatchesClub(event.HomeTeam.Name, club.ShortName) ||
		nameMatchesClub(event.HomeTeam.Name, club.Name)
}

// FetchMatchData загружает событие, составы и инциденты (параллельно) и
// нормализует их в MatchData для клуба пользователя.
func (c *Client) FetchMatchData(ctx context.Context, matchURL string, club clubs.Club) (*models.MatchData, error) {
	matchID, ok := ExtractMatchID(matchURL)
	if !ok {
		return nil, fmt.Errorf("invalid sofascore match url %q", matchURL)
	}

	var (
		event     *Event
		lineups   *Lineups
		incidents []Incident
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		event, err = c.Event(gctx, matchID)
		return err
	})
	g.Go(func() (err error) {
		lineups, err = c.Lineups(gctx, matchID)
		return err
	})
	g.Go(func() (err error) {
		incidents, err = c.Incidents(gctx, matchID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildMatchData(event, lineups, incidents, club, matchURL)
}

// BuildMatchData — чистая нормализация уже загруженных данных.
func BuildMatchData(event *Event, lineups *Lineups, incidents []Incident, club clubs.Club, matchURL string) (*models.MatchData, error) {
	if !clubInEvent(event, club) {
		return nil, fmt.Errorf("%w: %s vs %s is not a %s match",
			ErrNotClubMatch, event.HomeTeam.Name, event.AwayTeam.Name, club.Name)
	}

	isHome := clubIsHome(event, club)

	injury1, injury2 := 0, 0
	if event.Time != nil {
		if event.Time.InjuryTime1 != nil {
			injury1 = *event.Time.InjuryTime1
		}
		if event.Time.InjuryTime2 != nil {
			injury2 = *event.Time.InjuryTime2
		}
	}
	totalMinutes := nominalMatchMinutes + injury1 + injury2

	homeScore := event.HomeScore.Value()
	awayScore := event.AwayScore.Value()

	info := models.MatchInfo{
		MatchURL:    matchURL,
		Date:        time.Unix(event.StartTimestamp, 0).UTC(),
		HomeTeam:    event.HomeTeam.Name,
		AwayTeam:    event.AwayTeam.Name,
		Competition: event.Tournament.Name,
		HomeScore:   homeScore,
		AwayScore:   awayScore,
	}
	if event.RoundInfo != nil && event.RoundInfo.Round != nil {
		info.Round = strconv.Itoa(*event.RoundInfo.Round)
	}

	if isHome {
		info.UserTeam = models.SideHome
		info.Rival = event.AwayTeam.Name
		info.UserScore = homeScore
		info.RivalScore = awayScore
	} else {
		info.UserTeam = models.SideAway
		info.Rival = event.HomeTeam.Name
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

	lineup := lineups.Away
	if isHome {
		lineup = lineups.Home
	}

	players := make([]models.MatchPlayer, 0, len(lineup.Players))
	index := make(map[int]*models.MatchPlayer, len(lineup.Players))
	for _, lp := range lineup.Players {
		p := models.MatchPlayer{
			PlayerID: lp.Player.ID,
			Name:     lp.Player.Name,
			Position: lp.Position,
			Starter:  !lp.Substitute,
			Played:   !lp.Substitute,
		}
		if lp.ShirtNumber != nil {
			p.ShirtNumber = strconv.Itoa(*lp.ShirtNumber)
		}
		if p.Starter {
			// Титульный состав условно играет весь матч; замены скорректируют ниже.
			p.MinutesPlayed = totalMinutes
		}
		if lp.Statistics != nil && lp.Statistics.Rating != nil {
			r := *lp.Statistics.Rating
			p.SourceRating = &r
		}
		players = append(players, p)
		index[p.PlayerID] = &players[len(players)-1]
	}

	applyIncidents(players, index, incidents, isHome, totalMinutes)

	return &models.MatchData{Info: info, Players: players}, nil
}

// applyIncidents проходит инциденты в хронологическом порядке и накапливает
// голы, передачи, карточки и сыгранные минуты. Повторный выход игрока после
// замены не моделируется (одна замена на игрока).
func applyIncidents(players []models.MatchPlayer, index map[int]*models.MatchPlayer, incidents []Incident, isHome bool, totalMinutes int) {
	sorted := make([]Incident, len(incidents))
	copy(sorted, incidents)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Minute() < sorted[j].Minute()
	})

	// Минута выхода на поле для игроков, вошедших с замены.
	entryMinute := make(map[int]int)

	for _, inc := range sorted {
		if inc.IsHome != isHome {
			continue
		}

		switch inc.IncidentType {
		case "goal":
			if inc.Player != nil {
				if p := index[inc.Player.ID]; p != nil {
					p.Goals++
				}
			}
			if inc.Assist1 != nil {
				if p := index[inc.Assist1.ID]; p != nil {
					p.Assists++
				}
			}
		case "card":
			if inc.Player == nil {
				continue
			}
			p := index[inc.Player.ID]
			if p == nil {
				continue
			}
			switch inc.IncidentClass {
			case "yellow":
				p.YellowCard = true
			case "red":
				p.RedCard = true
			}
		case "substitution":
			minute := inc.Minute()
			if inc.PlayerOut != nil {
				if p := index[inc.PlayerOut.ID]; p != nil {
					if entry, ok := entryMinute[p.PlayerID]; ok {
						p.MinutesPlayed += minute - entry
						delete(entryMinute, p.PlayerID)
					} else if p.Starter {
						p.MinutesPlayed = minute
					}
				}
			}
			if inc.PlayerIn != nil {
				if p := index[inc.PlayerIn.ID]; p != nil {
					entryMinute[p.PlayerID] = minute
					p.Played = true
				}
			}
		}
	}

	// Вышедшие на замену и доигравшие до конца.
	for id, entry := range entryMinute {
		if p := index[id]; p != nil {
			p.MinutesPlayed += totalMinutes - entry
		}
	}
}

// LastMatchURL возвращает ссылку на самый свежий завершённый матч команды.
func (c *Client) LastMatchURL(ctx context.Context, teamID int) (string, error) {
	events, err := c.LastEvents(ctx, teamID)
	if err != nil {
		return "", err
	}
	ev, ok := SelectLastFinished(events, time.Now())
	if !ok {
		return "", ErrNoFinishedMatch
	}
	return MatchURL(ev.Slug, ev.ID), nil
}

// SelectLastFinished выбирает из ленты самый поздний завершённый матч,
// стартовавший в прошлом; запланированные и идущие игнорируются.
func SelectLastFinished(events []TeamEvent, now time.Time) (TeamEvent, bool) {
	cutoff := now.Unix()
	var best TeamEvent
	found := false
	for _, ev := range events {
		if !ev.Finished() || ev.StartTimestamp >= cutoff {
			continue
		}
		if !found || ev.StartTimestamp > best.StartTimestamp {
			best = ev
			found = true
		}
	}
	return best, found
}
