package feed

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
	"github.com/codergirlprerna/t20-predictor/backend/internal/tournament"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/httputil"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

// HTMLSource scrapes a standings page.
//
// Expected markup:
//
//	<table class="points-table">
//	  <tr data-team-id="1" data-group="1">
//	    <td class="team">India</td> <td class="short">IND</td>
//	    <td class="played">3</td> <td class="won">3</td> <td class="lost">0</td>
//	    <td class="nr">0</td> <td class="points">6</td> <td class="nrr">+1.234</td>
//	  </tr>
//	</table>
//	<li class="fixture" data-id="m41" data-team1="1" data-team2="2" data-start="2024-06-24T14:30:00Z">
//	  <span class="venue">Gros Islet</span>
//	</li>
//	<time class="last-updated" datetime="2024-06-24T10:00:00Z"></time>
type HTMLSource struct {
	client *httputil.Client
	url    string
	logger *logger.Logger
}

// NewHTMLSource creates a scraping source
func NewHTMLSource(url string, client *httputil.Client, log *logger.Logger) *HTMLSource {
	return &HTMLSource{
		client: client,
		url:    url,
		logger: log.WithComponent("feed.html"),
	}
}

// Fetch downloads and parses the page
func (s *HTMLSource) Fetch(ctx context.Context) (*tournament.Snapshot, error) {
	body, err := s.client.GetBody(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch html feed: %w", err)
	}

	snap, err := ParseHTML(body)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"teams":    len(snap.Teams),
		"fixtures": len(snap.Fixtures),
	}).Debug("Scraped html standings")

	return snap, nil
}

// ParseHTML extracts a validated snapshot from a standings page
func ParseHTML(body []byte) (*tournament.Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html feed: %w", err)
	}

	snap := &tournament.Snapshot{}
	var parseErr error

	doc.Find("table.points-table tr[data-team-id]").EachWithBreak(func(i int, row *goquery.Selection) bool {
		id, _ := row.Attr("data-team-id")
		group, _ := row.Attr("data-group")

		team := tournament.Team{
			ID:        qualification.TeamID(strings.TrimSpace(id)),
			Group:     qualification.GroupID(strings.TrimSpace(group)),
			Name:      cell(row, "team"),
			ShortName: cell(row, "short"),
		}

		ints := []struct {
			class string
			dst   *int
		}{
			{"played", &team.Played},
			{"won", &team.Won},
			{"lost", &team.Lost},
			{"nr", &team.NoResult},
			{"points", &team.Points},
		}
		for _, f := range ints {
			if *f.dst, err = parseInt(cell(row, f.class)); err != nil {
				parseErr = fmt.Errorf("team %s %s: %w", id, f.class, err)
				return false
			}
		}
		if team.NRR, err = parseNRR(cell(row, "nrr")); err != nil {
			parseErr = fmt.Errorf("team %s nrr: %w", id, err)
			return false
		}

		snap.Teams = append(snap.Teams, team)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	doc.Find(".fixture").EachWithBreak(func(i int, item *goquery.Selection) bool {
		f := tournament.Fixture{
			ID:    attr(item, "data-id"),
			Group: qualification.GroupID(attr(item, "data-group")),
			Team1: qualification.TeamID(attr(item, "data-team1")),
			Team2: qualification.TeamID(attr(item, "data-team2")),
			Venue: strings.TrimSpace(item.Find(".venue").First().Text()),
		}
		if start := attr(item, "data-start"); start != "" {
			if f.StartsAt, err = time.Parse(time.RFC3339, start); err != nil {
				parseErr = fmt.Errorf("fixture %s start: %w", f.ID, err)
				return false
			}
		}
		snap.Fixtures = append(snap.Fixtures, f)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	if ts := attr(doc.Find("time.last-updated").First(), "datetime"); ts != "" {
		if snap.UpdatedAt, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, fmt.Errorf("last updated: %w", err)
		}
		snap.UpdatedAt = snap.UpdatedAt.UTC()
	}

	return finish(snap)
}

func cell(row *goquery.Selection, class string) string {
	return strings.TrimSpace(row.Find("td." + class).First().Text())
}

func attr(sel *goquery.Selection, name string) string {
	v, _ := sel.Attr(name)
	return strings.TrimSpace(v)
}

func parseInt(s string) (int, error) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseNRR(s string) (float64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	// some pages print a unicode minus
	s = strings.ReplaceAll(s, "−", "-")
	if s == "" || s == "-" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
