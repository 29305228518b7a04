package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/codergirlprerna/t20-predictor/backend/internal/tournament"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/httputil"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

// JSONSource reads a standings document over HTTP
type JSONSource struct {
	client *httputil.Client
	url    string
	logger *logger.Logger
}

// NewJSONSource creates a JSON feed reader
func NewJSONSource(url string, client *httputil.Client, log *logger.Logger) *JSONSource {
	return &JSONSource{
		client: client,
		url:    url,
		logger: log.WithComponent("feed.json"),
	}
}

// payload accepts either "teams" as a list or "pointsTable" as a list or an
// object keyed by team id
type payload struct {
	Teams       []tournament.Team    `json:"teams"`
	PointsTable json.RawMessage      `json:"pointsTable"`
	Fixtures    []tournament.Fixture `json:"fixtures"`
	LastUpdated flexTime             `json:"lastUpdated"`
}

// Fetch downloads and decodes the feed
func (s *JSONSource) Fetch(ctx context.Context) (*tournament.Snapshot, error) {
	body, err := s.client.GetBody(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch json feed: %w", err)
	}

	snap, err := DecodeJSON(body)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"teams":    len(snap.Teams),
		"fixtures": len(snap.Fixtures),
	}).Debug("Fetched json standings")

	return snap, nil
}

// DecodeJSON turns a feed document into a validated snapshot
func DecodeJSON(body []byte) (*tournament.Snapshot, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode json feed: %w", err)
	}

	teams := p.Teams
	if len(teams) == 0 && len(p.PointsTable) > 0 {
		var err error
		if teams, err = decodePointsTable(p.PointsTable); err != nil {
			return nil, err
		}
	}

	return finish(&tournament.Snapshot{
		Teams:     teams,
		Fixtures:  p.Fixtures,
		UpdatedAt: time.Time(p.LastUpdated),
	})
}

func decodePointsTable(raw json.RawMessage) ([]tournament.Team, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var teams []tournament.Team
		if err := json.Unmarshal(raw, &teams); err != nil {
			return nil, fmt.Errorf("decode pointsTable: %w", err)
		}
		return teams, nil
	}

	var byKey map[string]tournament.Team
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return nil, fmt.Errorf("decode pointsTable: %w", err)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	teams := make([]tournament.Team, 0, len(keys))
	for _, k := range keys {
		teams = append(teams, byKey[k])
	}
	return teams, nil
}

// flexTime decodes unix milliseconds or an RFC 3339 string
type flexTime time.Time

func (f *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			*f = flexTime(time.UnixMilli(ms).UTC())
			return nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("lastUpdated: %w", err)
		}
		*f = flexTime(t.UTC())
		return nil
	}

	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("lastUpdated: %w", err)
	}
	*f = flexTime(time.UnixMilli(int64(ms)).UTC())
	return nil
}
