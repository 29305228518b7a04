// Package feed pulls live standings from an external source.
package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/codergirlprerna/t20-predictor/backend/internal/display"
	"github.com/codergirlprerna/t20-predictor/backend/internal/tournament"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/config"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/httputil"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/logger"
)

// ErrNoFeed is returned when FEED_URL is not configured
var ErrNoFeed = errors.New("FEED_URL is not configured")

// Source returns the current tournament state
type Source interface {
	Fetch(ctx context.Context) (*tournament.Snapshot, error)
}

// NewSource picks the source for FEED_FORMAT
// ⭐ SSOT: feed selection happens here only
func NewSource(cfg config.FeedConfig, client *httputil.Client, log *logger.Logger) (Source, error) {
	if cfg.URL == "" {
		return nil, ErrNoFeed
	}

	switch cfg.Format {
	case "", "json":
		return NewJSONSource(cfg.URL, client, log), nil
	case "html":
		return NewHTMLSource(cfg.URL, client, log), nil
	default:
		return nil, fmt.Errorf("unknown feed format %q", cfg.Format)
	}
}

// finish normalises display fields and validates
func finish(s *tournament.Snapshot) (*tournament.Snapshot, error) {
	for i := range s.Teams {
		t := &s.Teams[i]
		info := display.Info{Name: t.Name, ShortName: t.ShortName, Flag: t.FlagEmoji}
		t.ShortName = display.Code(info)
		t.FlagEmoji = display.Flag(info)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
