package tournament

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codergirlprerna/t20-predictor/backend/internal/qualification"
	"github.com/codergirlprerna/t20-predictor/backend/pkg/database"
)

// Store persists standings, chances and the prediction log
type Store interface {
	SaveSnapshot(ctx context.Context, s *Snapshot) error
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
	SaveChances(ctx context.Context, chances []Chance) error
	ListChances(ctx context.Context, group qualification.GroupID) ([]Chance, error)
	SavePrediction(ctx context.Context, p *Prediction) error
	PrunePredictions(ctx context.Context, before time.Time) (int64, error)
}

// Repository is the PostgreSQL Store
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		short_name  TEXT NOT NULL DEFAULT '',
		flag_emoji  TEXT NOT NULL DEFAULT '',
		group_name  TEXT NOT NULL,
		played      INT NOT NULL DEFAULT 0,
		won         INT NOT NULL DEFAULT 0,
		lost        INT NOT NULL DEFAULT 0,
		no_result   INT NOT NULL DEFAULT 0,
		points      INT NOT NULL DEFAULT 0,
		nrr         DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS fixtures (
		id         TEXT PRIMARY KEY,
		group_name TEXT NOT NULL,
		team1_id   TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		team2_id   TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		starts_at  TIMESTAMPTZ,
		venue      TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS snapshot_meta (
		id         SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS qualification_chances (
		team_id     TEXT PRIMARY KEY REFERENCES teams(id) ON DELETE CASCADE,
		group_name  TEXT NOT NULL,
		percentage  DOUBLE PRECISION NOT NULL,
		status      TEXT NOT NULL,
		computed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		id            UUID PRIMARY KEY,
		group_name    TEXT NOT NULL,
		team1_id      TEXT NOT NULL,
		team2_id      TEXT NOT NULL,
		winner_id     TEXT NOT NULL,
		winner_before DOUBLE PRECISION NOT NULL,
		winner_after  DOUBLE PRECISION NOT NULL,
		ripple_count  INT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS predictions_created_at_idx ON predictions (created_at)`,
}

// Migrate creates the tables if they do not exist
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// SaveSnapshot replaces the stored tournament state in one transaction.
// The meta row is locked first so concurrent writers serialise; a snapshot
// older than the stored one is rejected with ErrStaleSnapshot.
func (r *Repository) SaveSnapshot(ctx context.Context, s *Snapshot) error {
	ids := make([]string, len(s.Teams))
	for i, t := range s.Teams {
		ids[i] = string(t.ID)
	}

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var stored time.Time
		err := tx.QueryRow(ctx, `SELECT updated_at FROM snapshot_meta WHERE id = 1 FOR UPDATE`).Scan(&stored)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return fmt.Errorf("lock snapshot meta: %w", err)
		case s.UpdatedAt.Before(stored):
			return ErrStaleSnapshot
		}

		if _, err := tx.Exec(ctx, `DELETE FROM fixtures`); err != nil {
			return fmt.Errorf("clear fixtures: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM teams WHERE NOT (id = ANY($1))`, ids); err != nil {
			return fmt.Errorf("drop stale teams: %w", err)
		}

		batch := &pgx.Batch{}
		for _, t := range s.Teams {
			batch.Queue(`
				INSERT INTO teams (id, name, short_name, flag_emoji, group_name, played, won, lost, no_result, points, nrr)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				ON CONFLICT (id) DO UPDATE SET
					name = EXCLUDED.name,
					short_name = EXCLUDED.short_name,
					flag_emoji = EXCLUDED.flag_emoji,
					group_name = EXCLUDED.group_name,
					played = EXCLUDED.played,
					won = EXCLUDED.won,
					lost = EXCLUDED.lost,
					no_result = EXCLUDED.no_result,
					points = EXCLUDED.points,
					nrr = EXCLUDED.nrr`,
				string(t.ID), t.Name, t.ShortName, t.FlagEmoji, string(t.Group),
				t.Played, t.Won, t.Lost, t.NoResult, t.Points, t.NRR)
		}
		for _, f := range s.Fixtures {
			batch.Queue(`
				INSERT INTO fixtures (id, group_name, team1_id, team2_id, starts_at, venue)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				f.ID, string(f.Group), string(f.Team1), string(f.Team2), nullTime(f.StartsAt), f.Venue)
		}
		batch.Queue(`
			INSERT INTO snapshot_meta (id, updated_at) VALUES (1, $1)
			ON CONFLICT (id) DO UPDATE SET updated_at = EXCLUDED.updated_at
			WHERE snapshot_meta.updated_at <= EXCLUDED.updated_at`,
			s.UpdatedAt)

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		return nil
	})
}

// LoadSnapshot reads the stored tournament state
func (r *Repository) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	s := &Snapshot{}

	err := r.pool.QueryRow(ctx, `SELECT updated_at FROM snapshot_meta WHERE id = 1`).Scan(&s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot meta: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, short_name, flag_emoji, group_name, played, won, lost, no_result, points, nrr
		FROM teams
		ORDER BY group_name, id`)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t Team
		var id, group string
		if err := rows.Scan(&id, &t.Name, &t.ShortName, &t.FlagEmoji, &group,
			&t.Played, &t.Won, &t.Lost, &t.NoResult, &t.Points, &t.NRR); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		t.ID, t.Group = qualification.TeamID(id), qualification.GroupID(group)
		s.Teams = append(s.Teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}

	frows, err := r.pool.Query(ctx, `
		SELECT id, group_name, team1_id, team2_id, starts_at, venue
		FROM fixtures
		ORDER BY starts_at NULLS LAST, id`)
	if err != nil {
		return nil, fmt.Errorf("query fixtures: %w", err)
	}
	defer frows.Close()

	for frows.Next() {
		var f Fixture
		var group, t1, t2 string
		var startsAt *time.Time
		if err := frows.Scan(&f.ID, &group, &t1, &t2, &startsAt, &f.Venue); err != nil {
			return nil, fmt.Errorf("scan fixture: %w", err)
		}
		f.Group, f.Team1, f.Team2 = qualification.GroupID(group), qualification.TeamID(t1), qualification.TeamID(t2)
		if startsAt != nil {
			f.StartsAt = *startsAt
		}
		s.Fixtures = append(s.Fixtures, f)
	}
	if err := frows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fixtures: %w", err)
	}

	return s, nil
}

// SaveChances upserts baseline rows in one batch
func (r *Repository) SaveChances(ctx context.Context, chances []Chance) error {
	if len(chances) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO qualification_chances (team_id, group_name, percentage, status, computed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (team_id) DO UPDATE SET
			group_name = EXCLUDED.group_name,
			percentage = EXCLUDED.percentage,
			status = EXCLUDED.status,
			computed_at = EXCLUDED.computed_at`

	for _, c := range chances {
		batch.Queue(query, string(c.TeamID), string(c.Group), float64(c.Percentage), string(c.Status), c.ComputedAt)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range chances {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save chance: %w", err)
		}
	}
	return nil
}

// ListChances returns stored chances, highest first; "" lists every group
func (r *Repository) ListChances(ctx context.Context, group qualification.GroupID) ([]Chance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT team_id, group_name, percentage, status, computed_at
		FROM qualification_chances
		WHERE $1 = '' OR group_name = $1
		ORDER BY group_name, percentage DESC, team_id`, string(group))
	if err != nil {
		return nil, fmt.Errorf("query chances: %w", err)
	}
	defer rows.Close()

	var chances []Chance
	for rows.Next() {
		var c Chance
		var id, g, status string
		var pct float64
		if err := rows.Scan(&id, &g, &pct, &status, &c.ComputedAt); err != nil {
			return nil, fmt.Errorf("scan chance: %w", err)
		}
		c.TeamID, c.Group = qualification.TeamID(id), qualification.GroupID(g)
		c.Percentage, c.Status = qualification.Percentage(pct), qualification.Status(status)
		chances = append(chances, c)
	}
	return chances, rows.Err()
}

// SavePrediction appends to the prediction log
func (r *Repository) SavePrediction(ctx context.Context, p *Prediction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO predictions
			(id, group_name, team1_id, team2_id, winner_id, winner_before, winner_after, ripple_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, string(p.Group), string(p.Team1), string(p.Team2), string(p.Winner),
		float64(p.WinnerBefore), float64(p.WinnerAfter), p.RippleCount, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// PrunePredictions deletes log rows older than before
func (r *Repository) PrunePredictions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM predictions WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("prune predictions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
