// Package store persists teams, members and coupons in SQLite.
//
// Multi-statement changes go through InTx, which commits all statements or
// none of them.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/playperu/codexhunt/internal/hunt"
)

func init() {
	sqlx.BindDriver("libsql", sqlx.QUESTION)
}

type Store struct {
	db *sqlx.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "libsql")}
}

type teamRow struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	Story          int            `db:"story"`
	Stage          int            `db:"stage"`
	Phase          int            `db:"phase"`
	Health         float64        `db:"health"`
	IsRestored     bool           `db:"is_restored"`
	FinalQuestion  sql.NullString `db:"final_question"`
	StartTime      sql.NullInt64  `db:"start_time"`
	EndTime        sql.NullInt64  `db:"end_time"`
	LastSyncedTime sql.NullInt64  `db:"last_synced_time"`
}

const teamColumns = `id, name, story, stage, phase, health, is_restored, final_question,
	start_time, end_time, last_synced_time`

func (r teamRow) team() hunt.Team {
	t := hunt.Team{
		ID:             r.ID,
		Name:           r.Name,
		Story:          r.Story,
		Stage:          r.Stage,
		Phase:          r.Phase,
		Health:         r.Health,
		IsRestored:     r.IsRestored,
		StartTime:      fromMillis(r.StartTime),
		EndTime:        fromMillis(r.EndTime),
		LastSyncedTime: fromMillis(r.LastSyncedTime),
	}
	if r.FinalQuestion.Valid {
		fq := r.FinalQuestion.String
		t.FinalQuestion = &fq
	}
	return t
}

// Times are stored as Unix milliseconds.
func millis(t time.Time) int64 { return t.UnixMilli() }

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}

func (s *Store) Team(ctx context.Context, id string) (hunt.Team, error) {
	var row teamRow
	err := s.db.GetContext(ctx, &row, `SELECT `+teamColumns+` FROM teams WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return hunt.Team{}, hunt.ErrNotFound
	}
	if err != nil {
		return hunt.Team{}, fmt.Errorf("loading team: %w", err)
	}
	return row.team(), nil
}

// StartSession sets start and last-synced time to now if the team has never
// logged in. It reports whether this call started the session.
func (s *Store) StartSession(ctx context.Context, id string, now time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE teams SET start_time = ?, last_synced_time = ?
		WHERE id = ? AND start_time IS NULL
	`, millis(now), millis(now), id)
	if err != nil {
		return false, fmt.Errorf("starting session: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// SyncHealth stores a recomputed health value and the time it was computed.
func (s *Store) SyncHealth(ctx context.Context, id string, health float64, now time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE teams SET health = ?, last_synced_time = ? WHERE id = ?
	`, health, millis(now), id)
	if err != nil {
		return fmt.Errorf("syncing health: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return hunt.ErrNotFound
	}
	return nil
}

// SaveProgress stores the position after a correct answer. endTime is written
// as given, so nil clears it.
func (s *Store) SaveProgress(ctx context.Context, id string, stage, phase int, endTime *time.Time, now time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE teams SET stage = ?, phase = ?, last_synced_time = ?, end_time = ?
		WHERE id = ?
	`, stage, phase, millis(now), nullMillis(endTime), id)
	if err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return hunt.ErrNotFound
	}
	return nil
}

// PlayedStories returns the distinct stories of every team any of phones
// belongs to.
func (s *Store) PlayedStories(ctx context.Context, phones []int64) ([]int, error) {
	return playedStories(ctx, s.db, phones)
}

func playedStories(ctx context.Context, q sqlx.ExtContext, phones []int64) ([]int, error) {
	if len(phones) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		SELECT DISTINCT t.story
		FROM teams t
		JOIN members m ON m.team = t.id
		WHERE m.phone_number IN (?)
		ORDER BY t.story
	`, phones)
	if err != nil {
		return nil, fmt.Errorf("building stories query: %w", err)
	}

	var stories []int
	if err := sqlx.SelectContext(ctx, q, &stories, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("loading played stories: %w", err)
	}
	return stories, nil
}

func (s *Store) Members(ctx context.Context, teamID string) ([]int64, error) {
	var phones []int64
	err := s.db.SelectContext(ctx, &phones, `
		SELECT phone_number FROM members WHERE team = ? ORDER BY rowid
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}
	return phones, nil
}

func (s *Store) Coupon(ctx context.Context, code string) (hunt.Coupon, error) {
	var c hunt.Coupon
	err := s.db.QueryRowxContext(ctx, `SELECT code, is_used FROM coupons WHERE code = ?`, code).
		Scan(&c.Code, &c.IsUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return c, hunt.ErrNotFound
	}
	if err != nil {
		return c, fmt.Errorf("loading coupon: %w", err)
	}
	return c, nil
}

// AddCoupons inserts unused coupons, skipping codes that already exist. It
// returns how many were inserted.
func (s *Store) AddCoupons(ctx context.Context, codes []string) (int, error) {
	var added int
	err := s.InTx(ctx, func(tx *Tx) error {
		for _, code := range codes {
			result, err := tx.tx.ExecContext(ctx, `INSERT OR IGNORE INTO coupons (code) VALUES (?)`, code)
			if err != nil {
				return fmt.Errorf("inserting coupon: %w", err)
			}
			n, _ := result.RowsAffected()
			added += int(n)
		}
		return nil
	})
	return added, err
}
