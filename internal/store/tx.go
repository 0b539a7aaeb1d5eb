package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/playperu/codexhunt/internal/hunt"
)

// Tx is a unit of work. Its methods run on one transaction that InTx commits
// or rolls back as a whole.
type Tx struct {
	tx *sqlx.Tx
}

// InTx runs fn in a transaction. The transaction commits if fn returns nil and
// rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (t *Tx) TeamExists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := t.tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM teams WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("checking team code: %w", err)
	}
	return n > 0, nil
}

// PlayedStories is Store.PlayedStories inside the transaction, so the story
// choice and the team insert see the same rows.
func (t *Tx) PlayedStories(ctx context.Context, phones []int64) ([]int, error) {
	return playedStories(ctx, t.tx, phones)
}

func (t *Tx) NameTaken(ctx context.Context, name string) (bool, error) {
	var n int
	if err := t.tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM teams WHERE name = ?`, name); err != nil {
		return false, fmt.Errorf("checking team name: %w", err)
	}
	return n > 0, nil
}

// CreateTeam inserts a fresh team at stage 1, phase 1 with full health and its
// members.
func (t *Tx) CreateTeam(ctx context.Context, id, name string, story int, phones []int64) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO teams (id, name, story, stage, phase, health, is_restored)
		VALUES (?, ?, ?, 1, 1, ?, 0)
	`, id, name, story, hunt.MaxHealth)
	if err != nil {
		return fmt.Errorf("inserting team: %w", err)
	}

	for _, phone := range phones {
		_, err := t.tx.ExecContext(ctx, `INSERT INTO members (team, phone_number) VALUES (?, ?)`, id, phone)
		if err != nil {
			return fmt.Errorf("inserting member: %w", err)
		}
	}
	return nil
}

func (t *Tx) DeleteTeam(ctx context.Context, id string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM members WHERE team = ?`, id); err != nil {
		return fmt.Errorf("deleting members: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting team: %w", err)
	}
	return nil
}

// DeleteTeam removes a team and its members together.
func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	return s.InTx(ctx, func(tx *Tx) error {
		return tx.DeleteTeam(ctx, id)
	})
}

// RedeemCoupon marks code used and restores the team's health in one
// transaction. Both updates are conditional, so two concurrent redemptions of
// the same coupon or by the same team cannot both succeed. It returns the new
// health.
func (s *Store) RedeemCoupon(ctx context.Context, teamID, code string) (float64, error) {
	var health float64
	err := s.InTx(ctx, func(tx *Tx) error {
		result, err := tx.tx.ExecContext(ctx, `
			UPDATE coupons SET is_used = 1 WHERE code = ? AND is_used = 0
		`, code)
		if err != nil {
			return fmt.Errorf("claiming coupon: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			var used bool
			err := tx.tx.QueryRowxContext(ctx, `SELECT is_used FROM coupons WHERE code = ?`, code).Scan(&used)
			if errors.Is(err, sql.ErrNoRows) {
				return hunt.ErrInvalidCoupon
			}
			if err != nil {
				return fmt.Errorf("loading coupon: %w", err)
			}
			return hunt.ErrCouponExhausted
		}

		// The coupon update above holds SQLite's write lock, so the team
		// cannot change between this read and the update below.
		var team struct {
			Health     float64 `db:"health"`
			IsRestored bool    `db:"is_restored"`
		}
		err = tx.tx.GetContext(ctx, &team, `SELECT health, is_restored FROM teams WHERE id = ?`, teamID)
		if errors.Is(err, sql.ErrNoRows) {
			return hunt.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading team: %w", err)
		}
		if team.IsRestored {
			return hunt.ErrAlreadyRestored
		}

		health = hunt.Restore(team.Health)
		result, err = tx.tx.ExecContext(ctx, `
			UPDATE teams SET health = ?, is_restored = 1 WHERE id = ? AND is_restored = 0
		`, health, teamID)
		if err != nil {
			return fmt.Errorf("restoring health: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return hunt.ErrAlreadyRestored
		}
		return nil
	})
	return health, err
}
