package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/playperu/codexhunt/internal/hunt"
)

// Validate turns a bearer token into a snapshot of the team for this request.
// It recomputes decayed health and stores it with the current time, so every
// authenticated request is one read-decay-write cycle on the team row.
//
// Two requests for the same team racing here both write; the later write wins.
func (s *Service) Validate(ctx context.Context, raw string) (hunt.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "game.Validate")
	defer span.End()

	now := s.clock.Now()
	if raw == "" {
		return hunt.Snapshot{}, hunt.ErrInvalidToken
	}
	code, err := s.signer.Verify(raw, now)
	if err != nil {
		return hunt.Snapshot{}, fmt.Errorf("%w: %v", hunt.ErrInvalidToken, err)
	}
	span.SetAttributes(attribute.String("team", code))

	team, err := s.store.Team(ctx, code)
	if errors.Is(err, hunt.ErrNotFound) {
		return hunt.Snapshot{}, hunt.ErrInvalidToken
	}
	if err != nil {
		return hunt.Snapshot{}, err
	}

	if team.EndTime != nil {
		return hunt.Snapshot{}, hunt.ErrGameCompleted
	}
	if team.StartTime == nil || team.LastSyncedTime == nil {
		return hunt.Snapshot{}, hunt.ErrSessionNotStarted
	}
	if team.LastSyncedTime.Sub(*team.StartTime) > hunt.HuntDuration {
		return hunt.Snapshot{}, hunt.ErrHealthExhausted
	}

	health := hunt.Decay(team.Health, *team.LastSyncedTime, now)
	if health <= 0 {
		// Only the request that crosses zero writes it.
		if team.Health != 0 {
			if err := s.store.SyncHealth(ctx, team.ID, 0, now); err != nil {
				return hunt.Snapshot{}, err
			}
		}
		return hunt.Snapshot{}, hunt.ErrHealthExhausted
	}

	if err := s.store.SyncHealth(ctx, team.ID, health, now); err != nil {
		return hunt.Snapshot{}, err
	}

	return hunt.Snapshot{
		TeamID:         team.ID,
		Story:          team.Story,
		Stage:          team.Stage,
		Phase:          team.Phase,
		StartTime:      *team.StartTime,
		EndTime:        team.EndTime,
		Health:         health,
		LastSyncedTime: now,
	}, nil
}

// Login exchanges a team code for a bearer token. The first login starts the
// team's session clock.
func (s *Service) Login(ctx context.Context, otp int) (string, error) {
	code := strconv.Itoa(otp)
	if _, err := s.store.Team(ctx, code); err != nil {
		if errors.Is(err, hunt.ErrNotFound) {
			return "", hunt.ErrUnknownCode
		}
		return "", err
	}

	now := s.clock.Now()
	started, err := s.store.StartSession(ctx, code, now)
	if err != nil {
		return "", err
	}
	if started {
		s.logger.InfoContext(ctx, "session started", "team", code)
	}

	return s.signer.Sign(code, now)
}
