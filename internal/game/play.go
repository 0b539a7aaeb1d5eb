package game

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/playperu/codexhunt/internal/hunt"
	"github.com/playperu/codexhunt/internal/questions"
)

// Outcome is the team's position after an answer.
type Outcome struct {
	Correct   bool
	Stage     int
	Phase     int
	Health    float64
	Completed bool
}

// Question returns the question at the snapshot's position.
func (s *Service) Question(snap hunt.Snapshot) (questions.Question, error) {
	q, ok := s.questions.At(snap.Story, snap.Stage, snap.Phase)
	if !ok {
		return questions.Question{}, fmt.Errorf("no question for story %d stage %d phase %d",
			snap.Story, snap.Stage, snap.Phase)
	}
	return q, nil
}

// Answer checks answer against the current question and stores the resulting
// position. A wrong answer only costs health.
func (s *Service) Answer(ctx context.Context, snap hunt.Snapshot, answer string) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "game.Answer")
	defer span.End()

	q, err := s.Question(snap)
	if err != nil {
		return Outcome{}, err
	}

	now := s.clock.Now()
	correct := q.Matches(answer)
	tr := hunt.Advance(snap.Story, snap.Stage, snap.Phase, snap.Health, correct, now)
	span.SetAttributes(
		attribute.String("team", snap.TeamID),
		attribute.Bool("correct", correct),
	)

	if correct {
		err = s.store.SaveProgress(ctx, snap.TeamID, tr.Stage, tr.Phase, tr.EndTime, now)
	} else {
		err = s.store.SyncHealth(ctx, snap.TeamID, tr.Health, now)
	}
	if err != nil {
		return Outcome{}, err
	}

	if tr.Completed {
		s.logger.InfoContext(ctx, "hunt completed", "team", snap.TeamID, "story", snap.Story)
	}
	return Outcome{
		Correct:   correct,
		Stage:     tr.Stage,
		Phase:     tr.Phase,
		Health:    tr.Health,
		Completed: tr.Completed,
	}, nil
}

// Refuel redeems a coupon for the team and returns its restored health.
func (s *Service) Refuel(ctx context.Context, snap hunt.Snapshot, coupon string) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "game.Refuel")
	defer span.End()
	span.SetAttributes(attribute.String("team", snap.TeamID))

	health, err := s.store.RedeemCoupon(ctx, snap.TeamID, coupon)
	if errors.Is(err, hunt.ErrNotFound) {
		// The session was validated moments ago.
		return 0, fmt.Errorf("team %s missing during refuel", snap.TeamID)
	}
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "health restored", "team", snap.TeamID, "health", health)
	return health, nil
}
