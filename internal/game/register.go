package game

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/codexhunt/internal/hunt"
	"github.com/playperu/codexhunt/internal/store"
)

type Registration struct {
	Name      string
	Phones    []int64
	SecretKey string
}

// Register creates a team on a story none of its members has played and sends
// the team code to the first phone. The team and its members are inserted in
// one transaction. If the code cannot be delivered, the team is deleted again
// and ErrNotificationFailed is returned.
func (s *Service) Register(ctx context.Context, reg Registration) (string, error) {
	ctx, span := s.tracer.Start(ctx, "game.Register")
	defer span.End()

	if !s.secretMatches(reg.SecretKey) {
		return "", hunt.ErrForbidden
	}
	if len(reg.Phones) == 0 {
		return "", errors.New("registration without phone numbers")
	}

	var code string
	var story int
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		played, err := tx.PlayedStories(ctx, reg.Phones)
		if err != nil {
			return err
		}
		var open []int
		for st := 1; st <= hunt.StoryCount; st++ {
			if !slices.Contains(played, st) {
				open = append(open, st)
			}
		}
		if len(open) == 0 {
			return hunt.ErrAllStoriesPlayed
		}
		story = open[s.rand.IntN(len(open))]

		taken, err := tx.NameTaken(ctx, reg.Name)
		if err != nil {
			return err
		}
		if taken {
			return hunt.ErrTeamNameTaken
		}

		code, err = s.newCode(ctx, tx)
		if err != nil {
			return err
		}
		return tx.CreateTeam(ctx, code, reg.Name, story, reg.Phones)
	})
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.String("team", code), attribute.Int("story", story))

	notifyCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()
	if err := s.notifier.SendCode(notifyCtx, reg.Phones[0], code); err != nil {
		span.SetStatus(codes.Error, "notification failed")
		s.logger.ErrorContext(ctx, "sending team code", "team", code, "error", err)
		s.compensate(ctx, code)
		return "", fmt.Errorf("%w: %w", hunt.ErrNotificationFailed, err)
	}

	s.logger.InfoContext(ctx, "team registered", "team", code, "story", story, "members", len(reg.Phones))
	return code, nil
}

// compensate deletes a team whose code never reached the players. It runs even
// when the request context is already cancelled.
func (s *Service) compensate(ctx context.Context, code string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensateTimeout)
	defer cancel()

	if err := s.store.DeleteTeam(ctx, code); err != nil {
		s.logger.ErrorContext(ctx, "rolling back registration", "team", code, "error", err)
		return
	}
	s.logger.WarnContext(ctx, "registration rolled back", "team", code)
}

// newCode picks an unused six-digit team code.
func (s *Service) newCode(ctx context.Context, tx *store.Tx) (string, error) {
	low := hunt.MaxCodeValue / 10
	for range codeAttempts {
		code := strconv.Itoa(low + s.rand.IntN(hunt.MaxCodeValue-low))
		exists, err := tx.TeamExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("no free team code")
}

// secretMatches accepts either the plain registration key or, when the key is
// configured as a bcrypt hash, any secret matching the hash.
func (s *Service) secretMatches(secret string) bool {
	if strings.HasPrefix(s.registerKey, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(s.registerKey), []byte(secret)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.registerKey), []byte(secret)) == 1
}
