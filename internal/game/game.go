// Package game runs the hunt: it validates sessions, applies answers, registers
// teams and redeems coupons on top of the store.
package game

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/playperu/codexhunt/internal/notify"
	"github.com/playperu/codexhunt/internal/questions"
	"github.com/playperu/codexhunt/internal/random"
	"github.com/playperu/codexhunt/internal/store"
	"github.com/playperu/codexhunt/internal/token"
)

const (
	defaultNotifyTimeout = 10 * time.Second
	compensateTimeout    = 5 * time.Second
	codeAttempts         = 10
)

// Deps are the collaborators of a Service. Clock, Random and Logger default
// to the real clock, a crypto-seeded source and slog.Default.
type Deps struct {
	Store         *store.Store
	Signer        *token.Signer
	Notifier      notify.Notifier
	Questions     questions.Bank
	Clock         clockwork.Clock
	Random        *random.Source
	Logger        *slog.Logger
	RegisterKey   string
	NotifyTimeout time.Duration
}

type Service struct {
	store         *store.Store
	signer        *token.Signer
	notifier      notify.Notifier
	questions     questions.Bank
	clock         clockwork.Clock
	rand          *random.Source
	logger        *slog.Logger
	registerKey   string
	notifyTimeout time.Duration
	tracer        trace.Tracer
}

func New(d Deps) (*Service, error) {
	s := &Service{
		store:         d.Store,
		signer:        d.Signer,
		notifier:      d.Notifier,
		questions:     d.Questions,
		clock:         d.Clock,
		rand:          d.Random,
		logger:        d.Logger,
		registerKey:   d.RegisterKey,
		notifyTimeout: d.NotifyTimeout,
		tracer:        otel.Tracer("github.com/playperu/codexhunt/internal/game"),
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.rand == nil {
		src, err := random.NewSeeded()
		if err != nil {
			return nil, err
		}
		s.rand = src
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.notifyTimeout <= 0 {
		s.notifyTimeout = defaultNotifyTimeout
	}
	return s, nil
}
