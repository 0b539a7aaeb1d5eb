// Package hunt defines the core domain types and the pure rules of the hunt:
// health decay and stage/phase progression. It has no I/O.
package hunt

import "time"

const (
	MaxHealth = 100.0

	// DecayPerSecond is the health a team loses for every second without contact.
	DecayPerSecond = 0.025

	// WrongAnswerPenalty is deducted for each wrong answer.
	WrongAnswerPenalty = 5.0

	// RestoreAmount is added by a coupon, capped at MaxHealth.
	RestoreAmount = 40.0

	// HuntDuration is the absolute session lifetime measured from first login.
	HuntDuration = 30 * time.Minute

	StoryCount    = 3
	MaxTeamName   = 25
	MinMembers    = 2
	MaxMembers    = 6
	MaxPhoneValue = 100_000_000_000
	MaxCodeValue  = 1_000_000
)

// Team is a registered group of players. ID is the six-digit code that doubles
// as the login OTP.
type Team struct {
	ID             string
	Name           string
	Story          int
	Stage          int
	Phase          int
	Health         float64
	IsRestored     bool
	FinalQuestion  *string
	StartTime      *time.Time
	EndTime        *time.Time
	LastSyncedTime *time.Time
}

type Coupon struct {
	Code   string
	IsUsed bool
}

// Snapshot is the validated view of a team for the duration of one request.
// It is produced by session validation and never re-read from storage.
type Snapshot struct {
	TeamID         string
	Story          int
	Stage          int
	Phase          int
	StartTime      time.Time
	EndTime        *time.Time
	Health         float64
	LastSyncedTime time.Time
}

// Decay returns stored health minus the decay accrued between lastSynced and
// now. A now before lastSynced accrues nothing, and the result never exceeds
// MaxHealth. It may be negative; clamping at zero is left to the caller so it
// can tell "already at zero" from "just crossed zero".
func Decay(stored float64, lastSynced, now time.Time) float64 {
	elapsed := max(now.Sub(lastSynced).Seconds(), 0)
	return min(stored-elapsed*DecayPerSecond, MaxHealth)
}
