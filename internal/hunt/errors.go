package hunt

import "errors"

// Auth errors
var (
	ErrInvalidToken = errors.New("invalid or missing token")
	ErrUnknownCode  = errors.New("unknown team code")
	ErrForbidden    = errors.New("registration key rejected")
)

// Session state signals. These end the request but are not failures of the
// service.
var (
	ErrGameCompleted     = errors.New("hunt already completed")
	ErrSessionNotStarted = errors.New("session not started, login again")
	ErrHealthExhausted   = errors.New("health exhausted")
)

// Conflicts
var (
	ErrAllStoriesPlayed = errors.New("all stories already played")
	ErrTeamNameTaken    = errors.New("team name already taken")
	ErrInvalidCoupon    = errors.New("invalid coupon code")
	ErrCouponExhausted  = errors.New("coupon already used")
	ErrAlreadyRestored  = errors.New("health can be restored only once")
	ErrTooManyAttempts  = errors.New("too many attempts")
)

// Dependency failures
var (
	ErrNotificationFailed = errors.New("sending notification failed")
)

var ErrNotFound = errors.New("not found")

// Kind groups errors for callers that map them to a transport.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindSession    Kind = "session"
	KindConflict   Kind = "conflict"
	KindDependency Kind = "dependency"
	KindInternal   Kind = "internal"
)

// KindOf classifies err. Unrecognized errors are internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrUnknownCode), errors.Is(err, ErrForbidden):
		return KindAuth
	case errors.Is(err, ErrGameCompleted), errors.Is(err, ErrSessionNotStarted), errors.Is(err, ErrHealthExhausted):
		return KindSession
	case errors.Is(err, ErrAllStoriesPlayed), errors.Is(err, ErrTeamNameTaken),
		errors.Is(err, ErrInvalidCoupon), errors.Is(err, ErrCouponExhausted),
		errors.Is(err, ErrAlreadyRestored), errors.Is(err, ErrTooManyAttempts):
		return KindConflict
	case errors.Is(err, ErrNotificationFailed):
		return KindDependency
	default:
		return KindInternal
	}
}
