// Package notify delivers team codes to players over SMS.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier sends a team's login code to one phone number.
type Notifier interface {
	SendCode(ctx context.Context, phone int64, code string) error
}

// Message is the SMS body sent for code.
func Message(code string) string {
	return fmt.Sprintf("%s is your hunt code\n- Team CodeX", code)
}

// E164 formats a national phone number with countryCode.
func E164(countryCode string, phone int64) string {
	return "+" + countryCode + strconv.FormatInt(phone, 10)
}

type messageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Twilio sends codes through the Twilio Messages API.
type Twilio struct {
	api         messageAPI
	from        string
	countryCode string
}

func NewTwilio(accountSID, authToken, from, countryCode string) *Twilio {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Twilio{api: client.Api, from: from, countryCode: countryCode}
}

// SendCode blocks until Twilio answers or ctx is done. The Twilio client takes
// no context, so an abandoned call may still deliver after ctx expires.
func (t *Twilio) SendCode(ctx context.Context, phone int64, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(E164(t.countryCode, phone))
	params.SetFrom(t.from)
	params.SetBody(Message(code))

	done := make(chan error, 1)
	go func() {
		_, err := t.api.CreateMessage(params)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("sending sms: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sending sms: %w", ctx.Err())
	}
}

// Log writes codes to the logger instead of sending them. It is used when no
// SMS credentials are configured.
type Log struct {
	logger      *slog.Logger
	countryCode string
}

func NewLog(logger *slog.Logger, countryCode string) *Log {
	return &Log{logger: logger, countryCode: countryCode}
}

func (l *Log) SendCode(ctx context.Context, phone int64, code string) error {
	l.logger.InfoContext(ctx, "sms not configured, logging code",
		"to", E164(l.countryCode, phone),
		"code", code,
	)
	return nil
}
