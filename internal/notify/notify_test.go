package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeAPI struct {
	got   *twilioApi.CreateMessageParams
	err   error
	block chan struct{}
}

func (f *fakeAPI) CreateMessage(p *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	if f.block != nil {
		<-f.block
	}
	f.got = p
	return &twilioApi.ApiV2010Message{}, f.err
}

func TestTwilioSendCode(t *testing.T) {
	api := &fakeAPI{}
	n := &Twilio{api: api, from: "+15550001111", countryCode: "91"}

	if err := n.SendCode(context.Background(), 9876543210, "482913"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if api.got == nil {
		t.Fatal("CreateMessage not called")
	}
	if got := *api.got.To; got != "+919876543210" {
		t.Errorf("to = %q, want +919876543210", got)
	}
	if got := *api.got.From; got != "+15550001111" {
		t.Errorf("from = %q", got)
	}
	if got := *api.got.Body; !strings.Contains(got, "482913") {
		t.Errorf("body %q does not contain code", got)
	}
}

func TestTwilioSendCodeError(t *testing.T) {
	api := &fakeAPI{err: errors.New("21211 invalid To")}
	n := &Twilio{api: api, from: "+1", countryCode: "91"}

	if err := n.SendCode(context.Background(), 1, "100000"); err == nil {
		t.Fatal("expected error")
	}
}

func TestTwilioSendCodeTimeout(t *testing.T) {
	api := &fakeAPI{block: make(chan struct{})}
	defer close(api.block)
	n := &Twilio{api: api, from: "+1", countryCode: "91"}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := n.SendCode(ctx, 1, "100000")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestLogSendCode(t *testing.T) {
	var buf bytes.Buffer
	n := NewLog(slog.New(slog.NewJSONHandler(&buf, nil)), "91")

	if err := n.SendCode(context.Background(), 9876543210, "482913"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(buf.String(), `"code":"482913"`) {
		t.Errorf("log output missing code: %s", buf.String())
	}
}
