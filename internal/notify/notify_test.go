package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type flakySender struct {
	failures int
	err      error
	calls    int
}

func (f *flakySender) SendEmail(ctx context.Context, to, subject, body string) error {
	return f.next()
}

func (f *flakySender) SendSMS(ctx context.Context, to, body string) error {
	return f.next()
}

func (f *flakySender) next() error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func fastRetry(tries uint) RetryConfig {
	return RetryConfig{MaxTries: tries, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond, Timeout: time.Second}
}

func TestDispatcher_RetriesTransientFailures(t *testing.T) {
	sender := &flakySender{failures: 2, err: errors.New("connection reset")}
	d := NewDispatcher(sender, sender, fastRetry(3), discardLogger())

	require.NoError(t, d.SendEmail(context.Background(), "a@b.co", "code", "123456"))
	assert.Equal(t, 3, sender.calls)
}

func TestDispatcher_GivesUpAfterMaxTries(t *testing.T) {
	sender := &flakySender{failures: 10, err: errors.New("gateway down")}
	d := NewDispatcher(sender, sender, fastRetry(2), discardLogger())

	err := d.SendSMS(context.Background(), "+998901234567", "123456")
	require.Error(t, err)
	assert.Equal(t, 2, sender.calls)
}

func TestDispatcher_InvalidRecipientIsPermanent(t *testing.T) {
	sender := &flakySender{failures: 10, err: ErrInvalidRecipient}
	d := NewDispatcher(sender, sender, fastRetry(5), discardLogger())

	err := d.SendSMS(context.Background(), "+1", "123456")
	assert.ErrorIs(t, err, ErrInvalidRecipient)
	assert.Equal(t, 1, sender.calls)
}

func TestDispatcher_EmptyRecipient(t *testing.T) {
	sender := &flakySender{}
	d := NewDispatcher(sender, sender, fastRetry(3), discardLogger())

	assert.ErrorIs(t, d.SendEmail(context.Background(), "", "s", "b"), ErrInvalidRecipient)
	assert.ErrorIs(t, d.SendSMS(context.Background(), "", "b"), ErrInvalidRecipient)
	assert.Zero(t, sender.calls)
}

func TestLogSender(t *testing.T) {
	var buf strings.Builder
	s := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, s.SendEmail(context.Background(), "a@b.co", "Password reset", "012345"))
	require.NoError(t, s.SendSMS(context.Background(), "+998901234567", "012345"))
	assert.Contains(t, buf.String(), "email issued")
	assert.Contains(t, buf.String(), "sms issued")
}

func TestSMTPSender_SendEmail(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "noreply@example.com"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, s.SendEmail(context.Background(), "alice@example.com", "Password reset", "Your code is 012345"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Password reset\r\n")
	assert.True(t, strings.HasSuffix(string(gotMsg), "\r\n\r\nYour code is 012345"))
}

func TestSMTPSender_RejectsHeaderInjection(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25})
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("sendMail must not be called")
		return nil
	}

	err := s.SendEmail(context.Background(), "a@b.co\r\nBcc: x@y.z", "hi", "body")
	assert.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestVonageSender_SendSMS(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   bool
		permanent bool
	}{
		{name: "accepted", status: http.StatusOK, body: `{"messages":[{"status":"0"}]}`},
		{name: "invalid number", status: http.StatusOK, body: `{"messages":[{"status":"3","error-text":"Invalid to"}]}`, wantErr: true, permanent: true},
		{name: "throttled", status: http.StatusOK, body: `{"messages":[{"status":"1","error-text":"Throttled"}]}`, wantErr: true},
		{name: "server error", status: http.StatusBadGateway, body: `oops`, wantErr: true},
		{name: "empty reply", status: http.StatusOK, body: `{"messages":[]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/sms/json", r.URL.Path)
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "key", r.PostForm.Get("api_key"))
				assert.Equal(t, "998901234567", r.PostForm.Get("to"))
				assert.Equal(t, "Your code is 012345", r.PostForm.Get("text"))
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			s := NewVonageSender(VonageConfig{BaseURL: srv.URL, APIKey: "key", APISecret: "secret", From: "Pixfeed"}, srv.Client())
			err := s.SendSMS(context.Background(), "+998901234567", "Your code is 012345")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.permanent, errors.Is(err, ErrInvalidRecipient))
		})
	}
}

func TestDispatcher_DisabledChannelIsPermanent(t *testing.T) {
	var disabled DisabledSender
	d := NewDispatcher(disabled, disabled, RetryConfig{MaxTries: 5, InitialInterval: time.Millisecond}, discardLogger())

	assert.ErrorIs(t, d.SendEmail(context.Background(), "a@b.co", "subject", "body"), ErrChannelDisabled)
	assert.ErrorIs(t, d.SendSMS(context.Background(), "+998901234567", "body"), ErrChannelDisabled)
}
