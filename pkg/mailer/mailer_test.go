package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenfuse/kenfuse-api/config"
	mailtpl "github.com/kenfuse/kenfuse-api/pkg/mailer/templates"
)

type sent struct{ to, subject, text, html string }

type fakeSender struct {
	msgs []sent
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, sent{to, subject, text, html})
	return nil
}

func TestDeliverRendersTemplate(t *testing.T) {
	s := &fakeSender{}
	cfg := &config.Config{CompanyName: "Kenfuse"}
	job := EmailJob{To: "jane@example.com", Template: mailtpl.Welcome, Data: mailtpl.NewWelcomeData(cfg, "Jane", "jane@example.com", "family")}

	require.NoError(t, Deliver(context.Background(), s, job))
	require.Len(t, s.msgs, 1)
	assert.Equal(t, "Welcome to Kenfuse, Jane", s.msgs[0].subject)
	assert.Contains(t, s.msgs[0].html, "Welcome, Jane")
}

func TestDeliverPlainMessage(t *testing.T) {
	s := &fakeSender{}
	require.NoError(t, Deliver(context.Background(), s, EmailJob{To: "a@b.c", Text: "hi"}))
	assert.Equal(t, "Notification", s.msgs[0].subject)
}

func TestDeliverBadJobs(t *testing.T) {
	s := &fakeSender{}
	err := Deliver(context.Background(), s, EmailJob{Template: mailtpl.Welcome})
	assert.ErrorIs(t, err, ErrBadJob)

	err = Deliver(context.Background(), s, EmailJob{To: "a@b.c", Template: "missing"})
	assert.ErrorIs(t, err, ErrBadJob)
	assert.Empty(t, s.msgs)
}

func TestDeliverSenderFailureIsRetryable(t *testing.T) {
	boom := errors.New("mailgun down")
	err := Deliver(context.Background(), &fakeSender{err: boom}, EmailJob{To: "a@b.c", Text: "x"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrBadJob)
}
