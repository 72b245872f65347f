package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/library-management/pkg/mailer"
	mailtpl "github.com/oksasatya/library-management/pkg/mailer/templates"
)

type recordingSender struct {
	to, subject, text, html string
	calls                   int
	err                     error
}

func (s *recordingSender) Send(_ context.Context, to, subject, text, html string) error {
	s.calls++
	s.to, s.subject, s.text, s.html = to, subject, text, html
	return s.err
}

func TestProcessRendersWelcomeJob(t *testing.T) {
	body, err := json.Marshal(mailer.EmailJob{
		To:       "ada@example.com",
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData("Ada", "ada@example.com", mailtpl.WithCompany("City Library")),
	})
	require.NoError(t, err)

	s := &recordingSender{}
	require.NoError(t, process(context.Background(), s, body))
	assert.Equal(t, 1, s.calls)
	assert.Equal(t, "ada@example.com", s.to)
	assert.Equal(t, "Welcome to City Library", s.subject)
	assert.Contains(t, s.text, "Hi Ada")
}

func TestProcessFillsRecipientFromTo(t *testing.T) {
	body := []byte(`{"to":"bob@example.com","template":"welcome"}`)
	s := &recordingSender{}
	require.NoError(t, process(context.Background(), s, body))
	assert.Contains(t, s.text, "bob@example.com")
}

func TestProcessBadJobs(t *testing.T) {
	cases := map[string]string{
		"not json":         `{`,
		"no recipient":     `{"text":"hi"}`,
		"unknown template": `{"to":"a@example.com","template":"login_otp"}`,
		"empty body":       `{"to":"a@example.com"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			s := &recordingSender{}
			err := process(context.Background(), s, []byte(body))
			require.ErrorIs(t, err, mailer.ErrBadJob)
			assert.Zero(t, s.calls)
		})
	}
}

func TestProcessSendFailureIsRetryable(t *testing.T) {
	boom := errors.New("mailgun down")
	s := &recordingSender{err: boom}
	err := process(context.Background(), s, []byte(`{"to":"a@example.com","text":"hi"}`))
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, mailer.ErrBadJob)
}
