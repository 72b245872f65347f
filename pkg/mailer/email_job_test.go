package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mailtpl "github.com/oksasatya/library-management/pkg/mailer/templates"
)

type recordingSender struct {
	to, subject, text, html string
	err                     error
}

func (r *recordingSender) Send(_ context.Context, to, subject, text, html string) error {
	r.to, r.subject, r.text, r.html = to, subject, text, html
	return r.err
}

func TestDeliverRendersTemplate(t *testing.T) {
	s := &recordingSender{}
	job := EmailJob{
		To:       "ada@example.com",
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData("Ada", "ada@example.com", mailtpl.WithCompany("City Library")),
	}
	require.NoError(t, Deliver(context.Background(), s, job))
	assert.Equal(t, "ada@example.com", s.to)
	assert.Equal(t, "Welcome to City Library", s.subject)
	assert.Contains(t, s.text, "Hi Ada")
}

func TestDeliverRejectsBadJobs(t *testing.T) {
	s := &recordingSender{}
	err := Deliver(context.Background(), s, EmailJob{To: "a@b.c", Template: "nope"})
	assert.ErrorIs(t, err, ErrBadJob)

	err = Deliver(context.Background(), s, EmailJob{Template: mailtpl.Welcome})
	assert.ErrorIs(t, err, ErrBadJob)

	err = Deliver(context.Background(), s, EmailJob{To: "a@b.c", Subject: "hi"})
	assert.ErrorIs(t, err, ErrBadJob)
}

func TestDeliverPassesSendErrors(t *testing.T) {
	boom := errors.New("mailgun down")
	s := &recordingSender{err: boom}
	err := Deliver(context.Background(), s, EmailJob{To: "a@b.c", Subject: "hi", Text: "body"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrBadJob)
}
