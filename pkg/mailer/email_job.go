package mailer

import (
	"context"
	"errors"
	"fmt"

	mailtpl "github.com/oksasatya/library-management/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Html is optional; Text is recommended as fallback.
// You can also use a template by specifying Template and Data.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "welcome"
	Data     map[string]any `json:"data,omitempty"`
}

// ErrBadJob marks jobs that can never be delivered; workers drop them instead of retrying.
var ErrBadJob = errors.New("bad email job")

type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Deliver renders the job's template, if any, and hands the message to s.
func Deliver(ctx context.Context, s Sender, job EmailJob) error {
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrBadJob)
	}
	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if !mailtpl.Known(job.Template) {
			return fmt.Errorf("%w: unknown template %q", ErrBadJob, job.Template)
		}
		var err error
		subject, text, html, err = mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadJob, err)
		}
	}
	if text == "" && html == "" {
		return fmt.Errorf("%w: empty body", ErrBadJob)
	}
	return s.Send(ctx, job.To, subject, text, html)
}
