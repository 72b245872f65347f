package templates

import (
	"strings"
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithCompany(name string) Option { return func(d *EmailData) { d.CompanyName = name } }
func WithSupportURL(url string) Option {
	return func(d *EmailData) { d.SupportURL = strings.TrimSpace(url) }
}
func WithLoginURL(url string) Option { return func(d *EmailData) { d.LoginURL = strings.TrimSpace(url) } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

// NewWelcomeData builds the payload of a welcome job for a freshly registered account.
func NewWelcomeData(name, email string, opts ...Option) map[string]any {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           Welcome,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return ToMap(d)
}
