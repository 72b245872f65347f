package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	data := NewWelcomeData("Ada Lovelace", "ada@example.com",
		WithCompany("City Library"), WithLoginURL("https://lib.example/login"))

	subject, text, html, err := Render(Welcome, data)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to City Library", subject)
	assert.Contains(t, text, "Hi Ada Lovelace")
	assert.Contains(t, text, "https://lib.example/login")
	assert.NotContains(t, text, "Questions?")
	assert.Contains(t, html, "ada@example.com")
}

func TestRenderDefaults(t *testing.T) {
	subject, text, _, err := Render(Welcome, NewWelcomeData("", "bob@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "Welcome to the library", subject)
	assert.Contains(t, text, "Hi bob@example.com")
}

func TestKnown(t *testing.T) {
	assert.True(t, Known(Welcome))
	assert.False(t, Known("login_otp"))
}
