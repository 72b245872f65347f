package helpers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/oksasatya/library-management/pkg/mailer"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", 48*time.Hour)
	tok, exp, err := m.Generate("ada@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), exp, time.Minute)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestJWTExpiryWindow(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ttl := 48 * time.Hour
	m := NewJWTManager("secret", ttl).WithClock(func() time.Time { return issued })
	tok, _, err := m.Generate("ada@example.com")
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		offset := time.Duration(rapid.Int64Range(0, int64(2*ttl)).Draw(rt, "offset_ns"))
		// tokens carry whole seconds
		offset = offset.Truncate(time.Second)
		at := m.WithClock(func() time.Time { return issued.Add(offset) })
		_, err := at.Parse(tok)
		if offset < ttl {
			if err != nil {
				rt.Fatalf("offset %v rejected: %v", offset, err)
			}
		} else if err != ErrTokenExpired {
			rt.Fatalf("offset %v: want ErrTokenExpired, got %v", offset, err)
		}
	})

	_, err = m.WithClock(func() time.Time { return issued.Add(ttl) }).Parse(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
	_, err = m.WithClock(func() time.Time { return issued.Add(ttl - time.Second) }).Parse(tok)
	assert.NoError(t, err)
}

func TestJWTRejectsForeignTokens(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	other, _, err := NewJWTManager("other", time.Hour).Generate("ada@example.com")
	require.NoError(t, err)
	_, err = m.Parse(other)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = m.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	// Same secret, different algorithm.
	claims := &Claims{Email: "ada@example.com", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = m.Parse(hs512)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Parse(none)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword("", ""))
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "hunter2"))

	_, err = HashPassword(strings.Repeat("x", 73))
	assert.Error(t, err)
}

func TestEnsureRecipientAndEmail(t *testing.T) {
	job := &mailer.EmailJob{To: "ada@example.com", Data: map[string]any{"Email": ""}}
	EnsureRecipientAndEmail(job)
	assert.Equal(t, "ada@example.com", job.Data["Email"])
	assert.Equal(t, "ada@example.com", job.Data["RecipientEmail"])
}

func TestLoggerStampsAppAndEnv(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "library", "production")
	l.WithField("env", "override").Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "library", entry["app"])
	assert.Equal(t, "override", entry["env"])
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())

	assert.Equal(t, logrus.DebugLevel, newLogger(&buf, "library", "development").GetLevel())
}

func TestJSONMessage(t *testing.T) {
	job := mailer.EmailJob{To: "ada@example.com", Template: "welcome"}
	a, err := jsonMessage(job, "library")
	require.NoError(t, err)
	b, err := jsonMessage(job, "library")
	require.NoError(t, err)

	assert.Equal(t, "application/json", a.ContentType)
	assert.Equal(t, amqp.Persistent, a.DeliveryMode)
	assert.Equal(t, "library", a.AppId)
	assert.NotEqual(t, a.MessageId, b.MessageId)
	assert.JSONEq(t, `{"to":"ada@example.com","template":"welcome"}`, string(a.Body))

	_, err = jsonMessage(func() {}, "library")
	assert.Error(t, err)
}

func TestESConfig(t *testing.T) {
	cfg := esConfig([]string{"http://es:9200"}, "", "ignored")
	assert.Empty(t, cfg.Password)
	assert.Contains(t, cfg.RetryOnStatus, http.StatusTooManyRequests)
	assert.Equal(t, 200*time.Millisecond, cfg.RetryBackoff(2))

	cfg = esConfig([]string{"http://es:9200"}, "elastic", "changeme")
	assert.Equal(t, "elastic", cfg.Username)
	assert.Equal(t, "changeme", cfg.Password)
}
