package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
	Date     string `json:"loan_date" validate:"required,isodate"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Copies   int    `json:"number_of_copy" validate:"gte=0"`
}

func TestDetailsUseJSONNames(t *testing.T) {
	v := validator.New()
	register(v)

	err := v.Struct(sample{Email: "nope", Password: "abc", Date: "01/02/2024", Phone: "call me", Copies: -1})
	require.Error(t, err)

	d := ToDetails(err)
	assert.Equal(t, "must be a valid email", d["email"])
	assert.Equal(t, "must be at least 6 characters", d["password"])
	assert.Equal(t, "must be a date formatted YYYY-MM-DD", d["loan_date"])
	assert.Equal(t, "must be a phone number", d["phone"])
	assert.Equal(t, "must be greater than or equal to 0", d["number_of_copy"])
}

func TestValidSample(t *testing.T) {
	v := validator.New()
	register(v)
	assert.NoError(t, v.Struct(sample{Email: "a@b.co", Password: "secret1", Date: "2024-01-15", Phone: "+628123456789"}))
}

func TestInvalidJSON(t *testing.T) {
	var out map[string]any
	err := json.Unmarshal([]byte("{"), &out)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
}

func TestPhoneAcceptsLocalFormats(t *testing.T) {
	v := validator.New()
	register(v)
	for _, phone := range []string{"+628123456789", "0812-3456-789", "(021) 555 0199", "555.0199"} {
		assert.NoError(t, v.Var(phone, "phone"), phone)
	}
	for _, phone := range []string{"12", "phone", "08+12", strings.Repeat("1", 33)} {
		assert.Error(t, v.Var(phone, "phone"), phone)
	}
}
