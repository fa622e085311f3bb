package waitlist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"  A@B.com ":           "a@b.com",
		"\tUser@Example.ORG\n": "user@example.org",
		"   ":                  "",
		// e followed by a combining acute accent composes to a single rune.
		"Jose\u0301@example.com": "jos\u00e9@example.com",
	}

	for input, want := range cases {
		assert.Equal(t, want, NormalizeEmail(input), "input %q", input)
	}
}

func TestValidateEmail(t *testing.T) {
	email, err := ValidateEmail(" Person@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "person@example.com", email)

	for _, input := range []string{"", "   ", "plainaddress", "@example.com", "a@", "a b@example.com"} {
		_, err := ValidateEmail(input)
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr, "input %q", input)
		assert.Equal(t, input, validationErr.Input)
	}

	tooLong := strings.Repeat("a", 250) + "@example.com"
	_, err = ValidateEmail(tooLong)
	assert.ErrorIs(t, err, ErrEmailInvalid)
}

func TestValidationError_UserMessage(t *testing.T) {
	_, err := ValidateEmail("")
	require.Error(t, err)
	assert.Equal(t, MessageEmailRequired, err.(*ValidationError).UserMessage())

	_, err = ValidateEmail("nope")
	require.Error(t, err)
	assert.Equal(t, MessageEmailInvalid, err.(*ValidationError).UserMessage())
}
