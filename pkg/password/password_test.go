package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/backend/domain"
)

func TestValidateStrength(t *testing.T) {
	cases := []struct {
		name     string
		password string
		reason   string
	}{
		{name: "valid", password: "Abcdef1!"},
		{name: "valid long", password: "Sup3r-Secret-Passphrase"},
		{name: "too short", password: "Ab1!", reason: "at least 8 characters"},
		{name: "no uppercase", password: "abcdef1!", reason: "uppercase"},
		{name: "no lowercase", password: "ABCDEF1!", reason: "lowercase"},
		{name: "no digit", password: "Abcdefg!", reason: "digit"},
		{name: "no special", password: "Abcdefg1", reason: "special"},
		// Length is checked before character classes.
		{name: "short and no digit", password: "Ab!", reason: "at least 8 characters"},
		// Rule order breaks ties: uppercase is reported before digit.
		{name: "no upper no digit", password: "abcdefg!", reason: "uppercase"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStrength(tc.password)
			if tc.reason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeWeakPassword))
			assert.Contains(t, err.Error(), tc.reason)
		})
	}
}

func TestHashVerifyRoundTrip(t *testing.T) {
	hash, err := Hash("Abcdef1!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "Abcdef1!")

	assert.True(t, Verify("Abcdef1!", hash))
	assert.False(t, Verify("wrong-password", hash))
	assert.False(t, Verify("Abcdef1!", "not-a-hash"))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("Abcdef1!")
	require.NoError(t, err)
	second, err := Hash("Abcdef1!")
	require.NoError(t, err)
	// Embedded salts make hashes of the same password differ.
	assert.NotEqual(t, first, second)
}
