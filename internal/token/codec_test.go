package token_test

import (
	"strings"
	"testing"
	"time"

	"festpass/internal/token"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	codec := token.NewCodec("test-secret", 0)

	passIDs := []string{
		"pass_1700000000_abcd1234",
		uuid.New().String(),
		"p:with:colons",
	}

	for _, passID := range passIDs {
		signed, err := codec.Sign(passID)
		require.NoError(t, err)

		got, ok := codec.Verify(signed)
		assert.True(t, ok, "token for %s should verify", passID)
		assert.Equal(t, passID, got)
	}
}

func TestTokenWireFormat(t *testing.T) {
	codec := token.NewCodec("test-secret", 0)

	signed, err := codec.Sign("pass_123")
	require.NoError(t, err)

	// "<passId>:<expiryEpochMillis>.<hmac16hex>"
	dot := strings.LastIndex(signed, ".")
	require.Positive(t, dot)
	assert.Len(t, signed[dot+1:], 16)
	assert.True(t, strings.HasPrefix(signed, "pass_123:"))
}

func TestTamperedSignatureFails(t *testing.T) {
	codec := token.NewCodec("test-secret", 0)

	signed, err := codec.Sign("pass_123")
	require.NoError(t, err)

	dot := strings.LastIndex(signed, ".")
	sig := signed[dot+1:]

	// Flipping any single signature character must break verification.
	for i := 0; i < len(sig); i++ {
		flipped := []byte(sig)
		if flipped[i] == 'a' {
			flipped[i] = 'b'
		} else {
			flipped[i] = 'a'
		}
		_, ok := codec.Verify(signed[:dot+1] + string(flipped))
		assert.False(t, ok, "flipped signature char %d should fail", i)
	}
}

func TestTamperedPayloadFails(t *testing.T) {
	codec := token.NewCodec("test-secret", 0)

	signed, err := codec.Sign("pass_123")
	require.NoError(t, err)

	tampered := strings.Replace(signed, "pass_123", "pass_124", 1)
	_, ok := codec.Verify(tampered)
	assert.False(t, ok)
}

func TestExpiredTokenFails(t *testing.T) {
	codec := token.NewCodec("test-secret", 0)

	signed, err := codec.SignWithExpiry("pass_123", -1*time.Second)
	require.NoError(t, err)

	_, ok := codec.Verify(signed)
	assert.False(t, ok)
}

func TestMissingSecret(t *testing.T) {
	codec := token.NewCodec("", 0)

	_, err := codec.Sign("pass_123")
	assert.Error(t, err)

	// A codec without a secret trusts nothing.
	other := token.NewCodec("real-secret", 0)
	signed, err := other.Sign("pass_123")
	require.NoError(t, err)
	_, ok := codec.Verify(signed)
	assert.False(t, ok)
}

func TestMalformedTokens(t *testing.T) {
	codec := token.NewCodec("test-secret", 0)

	for _, raw := range []string{
		"",
		"no-delimiter",
		"pass_123.deadbeefdeadbeef",        // no expiry segment
		"pass_123:notanumber.deadbeefdead", // unparsable expiry
		":1700000000000.deadbeefdeadbeef",  // empty pass id
	} {
		_, ok := codec.Verify(raw)
		assert.False(t, ok, "malformed token %q should fail", raw)
	}
}

func TestRegeneratedTokensIndependentlyValid(t *testing.T) {
	codec := token.NewCodec("test-secret", 0)

	first, err := codec.Sign("pass_123")
	require.NoError(t, err)
	second, err := codec.SignWithExpiry("pass_123", 48*time.Hour)
	require.NoError(t, err)

	// No revocation list: both remain valid until their own expiry.
	_, ok := codec.Verify(first)
	assert.True(t, ok)
	_, ok = codec.Verify(second)
	assert.True(t, ok)
}
