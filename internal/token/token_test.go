package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	c := NewCodec([]byte("test-secret"))

	tok, err := c.Generate(42, 7)
	require.NoError(t, err)

	claims, err := c.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.GuestID)
	assert.Equal(t, int64(7), claims.EventID)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt, 5*time.Second)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	c := NewCodec([]byte("test-secret"))

	tok, err := c.Generate(42, 7)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err)

	// Flip the last signature character.
	s := string(raw)
	last := s[len(s)-1]
	flipped := byte('0')
	if last == '0' {
		flipped = '1'
	}
	tampered := base64.RawURLEncoding.EncodeToString(append([]byte(s[:len(s)-1]), flipped))

	_, err = c.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := NewCodec([]byte("secret-a")).Generate(1, 1)
	require.NoError(t, err)

	_, err = NewCodec([]byte("secret-b")).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	issued := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCodec([]byte("test-secret"), WithClock(func() time.Time { return issued }))

	tok, err := c.Generate(42, 7)
	require.NoError(t, err)

	// 90 days minus a minute: still valid.
	late := NewCodec([]byte("test-secret"), WithClock(func() time.Time {
		return issued.Add(DefaultTTL - time.Minute)
	}))
	_, err = late.Verify(tok)
	require.NoError(t, err)

	// Past the window: rejected even with a correct signature.
	expired := NewCodec([]byte("test-secret"), WithClock(func() time.Time {
		return issued.Add(DefaultTTL + time.Minute)
	}))
	_, err = expired.Verify(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	c := NewCodec([]byte("test-secret"))

	cases := map[string]string{
		"not base64url":   "not!!base64%%",
		"too few fields":  base64.RawURLEncoding.EncodeToString([]byte("1:2:3")),
		"too many fields": base64.RawURLEncoding.EncodeToString([]byte("1:2:3:4:5:6")),
		"non-numeric id":  base64.RawURLEncoding.EncodeToString([]byte("x:2:3:abcd:ffff")),
		"empty":           "",
	}
	for name, tok := range cases {
		_, err := c.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestTokenFormat(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewCodec([]byte("test-secret"),
		WithClock(func() time.Time { return issued }),
		WithRand(func(b []byte) (int, error) {
			for i := range b {
				b[i] = 0xAB
			}
			return len(b), nil
		}),
	)

	tok, err := c.Generate(42, 7)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err)
	parts := strings.Split(string(raw), ":")
	require.Len(t, parts, 5)
	assert.Equal(t, "42", parts[0])
	assert.Equal(t, "7", parts[1])
	assert.Equal(t, "1748779200000", parts[2])
	assert.Equal(t, strings.Repeat("ab", 16), parts[3])
	assert.Len(t, parts[4], 64) // hex sha256
}
