package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

func TestIssueAndVerify(t *testing.T) {
	v := NewVerifier("s3cret", "aio", nil)
	tok, err := v.Issue("user-1", "u1@example.com", time.Hour)
	require.NoError(t, err)

	c := v.Verify(context.Background(), tok)
	require.NotNil(t, c)
	assert.Equal(t, "user-1", c.Subject)
	assert.Equal(t, "u1@example.com", c.Email)
}

func TestVerify_Rejections(t *testing.T) {
	v := NewVerifier("s3cret", "aio", nil)
	expired, err := v.Issue("user-1", "", -time.Minute)
	require.NoError(t, err)
	otherSecret, err := NewVerifier("different", "aio", nil).Issue("user-1", "", time.Hour)
	require.NoError(t, err)
	otherIssuer, err := NewVerifier("s3cret", "someone-else", nil).Issue("user-1", "", time.Hour)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"empty":        "",
		"malformed":    "not-a-jwt",
		"expired":      expired,
		"wrong secret": otherSecret,
		"wrong issuer": otherIssuer,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, v.Verify(context.Background(), tok))
		})
	}
}

func TestNoSecret(t *testing.T) {
	v := NewVerifier("", "", nil)
	_, err := v.Issue("user-1", "", time.Hour)
	assert.ErrorIs(t, err, analysis.ErrConfiguration)
	assert.Nil(t, v.Verify(context.Background(), "whatever"))
}
