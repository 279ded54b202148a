package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"researchhub/pkg/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, issued, err := GenerateJWT(42, "secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestJWTRejectsWrongSecretAndExpired(t *testing.T) {
	token, _, err := GenerateJWT(1, "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(token, "other")
	assert.Error(t, err)

	expired, _, err := GenerateJWT(1, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ExtractToken(req))

	req.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", ExtractToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, ExtractToken(req))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword("hunter22", hash))
	assert.False(t, CheckPassword("hunter23", hash))

	_, err = HashPassword(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err       error
		retryable bool
		kind      string
	}{
		{fmt.Errorf("load: %w", pgx.ErrNoRows), false, "reminder_not_found"},
		{apperr.Upstream("sendgrid", errors.New("503")), true, "mail_service_error"},
		{apperr.Validation("bad address"), false, "validation_error"},
		{context.DeadlineExceeded, true, "timeout"},
		{errors.New("json: cannot unmarshal"), false, "json_decode_error"},
		{errors.New("strange"), false, "unknown_error"},
	}
	for _, tc := range cases {
		retryable, kind := IsRetryableError(tc.err)
		assert.Equal(t, tc.retryable, retryable, tc.err.Error())
		assert.Equal(t, tc.kind, kind, tc.err.Error())
	}
}

func TestShouldRetry(t *testing.T) {
	assert.True(t, ShouldRetry(1, 3, true))
	assert.True(t, ShouldRetry(3, 3, true))
	assert.False(t, ShouldRetry(4, 3, true))
	assert.False(t, ShouldRetry(1, 3, false))
}

func TestKeyFormats(t *testing.T) {
	assert.Equal(t, "lock:roadmap:7", FormatLockKey("roadmap", 7))
	assert.Equal(t, "retry:reminder_due:3:60", FormatRetryKey("reminder_due", 3, time.Unix(60, 0)))
}
