package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	base := Upstream("completion", errors.New("dial tcp: refused"))
	wrapped := fmt.Errorf("generate idea: %w", base)

	assert.Equal(t, KindUpstream, KindOf(wrapped))
	assert.True(t, Retryable(wrapped))
	assert.Equal(t, "completion request failed, please try again", PublicMessage(wrapped))
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.False(t, Retryable(err))
	assert.Equal(t, "internal error", PublicMessage(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation: http.StatusBadRequest,
		KindAuth:       http.StatusUnauthorized,
		KindNotFound:   http.StatusNotFound,
		KindConflict:   http.StatusConflict,
		KindUpstream:   http.StatusBadGateway,
		KindInternal:   http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind)
	}
}

func TestIs(t *testing.T) {
	assert.True(t, Is(NotFound("project"), KindNotFound))
	assert.False(t, Is(nil, KindNotFound))
}
