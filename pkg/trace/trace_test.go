package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "abc")
	assert.Equal(t, "abc", FromContext(ctx))
	assert.Equal(t, "", FromContext(context.Background()))
}

func TestGenerateTraceIDUnique(t *testing.T) {
	a, b := GenerateTraceID(), GenerateTraceID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
