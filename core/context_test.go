package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuppressHeader(t *testing.T) {
	ctx := context.Background()
	assert.False(t, shouldSuppressHeader(ctx))
	assert.True(t, shouldSuppressHeader(WithSuppressHeader(ctx)))

	wrongType := context.WithValue(ctx, suppressHeaderKey, "yes")
	assert.False(t, shouldSuppressHeader(wrongType))
}

func TestRunID(t *testing.T) {
	ctx := context.Background()
	assert.Zero(t, runIDFrom(ctx))
	assert.Equal(t, int64(42), runIDFrom(withRunID(ctx, 42)))
}
