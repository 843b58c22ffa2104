package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrProductNotFound))
	assert.Equal(t, KindPolicyViolation, KindOf(fmt.Errorf("delete: %w", ErrLastAdmin)))
	assert.Equal(t, KindOperational, KindOf(errors.New("boom")))
	assert.Equal(t, KindOperational, KindOf(nil))
}

func TestErrorIsMatchesSentinelCopies(t *testing.T) {
	copyOf := &Error{Kind: ErrLastAdmin.Kind, Message: ErrLastAdmin.Message}
	assert.ErrorIs(t, copyOf, ErrLastAdmin)
	assert.NotErrorIs(t, copyOf, ErrNotLockedOut)
}

func TestWrap(t *testing.T) {
	assert.NoError(t, wrap("op", nil))
	assert.Same(t, ErrProductHasHistory, wrap("op", ErrProductHasHistory))

	cause := errors.New("connection reset")
	err := wrap("load product", cause)
	assert.Equal(t, KindOperational, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "load product")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "partial_failure", KindPartialFailure.String())
	assert.Equal(t, "operational", KindOperational.String())
}
