package dErrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCodeWalksWrappedChain(t *testing.T) {
	inner := New(CodeNotFound, "version not found")
	outer := Wrap(inner, CodeInternal, "failed to load version")

	assert.True(t, HasCode(outer, CodeInternal))
	assert.True(t, HasCode(outer, CodeNotFound))
	assert.False(t, HasCode(outer, CodeConflict))
}

func TestHasCodeOnPlainError(t *testing.T) {
	assert.False(t, HasCode(errors.New("boom"), CodeInternal))
}

func TestCodeOfAndMessageOf(t *testing.T) {
	err := New(CodeInvalidTransition, "cannot transition from approved to draft")
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
	assert.Equal(t, "cannot transition from approved to draft", MessageOf(err))

	plain := fmt.Errorf("db: %w", errors.New("connection refused"))
	assert.Equal(t, CodeInternal, CodeOf(plain))
	assert.Equal(t, "internal error", MessageOf(plain))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("unique violation")
	err := Wrap(cause, CodeConflict, "label already exists")
	assert.ErrorIs(t, err, cause)
}
