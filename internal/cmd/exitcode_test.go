package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeOf_ExitErrReturnsCodeAndTrue(t *testing.T) {
	err := configError(errors.New("bad config"))
	code, ok := exitCodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, 2, code)
}

func TestExitCodeOf_PlainErrorReturnsFalse(t *testing.T) {
	code, ok := exitCodeOf(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, 0, code)
}

func TestInterrupted_UsesCode130(t *testing.T) {
	err := interrupted(errors.New("ctrl-c"))
	code, ok := exitCodeOf(err)
	assert.True(t, ok)
	assert.Equal(t, 130, code)
}

func TestExitErr_UnwrapReturnsUnderlyingError(t *testing.T) {
	cause := errors.New("root cause")
	err := configError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause.Error(), err.Error())
}
