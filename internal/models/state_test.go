package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorDetails_IsZero(t *testing.T) {
	assert.True(t, ErrorDetails{}.IsZero())
	assert.False(t, ErrorDetails{Message: "Server Error"}.IsZero())
	assert.False(t, ErrorDetails{RequestID: NoRequestID}.IsZero())
}

func TestNewIdleSnapshot(t *testing.T) {
	snap := NewIdleSnapshot()
	assert.Equal(t, StateIdle, snap.Status)
	assert.NotNil(t, snap.Questions)
	assert.Empty(t, snap.Questions)
	assert.Nil(t, snap.Error)
	assert.Equal(t, StateIdle, snap.Progress.Status)
}
