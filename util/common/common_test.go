package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatProgress(t *testing.T) {
	assert.Equal(t, "25/100 (25.0%)", FormatProgress(25, 100))
	assert.Equal(t, "3/0 (0.0%)", FormatProgress(3, 0))
}

func TestCombine(t *testing.T) {
	assert.NoError(t, Combine(nil, nil))

	e1 := errors.New("one")
	err := Combine(nil, e1)
	assert.ErrorIs(t, err, e1)
}

func TestRecoverSwallowsPanic(t *testing.T) {
	run := func() (recovered bool) {
		defer func() { recovered = true }()
		defer Recover("test")
		panic("boom")
	}
	assert.True(t, run())
}
