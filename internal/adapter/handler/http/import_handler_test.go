package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportRequestDefaultsToFast(t *testing.T) {
	opts := ImportRequest{}.toOptions()
	assert.True(t, opts.Fast)
}

func TestImportRequestExplicitFastFalse(t *testing.T) {
	fast := false
	opts := ImportRequest{Fast: &fast}.toOptions()
	assert.False(t, opts.Fast)
}
