package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), expected)
}

// AssertInRange checks that v lies within [lo, hi] inclusive.
func AssertInRange(t *testing.T, v, lo, hi float64) {
	t.Helper()
	assert.GreaterOrEqual(t, v, lo)
	assert.LessOrEqual(t, v, hi)
}
