package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorruptf(t *testing.T) {
	err := Corruptf("book %s: bad timestamp", "42")

	assert.True(t, errors.Is(err, ErrCorrupt))
	assert.Contains(t, err.Error(), "book 42: bad timestamp")
}
