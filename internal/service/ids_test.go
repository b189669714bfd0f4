package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var idPattern = regexp.MustCompile(`^(RES|REQ)-\d{8}-\d{6}-[0-9A-F]{4}$`)

func TestIDFormat(t *testing.T) {
	assert.Regexp(t, idPattern, NewBookingID())
	assert.Regexp(t, idPattern, NewRequestID())
}

func TestIDsDiffer(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewBookingID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
