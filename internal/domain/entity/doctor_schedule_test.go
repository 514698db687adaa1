package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWeekday(t *testing.T) {
	cases := map[string]time.Weekday{
		"Monday":    time.Monday,
		"MONDAY":    time.Monday,
		" tuesday ": time.Tuesday,
		"Sunday":    time.Sunday,
		"saturday":  time.Saturday,
		"wednesday": time.Wednesday,
	}
	for in, want := range cases {
		got, ok := ParseWeekday(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseWeekday("Funday")
	assert.False(t, ok)
	_, ok = ParseWeekday("")
	assert.False(t, ok)
}
