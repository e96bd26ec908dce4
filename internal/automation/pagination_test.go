package automation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		current int
		max     int
		ok      bool
	}{
		{"plain", "Page 2 of 7", 2, 7, true},
		{"lowercase with padding", "  page 1   of 40 ", 1, 40, true},
		{"embedded", "Showing results · Page 12 of 12 · next", 12, 12, true},
		{"empty", "", 0, 0, false},
		{"no numbers", "Page of", 0, 0, false},
		{"zero page", "Page 0 of 3", 0, 0, false},
		{"other language", "Trang 2 / 7", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, max, ok := ParsePagination(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.current, current)
			assert.Equal(t, tt.max, max)
		})
	}
}

func TestRandomBetween(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := randomBetween(3*time.Second, 7*time.Second)
		assert.GreaterOrEqual(t, d, 3*time.Second)
		assert.LessOrEqual(t, d, 7*time.Second)
	}
	assert.Equal(t, time.Second, randomBetween(time.Second, time.Second))
	assert.Equal(t, time.Second, randomBetween(time.Second, 0))
}
