package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthStart(t *testing.T) {
	in := time.Date(2025, 3, 17, 15, 42, 9, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), MonthStart(in))

	first := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, first, MonthStart(first))
}

func TestDaysAgo(t *testing.T) {
	in := time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC), DaysAgo(in, 30))
}
