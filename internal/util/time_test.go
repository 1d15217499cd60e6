package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeFlexible(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2024-05-01T10:30:00Z", want},
		{"rfc3339 offset", "2024-05-01T12:30:00+02:00", want},
		{"millis", "2024-05-01T10:30:00.250Z", want.Add(250 * time.Millisecond)},
		{"epoch millis", "1714559400000", want},
		{"surrounding space", "  2024-05-01T10:30:00Z ", want},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeFlexible(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimeFlexibleRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "yesterday", "2024-05-01"} {
		_, err := ParseTimeFlexible(input)
		assert.Error(t, err, input)
	}
}

func TestParseDurationNs(t *testing.T) {
	ns, err := ParseDurationNs("1.5ms")
	require.NoError(t, err)
	assert.Equal(t, int64(1500000), ns)

	ns, err = ParseDurationNs("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), ns)

	_, err = ParseDurationNs("fast")
	assert.Error(t, err)
}
