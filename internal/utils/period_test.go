package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		arg  string
		want time.Duration
	}{
		{"days=1", 24 * time.Hour},
		{"days=1,minutes=30", 24*time.Hour + 30*time.Minute},
		{`"days=1,minutes=30"`, 24*time.Hour + 30*time.Minute},
		{"weeks=2", 14 * 24 * time.Hour},
		{"hours=1,seconds=5", time.Hour + 5*time.Second},
		{"milliseconds=250", 250 * time.Millisecond},
		{" days = 3 ", 3 * 24 * time.Hour},
	}
	for _, tc := range cases {
		got, err := ParsePeriod(tc.arg)
		require.NoError(t, err, "arg %q", tc.arg)
		assert.Equal(t, tc.want, got, "arg %q", tc.arg)
	}
}

func TestParsePeriodErrors(t *testing.T) {
	for _, arg := range []string{"", `""`, "days", "fortnights=1", "days=abc", "days=1;minutes=30"} {
		_, err := ParsePeriod(arg)
		assert.Error(t, err, "arg %q", arg)
	}
}
