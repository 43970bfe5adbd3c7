package storage

import (
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXsdDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		text string
	}{
		{0, "PT0S"},
		{time.Nanosecond, "PT0.000000001S"},
		{1500 * time.Millisecond, "PT1.5S"},
		{24 * time.Hour, "P1D"},
		{-(26*time.Hour + 3*time.Minute + 4500*time.Millisecond), "-P1DT2H3M4.5S"},
		{90 * time.Minute, "PT1H30M"},
		{math.MaxInt64, "P106751DT23H47M16.854775807S"},
		{math.MinInt64, "-P106751DT23H47M16.854775808S"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.text, formatXsdDuration(tt.d))
			d, err := parseXsdDuration(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.d, d)
		})
	}
}

func TestXsdDurationRejects(t *testing.T) {
	for _, text := range []string{"", "P", "PT", "1D", "P1Y", "P1M", "P1.5D", "PT1..5S", "P1DT"} {
		_, err := parseXsdDuration(text)
		assert.True(t, errors.Is(err, ErrConversion), text)
	}
	_, err := parseXsdDuration("P106751DT23H47M16.854775808S")
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestXMLFloat(t *testing.T) {
	assert.Equal(t, "INF", formatXMLFloat(math.Inf(1), 64))
	assert.Equal(t, "-INF", formatXMLFloat(math.Inf(-1), 64))
	assert.Equal(t, "NaN", formatXMLFloat(math.NaN(), 64))
	assert.Equal(t, "0.1", formatXMLFloat(float64(float32(0.1)), 32))

	f, err := parseXMLFloat(" -INF ", 64)
	require.NoError(t, err)
	assert.True(t, math.IsInf(f, -1))
	_, err = parseXMLFloat("1,5", 64)
	assert.True(t, errors.Is(err, ErrConversion))
}

func TestXMLBool(t *testing.T) {
	for text, want := range map[string]bool{"true": true, "1": true, "false": false, " 0 ": false} {
		b, err := parseXMLBool(text)
		require.NoError(t, err)
		assert.Equal(t, want, b)
	}
	_, err := parseXMLBool("True")
	assert.Error(t, err)
}
