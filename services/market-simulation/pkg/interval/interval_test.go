package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInterval(t *testing.T) {
	testCases := []struct {
		name        string
		expected    uint64
		expectedErr error
	}{
		{name: "1m", expected: 60_000},
		{name: "4h", expected: 4 * 3_600_000},
		{name: "1w", expected: 7 * 86_400_000},
		{name: "2m", expectedErr: ErrUnsupportedInterval},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			i, err := GetInterval(tc.name)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, i.Millis())
		})
	}
}

func TestParse(t *testing.T) {
	intervals, err := Parse([]string{"1m", "1h"})
	require.NoError(t, err)
	assert.Equal(t, []Interval{Interval1m, Interval1h}, intervals)

	_, err = Parse([]string{"1m", "7m"})
	assert.ErrorIs(t, err, ErrUnsupportedInterval)
}

func TestInterval_BucketStart(t *testing.T) {
	assert.Equal(t, uint64(120_000), Interval1m.BucketStart(179_999))
	assert.Equal(t, uint64(180_000), Interval1m.BucketStart(180_000))
	assert.Equal(t, uint64(0), Interval1h.BucketStart(3_599_999))
}
