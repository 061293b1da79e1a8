package v1

import (
	"testing"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewActors(t *testing.T) {
	testCases := []struct {
		name        string
		market      uint64
		limit       uint64
		change      uint64
		expectedErr error
	}{
		{name: "success", market: 1, limit: 2, change: 3},
		{name: "zero market volume", market: 0, limit: 2, change: 3, expectedErr: ErrInvalidMarketVolume},
		{name: "zero limit volume", market: 1, limit: 0, change: 3, expectedErr: ErrInvalidLimitVolumeByTick},
		{name: "zero limit change", market: 1, limit: 2, change: 0, expectedErr: ErrInvalidLimitVolumeChangeByTick},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actors, err := NewActors(tc.market, tc.limit, tc.change)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.True(t, errors.ErrorCodeEquals(err, errors.ErrorCode(tc.expectedErr.(*errors.ErrorDetails).Code)))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, Actors{MarketVolume: 1, LimitVolumeByTick: 2, LimitVolumeChangeByTick: 3}, actors)
		})
	}
}

func TestDefaultActors(t *testing.T) {
	_, err := NewActors(DefaultActors.MarketVolume, DefaultActors.LimitVolumeByTick, DefaultActors.LimitVolumeChangeByTick)
	assert.NoError(t, err)
}

func TestPower_ForSide(t *testing.T) {
	p := Power{MarketBuyerVsLimitSeller: Greater, MarketSellerVsLimitBuyer: Less}

	assert.Equal(t, Greater, p.ForSide(true))
	assert.Equal(t, Less, p.ForSide(false))
	assert.Equal(t, "GREATER", Greater.String())
}
