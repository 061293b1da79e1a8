package tick

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/d-banana/safe-portfolio-management/pkg/logger"
	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/infrastructure/kafka/tick/mock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNewEvent(t *testing.T) {
	ma := uint64(100_250_000)
	tk := tickv1.Tick{Price: 100_000_000, Time: 42, Volume: 1_500_000, IsUp: false, MovingAverage: &ma}

	raw, err := NewEvent("run-1", "SIM", 3, tk).ToBytes()
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"run_id": "run-1",
		"symbol": "SIM",
		"seq": 3,
		"time_ms": 42,
		"price": "100",
		"volume": "1.5",
		"side": "sell",
		"moving_average": "100.25"
	}`, string(raw))
}

func TestPublisher_Publish(t *testing.T) {
	ticks := []tickv1.Tick{
		{Price: 100_000_000, Time: 1, Volume: 1_000_000, IsUp: true},
		{Price: 100_100_000, Time: 1, Volume: 2_000_000, IsUp: true},
		{Price: 100_000_000, Time: 5, Volume: 3_000_000},
	}

	testCases := []struct {
		name     string
		ticks    []tickv1.Tick
		mockFn   func(writer *mock.MockWriter, batches *[][]kafka.Message)
		assertFn func(t *testing.T, err error, batches [][]kafka.Message)
	}{
		{
			name:  "splits into batches",
			ticks: ticks,
			mockFn: func(writer *mock.MockWriter, batches *[][]kafka.Message) {
				writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, msgs ...kafka.Message) error {
						*batches = append(*batches, append([]kafka.Message(nil), msgs...))
						return nil
					}).Times(2)
			},
			assertFn: func(t *testing.T, err error, batches [][]kafka.Message) {
				require.NoError(t, err)
				require.Len(t, batches, 2)
				assert.Len(t, batches[0], 2)
				assert.Len(t, batches[1], 1)

				last := batches[1][0]
				assert.Equal(t, []byte("run-1"), last.Key)
				assert.Equal(t, "2", string(last.Headers[0].Value))

				var event Event
				require.NoError(t, json.Unmarshal(last.Value, &event))
				assert.Equal(t, 2, event.Seq)
				assert.Equal(t, "3", event.Volume)
			},
		},
		{
			name:   "nothing to publish",
			mockFn: func(writer *mock.MockWriter, batches *[][]kafka.Message) {},
			assertFn: func(t *testing.T, err error, batches [][]kafka.Message) {
				assert.NoError(t, err)
				assert.Empty(t, batches)
			},
		},
		{
			name:  "write fails",
			ticks: ticks,
			mockFn: func(writer *mock.MockWriter, batches *[][]kafka.Message) {
				writer.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
			},
			assertFn: func(t *testing.T, err error, batches [][]kafka.Message) {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "broker down")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			var batches [][]kafka.Message
			writer := mock.NewMockWriter(ctrl)
			tc.mockFn(writer, &batches)

			p := NewPublisherWithWriter(writer, 2, logger.NewNop())
			err := p.Publish(context.Background(), "run-1", "SIM", tc.ticks)
			tc.assertFn(t, err, batches)
		})
	}
}

func TestPublisher_Close(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	writer := mock.NewMockWriter(ctrl)
	writer.EXPECT().Close().Return(nil)

	assert.NoError(t, NewPublisherWithWriter(writer, 0, logger.NewNop()).Close())
}

func TestNewWriter(t *testing.T) {
	w := NewWriter(Config{Brokers: []string{"k1:9092", "k2:9092"}, Topic: "sim-ticks", BatchSize: 50})

	assert.Equal(t, "sim-ticks", w.Topic)
	assert.Equal(t, 50, w.BatchSize)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}
