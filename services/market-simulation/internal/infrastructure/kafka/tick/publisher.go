package tick

import (
	"context"
	"strconv"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/logger"
	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=publisher.go -destination=mock/writer_mock.go -package=mock

// Writer is the part of kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config is the tick topic configuration.
type Config struct {
	Brokers   []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic     string   `env:"TICK_TOPIC" envDefault:"sim-ticks"`
	BatchSize int      `env:"BATCH_SIZE" envDefault:"500"`
}

// Publisher streams ticks to Kafka, keyed by run id so a run stays ordered on one partition.
type Publisher struct {
	writer    Writer
	batchSize int
	logger    logger.Interface
}

var _ tickv1.TickPublisher = (*Publisher)(nil)

// NewWriter creates the kafka.Writer of the tick topic.
func NewWriter(config Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    config.BatchSize,
		RequiredAcks: kafka.RequireOne,
	}
}

// NewPublisher creates a publisher backed by a kafka.Writer.
func NewPublisher(config Config, log logger.Interface) *Publisher {
	return NewPublisherWithWriter(NewWriter(config), config.BatchSize, log)
}

// NewPublisherWithWriter creates a publisher on top of an existing writer.
func NewPublisherWithWriter(writer Writer, batchSize int, log logger.Interface) *Publisher {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Publisher{
		writer:    writer,
		batchSize: batchSize,
		logger:    log,
	}
}

// Publish writes one message per tick, batchSize messages per write.
func (p *Publisher) Publish(ctx context.Context, runID, symbol string, ticks []tickv1.Tick) error {
	key := []byte(runID)
	batch := make([]kafka.Message, 0, min(p.batchSize, len(ticks)))

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.writer.WriteMessages(ctx, batch...); err != nil {
			p.logger.ErrorContext(ctx, err,
				logger.NewField("run_id", runID),
				logger.NewField("batch", len(batch)),
			)
			return errors.NewTracer("failed to publish ticks").Wrap(err)
		}
		batch = batch[:0]
		return nil
	}

	for i, t := range ticks {
		value, err := NewEvent(runID, symbol, i, t).ToBytes()
		if err != nil {
			return errors.NewTracer("failed to encode tick").Wrap(err)
		}

		batch = append(batch, kafka.Message{
			Key:   key,
			Value: value,
			Headers: []kafka.Header{
				{Key: "seq", Value: []byte(strconv.Itoa(i))},
			},
		})
		if len(batch) == p.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
