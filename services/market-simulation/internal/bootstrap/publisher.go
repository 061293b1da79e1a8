package bootstrap

import (
	hlocv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/hloc/v1"
	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
	kafkaTick "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/infrastructure/kafka/tick"
	redisHloc "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/infrastructure/redis/hloc"
)

// Publisher holds the streaming sinks of the market simulation.
type Publisher struct {
	TickPublisher tickv1.TickPublisher
	HlocPublisher hlocv1.HlocPublisher
}

// registerPublisher registers the publishers.
func (b *Bootstrap) registerPublisher(kafkaBatchSize int) {
	if b.Kafka != nil {
		b.Publisher.TickPublisher = kafkaTick.NewPublisherWithWriter(b.Kafka, kafkaBatchSize, b.Logger)
	}
	if b.Redis != nil {
		b.Publisher.HlocPublisher = redisHloc.NewPublisher(b.Redis, b.Logger)
	}
}
