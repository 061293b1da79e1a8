package bootstrap

import (
	"github.com/d-banana/safe-portfolio-management/pkg/logger"
	"github.com/d-banana/safe-portfolio-management/pkg/questdb"
	"github.com/d-banana/safe-portfolio-management/pkg/redis"
	kafkaTick "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/infrastructure/kafka/tick"
)

// Bootstrap holds the wired dependencies of the market simulation.
type Bootstrap struct {
	Usecase    Usecase
	Logger     logger.Interface
	Repository Repository
	Publisher  Publisher

	QuestDB questdb.Client
	Redis   redis.Client
	Kafka   kafkaTick.Writer
}

// BootstrapConfig is the config for the bootstrap. Nil clients disable their sinks.
type BootstrapConfig struct {
	QuestDB        questdb.Client
	Redis          redis.Client
	Kafka          kafkaTick.Writer
	KafkaBatchSize int
	Logger         logger.Interface
}

// Init initializes the bootstrap.
func (b *Bootstrap) Init(config BootstrapConfig) Bootstrap {
	b.QuestDB = config.QuestDB
	b.Redis = config.Redis
	b.Kafka = config.Kafka
	b.Logger = config.Logger

	b.registerRepository()
	b.registerPublisher(config.KafkaBatchSize)
	b.registerUsecase()

	return *b
}
