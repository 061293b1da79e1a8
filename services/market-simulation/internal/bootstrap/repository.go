package bootstrap

import (
	hlocv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/hloc/v1"
	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
	hlocInfra "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/infrastructure/questdb/hloc"
	tickInfra "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/infrastructure/questdb/tick"
)

// Repository is the repository for the market simulation.
type Repository struct {
	TickRepository tickv1.TickRepository
	HlocRepository hlocv1.HlocRepository
}

// registerRepository registers the repository.
func (b *Bootstrap) registerRepository() {
	if b.QuestDB == nil {
		return
	}
	b.Repository.TickRepository = tickInfra.NewRepository(b.QuestDB)
	b.Repository.HlocRepository = hlocInfra.NewRepository(b.QuestDB)
}
