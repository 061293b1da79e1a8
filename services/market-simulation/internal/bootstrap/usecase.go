package bootstrap

import (
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/usecase/backtest"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/usecase/export"
)

// Usecase is the usecase for the market simulation.
type Usecase struct {
	ExportUsecase   *export.Usecase
	BacktestUsecase *backtest.Usecase
}

// registerUsecase registers the usecase.
func (b *Bootstrap) registerUsecase() {
	b.Usecase.ExportUsecase = export.NewUsecase(export.Sinks{
		TickRepository: b.Repository.TickRepository,
		HlocRepository: b.Repository.HlocRepository,
		TickPublisher:  b.Publisher.TickPublisher,
		HlocPublisher:  b.Publisher.HlocPublisher,
	}, b.Logger)
	b.Usecase.BacktestUsecase = backtest.NewUsecase(b.Logger)
}
