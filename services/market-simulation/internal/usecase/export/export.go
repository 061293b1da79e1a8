package export

import (
	"context"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/logger"
	hlocv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/hloc/v1"
	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
)

// ErrNoRepository is returned by Load when the run cannot be read back.
var ErrNoRepository = errors.NewErrorDetails("tick and hloc repositories are required", errors.GeneralRepositoryError, "repository")

// Sinks lists where a run is exported. Any sink may be nil.
type Sinks struct {
	TickRepository tickv1.TickRepository
	HlocRepository hlocv1.HlocRepository
	TickPublisher  tickv1.TickPublisher
	HlocPublisher  hlocv1.HlocPublisher
}

// Bars are the bars of one interval.
type Bars struct {
	Interval string
	Bars     []hlocv1.Hloc
}

// Run is a generated run ready to be exported.
type Run struct {
	ID     string
	Symbol string
	Ticks  []tickv1.Tick
	Bars   []Bars
}

// Usecase exports generated runs.
type Usecase struct {
	sinks  Sinks
	logger logger.Interface
}

// NewUsecase creates a new export usecase.
func NewUsecase(sinks Sinks, logger logger.Interface) *Usecase {
	return &Usecase{sinks: sinks, logger: logger}
}

// Export stores the run then publishes it. It stops at the first failing sink.
func (u *Usecase) Export(ctx context.Context, run Run) error {
	if err := u.store(ctx, run); err != nil {
		return err
	}
	return u.publish(ctx, run)
}

func (u *Usecase) store(ctx context.Context, run Run) error {
	if u.sinks.TickRepository != nil {
		if err := u.sinks.TickRepository.StoreBatch(ctx, run.ID, run.Symbol, run.Ticks); err != nil {
			u.logger.ErrorContext(ctx, err, logger.NewField("sink", "tick_repository"))
			return errors.TracerFromError(err)
		}
	}

	if u.sinks.HlocRepository != nil {
		for _, b := range run.Bars {
			if err := u.sinks.HlocRepository.StoreBatch(ctx, run.ID, run.Symbol, b.Interval, b.Bars); err != nil {
				u.logger.ErrorContext(ctx, err, logger.NewField("sink", "hloc_repository"), logger.NewField("interval", b.Interval))
				return errors.TracerFromError(err)
			}
		}
	}

	return nil
}

func (u *Usecase) publish(ctx context.Context, run Run) error {
	if u.sinks.TickPublisher != nil {
		if err := u.sinks.TickPublisher.Publish(ctx, run.ID, run.Symbol, run.Ticks); err != nil {
			u.logger.ErrorContext(ctx, err, logger.NewField("sink", "tick_publisher"))
			return errors.TracerFromError(err)
		}
	}

	if u.sinks.HlocPublisher != nil {
		for _, b := range run.Bars {
			if err := u.sinks.HlocPublisher.Publish(ctx, run.ID, run.Symbol, b.Interval, b.Bars); err != nil {
				u.logger.ErrorContext(ctx, err, logger.NewField("sink", "hloc_publisher"), logger.NewField("interval", b.Interval))
				return errors.TracerFromError(err)
			}
		}
	}

	u.logger.InfoContext(ctx, "run exported",
		logger.NewField("ticks", len(run.Ticks)),
		logger.NewField("intervals", len(run.Bars)),
	)

	return nil
}

// Load reads back the ticks and bars of a stored run.
func (u *Usecase) Load(ctx context.Context, runID string, intervals []string) (Run, error) {
	if u.sinks.TickRepository == nil || u.sinks.HlocRepository == nil {
		return Run{}, errors.TracerFromError(ErrNoRepository)
	}

	ticks, err := u.sinks.TickRepository.GetByFilter(ctx, tickv1.Filter{RunID: runID})
	if err != nil {
		return Run{}, errors.TracerFromError(err)
	}

	run := Run{ID: runID, Ticks: ticks}
	for _, name := range intervals {
		bars, err := u.sinks.HlocRepository.GetByRun(ctx, runID, name)
		if err != nil {
			return Run{}, errors.TracerFromError(err)
		}
		run.Bars = append(run.Bars, Bars{Interval: name, Bars: bars})
	}

	return run, nil
}
