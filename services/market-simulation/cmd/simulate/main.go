package main

import (
	"context"
	"flag"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/fixedpoint"
	"github.com/d-banana/safe-portfolio-management/pkg/httplib/healthcheck"
	"github.com/d-banana/safe-portfolio-management/pkg/logger"
	"github.com/d-banana/safe-portfolio-management/pkg/metrics"
	"github.com/d-banana/safe-portfolio-management/pkg/questdb"
	"github.com/d-banana/safe-portfolio-management/pkg/redis"
	"github.com/d-banana/safe-portfolio-management/pkg/util"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/bootstrap"
	hlocv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/hloc/v1"
	marketstatev1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/marketstate/v1"
	portfoliov1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/portfolio/v1"
	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
	kafkaTick "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/infrastructure/kafka/tick"
	simMetrics "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/infrastructure/metrics"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/usecase/backtest"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/usecase/export"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/usecase/runner"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/usecase/strategy"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/pkg/config"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/pkg/interval"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var (
		seed     = flag.Uint64("seed", cfg.Sim.Seed, "PRNG seed, 0 picks one from the clock")
		symbol   = flag.String("symbol", cfg.Sim.Symbol, "Simulated symbol")
		duration = flag.Duration("duration", cfg.Sim.Duration, "Simulated time span")
		policy   = flag.String("policy", cfg.Sim.RegimePolicy, "Regime policy: fixed, transition or uniform")
		doExport = flag.Bool("export", cfg.Export.Enabled(), "Export to the sinks enabled in the environment")
		doTest   = flag.Bool("backtest", cfg.Strategy.Enabled, "Run the configured strategy on the generated bars")
	)
	flag.Parse()

	cfg.Sim.Seed = *seed
	cfg.Sim.Symbol = *symbol
	cfg.Sim.Duration = *duration
	cfg.Sim.RegimePolicy = *policy
	cfg.Strategy.Enabled = *doTest
	if !*doExport {
		cfg.Export = config.ExportConfig{}
	}

	l, err := logger.NewLogger(
		logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)),
		logger.WithOutputPaths(cfg.App.LogOutputPaths),
	)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer l.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = util.WithSymbol(util.WithRunID(ctx, cfg.Sim.RunID), cfg.Sim.Symbol)

	if err := run(ctx, cfg, l); err != nil {
		l.ErrorContext(ctx, err)
		l.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, l logger.Interface) error {
	runnerConfig, err := cfg.Sim.RunnerConfig()
	if err != nil {
		return err
	}
	startPrice, err := cfg.Sim.StartPrice()
	if err != nil {
		return err
	}
	intervals, err := cfg.Sim.ParseIntervals()
	if err != nil {
		return err
	}
	selector, err := marketstatev1.NewSelector(cfg.Sim.RegimePolicy, runnerConfig.InitialState)
	if err != nil {
		return err
	}

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	l.InfoContext(ctx, "starting simulation",
		logger.NewField("seed", seed),
		logger.NewField("policy", cfg.Sim.RegimePolicy),
		logger.NewField("start_ms", cfg.Sim.StartMs()),
		logger.NewField("end_ms", cfg.Sim.EndMs()),
	)

	b, cleanup, err := connect(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer cleanup()

	var observers []runner.Observer
	if cfg.Metrics.Enabled {
		reg := metrics.NewRegistry()
		observers = append(observers, simMetrics.NewObserver(reg))

		srv := metrics.Serve(cfg.Metrics.Addr, metrics.Handler(reg, healthChecks(b)), l)
		defer func() {
			if err := metrics.Shutdown(srv, 5*time.Second); err != nil {
				l.Error(err)
			}
		}()
	}

	r, err := runner.NewRunner(runnerConfig, selector, rand.New(rand.NewPCG(seed, seed)), l, observers...)
	if err != nil {
		return err
	}
	ticks, err := r.Generate(ctx, cfg.Sim.StartMs(), cfg.Sim.EndMs(), startPrice)
	if err != nil {
		return err
	}

	simRun := export.Run{ID: util.GetRunID(ctx), Symbol: cfg.Sim.Symbol, Ticks: ticks}
	for _, iv := range intervals {
		bars, err := hlocv1.FromTicks(ticks, iv.Millis())
		if err != nil {
			return err
		}
		simRun.Bars = append(simRun.Bars, export.Bars{Interval: iv.Name, Bars: bars})
	}
	summarize(ctx, l, simRun)

	if cfg.Export.Enabled() {
		if err := b.Usecase.ExportUsecase.Export(ctx, simRun); err != nil {
			return err
		}
	}

	if cfg.Strategy.Enabled {
		if err := runBacktest(ctx, cfg, b.Usecase.BacktestUsecase, ticks); err != nil {
			return err
		}
	}

	return nil
}

// connect opens the clients of the enabled sinks and wires them.
func connect(ctx context.Context, cfg *config.Config, l logger.Interface) (*bootstrap.Bootstrap, func(), error) {
	bc := bootstrap.BootstrapConfig{Logger: l, KafkaBatchSize: cfg.Kafka.BatchSize}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Export.QuestDB {
		client, err := questdb.NewClient(ctx, cfg.QuestDB)
		if err != nil {
			return nil, nil, err
		}
		bc.QuestDB = client
		closers = append(closers, client.Close)
	}

	if cfg.Export.Redis {
		if err := cfg.Redis.Validate(); err != nil {
			cleanup()
			return nil, nil, err
		}
		client := redis.NewClient(l, &cfg.Redis)
		if err := client.Connect(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		bc.Redis = client
		closers = append(closers, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				l.Error(err)
			}
		})
	}

	if cfg.Export.Kafka {
		writer := kafkaTick.NewWriter(cfg.Kafka)
		bc.Kafka = writer
		closers = append(closers, func() {
			if err := writer.Close(); err != nil {
				l.Error(err)
			}
		})
	}

	b := &bootstrap.Bootstrap{}
	b.Init(bc)

	return b, cleanup, nil
}

func healthChecks(b *bootstrap.Bootstrap) healthcheck.HealthCheck {
	hc := healthcheck.HealthCheck{Checks: map[string]healthcheck.Check{}, Timeout: 2 * time.Second}
	if b.QuestDB != nil {
		hc.Checks["questdb"] = b.QuestDB.Ping
	}
	if b.Redis != nil {
		hc.Checks["redis"] = b.Redis.Ping
	}
	return hc
}

func summarize(ctx context.Context, l logger.Interface, simRun export.Run) {
	if len(simRun.Ticks) == 0 {
		l.WarnContext(ctx, "no tick generated")
		return
	}

	first, last := simRun.Ticks[0], simRun.Ticks[len(simRun.Ticks)-1]
	fields := []logger.Field{
		logger.NewField("ticks", len(simRun.Ticks)),
		logger.NewField("open", fixedpoint.ToDecimal(first.Price).String()),
		logger.NewField("close", fixedpoint.ToDecimal(last.Price).String()),
	}
	for _, b := range simRun.Bars {
		fields = append(fields, logger.NewField("bars_"+b.Interval, len(b.Bars)))
	}
	l.InfoContext(ctx, "simulation summary", fields...)
}

func runBacktest(ctx context.Context, cfg *config.Config, uc *backtest.Usecase, ticks []tickv1.Tick) error {
	iv, err := interval.GetInterval(cfg.Strategy.Interval)
	if err != nil {
		return err
	}
	bars, err := hlocv1.FromTicks(ticks, iv.Millis())
	if err != nil {
		return err
	}

	risky := portfoliov1.NewAsset(cfg.Sim.Symbol, cfg.Sim.Symbol, 6)
	safe := portfoliov1.NewAsset(cfg.Strategy.SafeAsset, cfg.Strategy.SafeAsset, 6)
	s, err := strategy.New(cfg.Strategy.Name, strategy.Params{
		Risky:         risky,
		Safe:          safe,
		Multiplier:    cfg.Strategy.Multiplier,
		Floor:         cfg.Strategy.Floor,
		DCAIntervalMs: uint64(max(cfg.Strategy.DCAEvery, 0) / time.Millisecond),
		DCAQuantity:   cfg.Strategy.DCAQuantity,
		OpenMs:        cfg.Sim.StartMs(),
	})
	if err != nil {
		return err
	}

	_, err = uc.Run(ctx, s, bars, backtest.Config{
		Risky:        risky,
		Safe:         safe,
		InitialRisky: decimal.Zero,
		InitialSafe:  cfg.Strategy.InitialSafe,
	})
	if err != nil {
		return errors.NewTracer("backtest failed").Wrap(err)
	}

	return nil
}
