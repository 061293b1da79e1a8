package config

import (
	stderrors "errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/fixedpoint"
	"github.com/d-banana/safe-portfolio-management/pkg/metrics"
	"github.com/d-banana/safe-portfolio-management/pkg/questdb"
	"github.com/d-banana/safe-portfolio-management/pkg/redis"
	marketstatev1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/marketstate/v1"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/infrastructure/kafka/tick"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/usecase/runner"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/pkg/interval"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config represents the application configuration.
type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	Sim      SimConfig      `envPrefix:"SIM_"`
	Strategy StrategyConfig `envPrefix:"STRATEGY_"`
	Export   ExportConfig   `envPrefix:"EXPORT_"`
	QuestDB  questdb.Config `envPrefix:"QUESTDB_"`
	Kafka    tick.Config    `envPrefix:"KAFKA_"`
	Redis    redis.Config   `envPrefix:"REDIS_"`
	Metrics  metrics.Config `envPrefix:"METRICS_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name           string   `env:"NAME" envDefault:"market-simulation"`
	Environment    string   `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	LogOutputPaths []string `env:"LOG_OUTPUT_PATHS" envSeparator:"," envDefault:"stderr"`
}

// SimConfig describes one generated run. Prices and volumes are human decimals.
type SimConfig struct {
	RunID     string          `env:"RUN_ID"`
	Symbol    string          `env:"SYMBOL" envDefault:"SIM-USD"`
	Seed      uint64          `env:"SEED" envDefault:"0"`
	Start     time.Time       `env:"START" envDefault:"2024-01-01T00:00:00Z"`
	Duration  time.Duration   `env:"DURATION" envDefault:"720h"`
	Price     decimal.Decimal `env:"START_PRICE" envDefault:"100"`
	Increment decimal.Decimal `env:"PRICE_INCREMENT" envDefault:"0.1"`

	TradeIntervalMin  time.Duration `env:"TRADE_INTERVAL_MIN" envDefault:"15ms"`
	TradeIntervalMax  time.Duration `env:"TRADE_INTERVAL_MAX" envDefault:"30s"`
	RegimeDurationMin time.Duration `env:"REGIME_DURATION_MIN" envDefault:"336h"`
	RegimeDurationMax time.Duration `env:"REGIME_DURATION_MAX" envDefault:"2160h"`

	VolumeBaseMin       decimal.Decimal `env:"VOLUME_BASE_MIN" envDefault:"1"`
	VolumeBaseMax       decimal.Decimal `env:"VOLUME_BASE_MAX" envDefault:"100"`
	LiquidityChangeMin  decimal.Decimal `env:"LIQUIDITY_CHANGE_MIN" envDefault:"1"`
	LiquidityChangeMax  decimal.Decimal `env:"LIQUIDITY_CHANGE_MAX" envDefault:"100"`
	LiquidityAmplifier  decimal.Decimal `env:"LIQUIDITY_AMPLIFIER" envDefault:"1.005"`
	MovingAverageWindow int             `env:"MOVING_AVERAGE_WINDOW" envDefault:"20"`
	InitialState        string          `env:"INITIAL_STATE" envDefault:"MB_EQUAL_LS_MS_EQUAL_LB"`
	RegimePolicy        string          `env:"REGIME_POLICY" envDefault:"transition"`
	Intervals           []string        `env:"INTERVALS" envSeparator:"," envDefault:"1h,4h,1d"`
}

// StrategyConfig configures the backtest run on the generated bars.
type StrategyConfig struct {
	Enabled     bool            `env:"ENABLED" envDefault:"false"`
	Name        string          `env:"NAME" envDefault:"cppi"`
	SafeAsset   string          `env:"SAFE_ASSET" envDefault:"USD"`
	Interval    string          `env:"INTERVAL" envDefault:"4h"`
	InitialSafe decimal.Decimal `env:"INITIAL_SAFE" envDefault:"100"`
	Multiplier  decimal.Decimal `env:"CPPI_MULTIPLIER" envDefault:"3"`
	Floor       decimal.Decimal `env:"CPPI_FLOOR" envDefault:"80"`
	DCAEvery    time.Duration   `env:"DCA_EVERY" envDefault:"24h"`
	DCAQuantity decimal.Decimal `env:"DCA_QUANTITY" envDefault:"10"`
}

// ExportConfig toggles every export sink.
type ExportConfig struct {
	QuestDB bool `env:"QUESTDB" envDefault:"false"`
	Kafka   bool `env:"KAFKA" envDefault:"false"`
	Redis   bool `env:"REDIS" envDefault:"false"`
}

// Enabled reports whether any sink is on.
func (e ExportConfig) Enabled() bool {
	return e.QuestDB || e.Kafka || e.Redis
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.NewTracer("failed to parse config").Wrap(err)
	}

	return cfg, nil
}

// Parse reads the configuration from the given variables only.
func Parse(environment map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environment}); err != nil {
		return nil, errors.NewTracer("failed to parse config").Wrap(err)
	}

	return cfg, nil
}

// StartMs returns the first millisecond of the run.
func (s SimConfig) StartMs() uint64 {
	ms := s.Start.UnixMilli()
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}

// EndMs returns the end of the run, excluded.
func (s SimConfig) EndMs() uint64 {
	return s.StartMs() + millis(s.Duration)
}

// StartPrice returns the fixed-point opening price.
func (s SimConfig) StartPrice() (uint64, error) {
	return fixedpoint.FromDecimal(s.Price)
}

// ParseIntervals resolves the bar intervals.
func (s SimConfig) ParseIntervals() ([]interval.Interval, error) {
	return interval.Parse(s.Intervals)
}

// RunnerConfig maps the environment values onto a validated runner configuration.
func (s SimConfig) RunnerConfig() (runner.Config, error) {
	be := errors.NewBaseError()
	fixed := func(d decimal.Decimal) uint64 {
		v, err := fixedpoint.FromDecimal(d)
		if err != nil {
			addDetails(be, err)
		}
		return v
	}

	cfg := runner.Config{
		PriceIncrement:        fixed(s.Increment),
		TradeIntervalMs:       runner.Range{Min: millis(s.TradeIntervalMin), Max: millis(s.TradeIntervalMax)},
		RegimeDurationMs:      runner.Range{Min: millis(s.RegimeDurationMin), Max: millis(s.RegimeDurationMax)},
		VolumeBase:            runner.Range{Min: fixed(s.VolumeBaseMin), Max: fixed(s.VolumeBaseMax)},
		LiquidityChangeByTick: runner.Range{Min: fixed(s.LiquidityChangeMin), Max: fixed(s.LiquidityChangeMax)},
		LiquidityAmplifier:    fixed(s.LiquidityAmplifier),
		MovingAverageWindow:   s.MovingAverageWindow,
	}

	state, err := marketstatev1.ParseState(s.InitialState)
	if err != nil {
		addDetails(be, err)
	}
	cfg.InitialState = state

	if err := be.OrNil(); err != nil {
		return runner.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return runner.Config{}, err
	}

	return cfg, nil
}

func addDetails(be *errors.BaseError, err error) {
	var details *errors.ErrorDetails
	if stderrors.As(err, &details) {
		be.AddErrorDetails(details)
	}
}

func millis(d time.Duration) uint64 {
	if d < 0 {
		return 0
	}
	return uint64(d / time.Millisecond)
}
