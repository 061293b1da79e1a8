package metrics

import (
	"context"

	"github.com/d-banana/safe-portfolio-management/pkg/fixedpoint"
	marketstatev1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/marketstate/v1"
	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
	"github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/usecase/runner"
	"github.com/prometheus/client_golang/prometheus"
)

// Observer records run progress as Prometheus series.
type Observer struct {
	windows     *prometheus.CounterVec
	windowMs    *prometheus.CounterVec
	trades      *prometheus.CounterVec
	ticks       *prometheus.CounterVec
	volume      *prometheus.CounterVec
	levels      prometheus.Histogram
	lastPrice   prometheus.Gauge
	currentTime prometheus.Gauge
}

var _ runner.Observer = (*Observer)(nil)

// NewObserver creates the series and registers them on reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		windows: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "sim_windows_total", Help: "Market state windows started"},
			[]string{"state"},
		),
		windowMs: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "sim_window_duration_ms_total", Help: "Simulated milliseconds spent per market state"},
			[]string{"state"},
		),
		trades: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "sim_trades_total", Help: "Market orders resolved"},
			[]string{"side"},
		),
		ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "sim_ticks_total", Help: "Ticks produced"},
			[]string{"side"},
		),
		volume: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "sim_volume_total", Help: "Traded volume in units"},
			[]string{"side"},
		),
		levels: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sim_trade_levels",
			Help:    "Price levels walked by one market order",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
		lastPrice: prometheus.NewGauge(prometheus.GaugeOpts{Name: "sim_last_price", Help: "Last traded price"}),
		currentTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sim_time_ms", Help: "Simulated time of the last trade in Unix milliseconds",
		}),
	}

	reg.MustRegister(o.windows, o.windowMs, o.trades, o.ticks, o.volume, o.levels, o.lastPrice, o.currentTime)
	return o
}

// OnWindow implements runner.Observer.
func (o *Observer) OnWindow(_ context.Context, state marketstatev1.State, _, durationMs uint64) {
	o.windows.WithLabelValues(state.String()).Inc()
	o.windowMs.WithLabelValues(state.String()).Add(float64(durationMs))
}

// OnTrade implements runner.Observer.
func (o *Observer) OnTrade(_ context.Context, isBuy bool, ticks []tickv1.Tick) {
	if len(ticks) == 0 {
		return
	}

	side := "sell"
	if isBuy {
		side = "buy"
	}
	o.trades.WithLabelValues(side).Inc()
	o.ticks.WithLabelValues(side).Add(float64(len(ticks)))
	o.levels.Observe(float64(len(ticks)))

	for _, t := range ticks {
		v, _ := fixedpoint.ToDecimal(t.Volume).Float64()
		o.volume.WithLabelValues(side).Add(v)
	}

	last := ticks[len(ticks)-1]
	price, _ := fixedpoint.ToDecimal(last.Price).Float64()
	o.lastPrice.Set(price)
	o.currentTime.Set(float64(last.Time))
}
