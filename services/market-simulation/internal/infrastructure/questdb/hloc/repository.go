package hloc

import (
	"context"
	"time"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/questdb"
	hlocv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/hloc/v1"
	column "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/infrastructure/questdb"
	"github.com/jackc/pgx/v5"
)

// Table is the QuestDB table holding aggregated bars.
const Table = "sim_hloc"

var columns = []string{"run_id", "symbol", "interval", "timestamp", "open", "high", "low", "close", "volume", "ticks"}

// Repository stores bars in QuestDB.
type Repository struct {
	client questdb.Client
}

var _ hlocv1.HlocRepository = (*Repository)(nil)

// NewRepository creates a new bar repository.
func NewRepository(client questdb.Client) *Repository {
	return &Repository{
		client: client,
	}
}

// StoreBatch copies the bars of one run and interval.
func (r *Repository) StoreBatch(ctx context.Context, runID, symbol, interval string, bars []hlocv1.Hloc) error {
	if len(bars) == 0 {
		return nil
	}

	_, err := r.client.CopyFrom(
		ctx,
		pgx.Identifier{Table},
		columns,
		pgx.CopyFromSlice(len(bars), func(i int) ([]any, error) {
			b := bars[i]
			values := []any{runID, symbol, interval, column.Timestamp(b.Time)}
			for _, v := range []uint64{b.Open, b.High, b.Low, b.Close, b.Volume} {
				l, err := column.Long(v)
				if err != nil {
					return nil, err
				}
				values = append(values, l)
			}
			return append(values, int64(b.Ticks)), nil
		}),
	)
	if err != nil {
		return errors.NewTracer("failed to copy bars").Wrap(err)
	}

	return nil
}

// GetByRun reads the bars of a run for one interval, oldest first.
func (r *Repository) GetByRun(ctx context.Context, runID, interval string) ([]hlocv1.Hloc, error) {
	query := `SELECT timestamp, open, high, low, close, volume, ticks
			  FROM ` + Table + `
			  WHERE run_id = $1 AND interval = $2
			  ORDER BY timestamp`

	rows, err := r.client.Query(ctx, query, runID, interval)
	if err != nil {
		return nil, errors.NewTracer("failed to query bars").Wrap(err)
	}
	defer rows.Close()

	var bars []hlocv1.Hloc
	for rows.Next() {
		var (
			ts                                      time.Time
			open, high, low, closing, volume, ticks int64
		)
		if err := rows.Scan(&ts, &open, &high, &low, &closing, &volume, &ticks); err != nil {
			return nil, errors.NewTracer("failed to scan bar").Wrap(err)
		}

		bar := hlocv1.Hloc{Time: column.Millis(ts), Ticks: int(ticks)}
		targets := []*uint64{&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume}
		for i, v := range []int64{open, high, low, closing, volume} {
			u, err := column.Unsigned(v)
			if err != nil {
				return nil, err
			}
			*targets[i] = u
		}
		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewTracer("error iterating bars").Wrap(err)
	}

	return bars, nil
}
