package tick

import (
	"context"
	"fmt"
	"time"

	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	"github.com/d-banana/safe-portfolio-management/pkg/questdb"
	tickv1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/tick/v1"
	column "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/infrastructure/questdb"
	"github.com/jackc/pgx/v5"
)

// Table is the QuestDB table holding generated ticks.
const Table = "sim_ticks"

var columns = []string{"run_id", "symbol", "timestamp", "seq", "price", "volume", "is_up", "moving_average", "variance"}

// Repository stores ticks in QuestDB.
type Repository struct {
	client questdb.Client
}

var _ tickv1.TickRepository = (*Repository)(nil)

// NewRepository creates a new tick repository.
func NewRepository(client questdb.Client) *Repository {
	return &Repository{
		client: client,
	}
}

// StoreBatch copies ticks of one run. seq keeps the generation order of ticks sharing a timestamp.
func (r *Repository) StoreBatch(ctx context.Context, runID, symbol string, ticks []tickv1.Tick) error {
	if len(ticks) == 0 {
		return nil
	}

	_, err := r.client.CopyFrom(
		ctx,
		pgx.Identifier{Table},
		columns,
		pgx.CopyFromSlice(len(ticks), func(i int) ([]any, error) {
			return row(runID, symbol, i, ticks[i])
		}),
	)
	if err != nil {
		return errors.NewTracer("failed to copy ticks").Wrap(err)
	}

	return nil
}

func row(runID, symbol string, seq int, t tickv1.Tick) ([]any, error) {
	price, err := column.Long(t.Price)
	if err != nil {
		return nil, err
	}
	volume, err := column.Long(t.Volume)
	if err != nil {
		return nil, err
	}
	ma, err := nullableLong(t.MovingAverage)
	if err != nil {
		return nil, err
	}
	variance, err := nullableLong(t.Variance)
	if err != nil {
		return nil, err
	}

	return []any{runID, symbol, column.Timestamp(t.Time), int64(seq), price, volume, t.IsUp, ma, variance}, nil
}

func nullableLong(v *uint64) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	l, err := column.Long(*v)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func nullableUnsigned(v *int64) (*uint64, error) {
	if v == nil {
		return nil, nil
	}
	u, err := column.Unsigned(*v)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByFilter reads ticks of a run in generation order.
func (r *Repository) GetByFilter(ctx context.Context, filter tickv1.Filter) ([]tickv1.Tick, error) {
	query := "SELECT timestamp, price, volume, is_up, moving_average, variance FROM " + Table + " WHERE run_id = $1"
	args := []any{filter.RunID}
	argIndex := 2

	if filter.Symbol != "" {
		query += fmt.Sprintf(" AND symbol = $%d", argIndex)
		args = append(args, filter.Symbol)
		argIndex++
	}

	if filter.From != nil {
		query += fmt.Sprintf(" AND timestamp >= $%d", argIndex)
		args = append(args, column.Timestamp(*filter.From))
		argIndex++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND timestamp < $%d", argIndex)
		args = append(args, column.Timestamp(*filter.To))
		argIndex++
	}

	query += " ORDER BY timestamp, seq"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
	}

	rows, err := r.client.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.NewTracer("failed to query ticks").Wrap(err)
	}
	defer rows.Close()

	var ticks []tickv1.Tick
	for rows.Next() {
		var (
			ts            time.Time
			price, volume int64
			isUp          bool
			ma, variance  *int64
		)
		if err := rows.Scan(&ts, &price, &volume, &isUp, &ma, &variance); err != nil {
			return nil, errors.NewTracer("failed to scan tick").Wrap(err)
		}

		t, err := toTick(ts, price, volume, isUp, ma, variance)
		if err != nil {
			return nil, err
		}
		ticks = append(ticks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewTracer("error iterating ticks").Wrap(err)
	}

	return ticks, nil
}

func toTick(ts time.Time, price, volume int64, isUp bool, ma, variance *int64) (tickv1.Tick, error) {
	p, err := column.Unsigned(price)
	if err != nil {
		return tickv1.Tick{}, err
	}
	v, err := column.Unsigned(volume)
	if err != nil {
		return tickv1.Tick{}, err
	}
	m, err := nullableUnsigned(ma)
	if err != nil {
		return tickv1.Tick{}, err
	}
	s, err := nullableUnsigned(variance)
	if err != nil {
		return tickv1.Tick{}, err
	}

	return tickv1.NewTick(p, column.Millis(ts), v, isUp, m, s)
}
