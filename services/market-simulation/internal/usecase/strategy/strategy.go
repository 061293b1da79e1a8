package strategy

import (
	"github.com/d-banana/safe-portfolio-management/pkg/errors"
	portfoliov1 "github.com/d-banana/safe-portfolio-management/services/market-simulation/internal/domain/portfolio/v1"
	"github.com/shopspring/decimal"
)

// ErrUnknownStrategy is returned by New for an unsupported strategy name.
var ErrUnknownStrategy = errors.NewErrorDetails("unknown strategy", errors.UnknownStrategy, "strategy")

// Strategy names accepted by New.
const (
	NameCPPI = "cppi"
	NameDCA  = "dca"
)

// Params holds the parameters of every strategy; each one reads its own.
type Params struct {
	Risky portfoliov1.Asset
	Safe  portfoliov1.Asset

	Multiplier decimal.Decimal
	Floor      decimal.Decimal

	DCAIntervalMs uint64
	DCAQuantity   decimal.Decimal
	OpenMs        uint64
}

// New builds the strategy with the given name.
func New(name string, params Params) (portfoliov1.Strategy, error) {
	var (
		s   portfoliov1.Strategy
		err error
	)
	switch name {
	case NameCPPI:
		s, err = NewCPPI(params.Risky, params.Safe, params.Multiplier, params.Floor)
	case NameDCA:
		s, err = NewDCA(params.Safe, params.Risky, params.DCAIntervalMs, params.DCAQuantity, params.OpenMs, nil)
	default:
		err = ErrUnknownStrategy.WithOperands(name)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
