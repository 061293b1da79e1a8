package errors

import (
	"bytes"
	"fmt"
	"strings"
)

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralRepositoryError represents a generic repository error.
	GeneralRepositoryError ErrorCode = "general_repository_error"
	// GeneralPublisherError represents a generic publisher error.
	GeneralPublisherError ErrorCode = "general_publisher_error"

	// InvalidPrice represents a tick price that is not strictly positive.
	InvalidPrice ErrorCode = "invalid_price"
	// InvalidVolume represents a tick volume that is not strictly positive.
	InvalidVolume ErrorCode = "invalid_volume"
	// InvalidDuration represents a bucket duration that is not strictly positive.
	InvalidDuration ErrorCode = "invalid_duration"
	// TicksNotOrdered represents a tick sequence that goes back in time.
	TicksNotOrdered ErrorCode = "ticks_not_ordered"
	// HlocVolumeOverflow represents a bar volume sum that does not fit 64 bits.
	HlocVolumeOverflow ErrorCode = "hloc_volume_overflow"

	// InvalidMarketVolume represents a zero market volume.
	InvalidMarketVolume ErrorCode = "invalid_market_volume"
	// InvalidLimitVolumeByTick represents a zero limit volume per price level.
	InvalidLimitVolumeByTick ErrorCode = "invalid_limit_volume_by_tick"
	// InvalidLimitVolumeChangeByTick represents a zero limit volume change per price level.
	InvalidLimitVolumeChangeByTick ErrorCode = "invalid_limit_volume_change_by_tick"

	// InvalidPriceIncrement represents a zero price increment.
	InvalidPriceIncrement ErrorCode = "invalid_price_increment"
	// InvalidTradeIntervalRange represents a bad inter-trade gap range.
	InvalidTradeIntervalRange ErrorCode = "invalid_trade_interval_range"
	// InvalidRegimeDurationRange represents a bad market-state window range.
	InvalidRegimeDurationRange ErrorCode = "invalid_regime_duration_range"
	// InvalidVolumeBaseRange represents a bad base volume range.
	InvalidVolumeBaseRange ErrorCode = "invalid_volume_base_range"
	// InvalidLiquidityChangeRange represents a bad limit change range.
	InvalidLiquidityChangeRange ErrorCode = "invalid_liquidity_change_range"
	// InvalidLiquidityAmplifier represents a zero liquidity amplifier.
	InvalidLiquidityAmplifier ErrorCode = "invalid_liquidity_amplifier"
	// InvalidMovingAverageWindow represents a zero moving average window.
	InvalidMovingAverageWindow ErrorCode = "invalid_moving_average_window"
	// InvalidTimeRange represents an end time that is not after the start time.
	InvalidTimeRange ErrorCode = "invalid_time_range"
	// UnknownMarketState represents a market state name that is not one of the nine regimes.
	UnknownMarketState ErrorCode = "unknown_market_state"
	// UnknownSelectorPolicy represents an unsupported regime selection policy.
	UnknownSelectorPolicy ErrorCode = "unknown_selector_policy"
	// UnsupportedInterval represents an unknown bar interval name.
	UnsupportedInterval ErrorCode = "unsupported_interval"
	// MissingSelector represents a runner built without a regime selector.
	MissingSelector ErrorCode = "missing_selector"
	// MissingRandomSource represents a runner built without a random source.
	MissingRandomSource ErrorCode = "missing_random_source"
	// MissingLogger represents a runner built without a logger.
	MissingLogger ErrorCode = "missing_logger"

	// MarketVolumeAmplifierOverflow represents an overflow while amplifying market volume.
	MarketVolumeAmplifierOverflow ErrorCode = "market_volume_amplifier_overflow"
	// LimitVolumeAmplifierOverflow represents an overflow while amplifying limit volume.
	LimitVolumeAmplifierOverflow ErrorCode = "limit_volume_amplifier_overflow"
	// LimitDepthOverflow represents a limit depth that overflows while the price walks.
	LimitDepthOverflow ErrorCode = "limit_depth_overflow"
	// PriceOverflow represents a buy walk stepping the price past 64 bits.
	PriceOverflow ErrorCode = "price_overflow"
	// DecimalOutOfRange represents a decimal value that has no unsigned fixed-point form.
	DecimalOutOfRange ErrorCode = "decimal_out_of_range"
	// PriceBelowIncrement represents a current price not strictly above the increment.
	PriceBelowIncrement ErrorCode = "price_below_increment"

	// PreviousMovingAverageMissing represents a previous tick without moving average.
	PreviousMovingAverageMissing ErrorCode = "previous_moving_average_missing"
	// NewMovingAverageMissing represents a new tick without moving average before variance.
	NewMovingAverageMissing ErrorCode = "new_moving_average_missing"
	// PreviousVarianceMissing represents a previous tick without variance.
	PreviousVarianceMissing ErrorCode = "previous_variance_missing"
	// WindowStartMissing represents a missing tick leaving the window.
	WindowStartMissing ErrorCode = "window_start_missing"
	// MovingAverageOverflow represents a moving average that overflowed.
	MovingAverageOverflow ErrorCode = "moving_average_overflow"
	// VarianceOverflow represents a variance that overflowed.
	VarianceOverflow ErrorCode = "variance_overflow"
	// NegativeMovingAverage represents a moving average below zero.
	NegativeMovingAverage ErrorCode = "negative_moving_average"
	// NegativeVariance represents a variance below zero.
	NegativeVariance ErrorCode = "negative_variance"

	// InvalidStrategyParameter represents a strategy built with unusable parameters.
	InvalidStrategyParameter ErrorCode = "invalid_strategy_parameter"
	// InsufficientBalance represents an order larger than the available balance.
	InsufficientBalance ErrorCode = "insufficient_balance"
	// UnknownStrategy represents an unsupported strategy name.
	UnknownStrategy ErrorCode = "unknown_strategy"
	// InvalidOrderQuantity represents an order selling or buying a non-positive quantity.
	InvalidOrderQuantity ErrorCode = "invalid_order_quantity"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisPublishError represents an error when publishing messages to channels in Redis.
	RedisPublishError ErrorCode = "redis_publish_error"
)

// Category represents the category of an error.
type Category string

const (
	// CategoryValidation indicates a rejected input value.
	CategoryValidation Category = "validation"
	// CategoryArithmetic indicates an overflow or a value of the wrong sign.
	CategoryArithmetic Category = "arithmetic"
	// CategoryPrecondition indicates an indicator input that was never annotated.
	CategoryPrecondition Category = "precondition"
	// CategoryDatabase indicates an error related to database operations.
	CategoryDatabase Category = "database"
	// CategoryExternal indicates an error related to brokers or caches.
	CategoryExternal Category = "external"
	// CategoryUnknown indicates an unknown error category.
	CategoryUnknown Category = "unknown"
)

var categories = map[ErrorCode]Category{
	InvalidPrice:                   CategoryValidation,
	InvalidVolume:                  CategoryValidation,
	InvalidDuration:                CategoryValidation,
	TicksNotOrdered:                CategoryValidation,
	InvalidMarketVolume:            CategoryValidation,
	InvalidLimitVolumeByTick:       CategoryValidation,
	InvalidLimitVolumeChangeByTick: CategoryValidation,
	InvalidPriceIncrement:          CategoryValidation,
	InvalidTradeIntervalRange:      CategoryValidation,
	InvalidRegimeDurationRange:     CategoryValidation,
	InvalidVolumeBaseRange:         CategoryValidation,
	InvalidLiquidityChangeRange:    CategoryValidation,
	InvalidLiquidityAmplifier:      CategoryValidation,
	InvalidMovingAverageWindow:     CategoryValidation,
	InvalidTimeRange:               CategoryValidation,
	UnknownMarketState:             CategoryValidation,
	UnknownSelectorPolicy:          CategoryValidation,
	UnsupportedInterval:            CategoryValidation,
	MissingSelector:                CategoryValidation,
	MissingRandomSource:            CategoryValidation,
	MissingLogger:                  CategoryValidation,
	InvalidStrategyParameter:       CategoryValidation,
	InsufficientBalance:            CategoryValidation,
	InvalidOrderQuantity:           CategoryValidation,
	UnknownStrategy:                CategoryValidation,

	HlocVolumeOverflow:            CategoryArithmetic,
	MarketVolumeAmplifierOverflow: CategoryArithmetic,
	LimitVolumeAmplifierOverflow:  CategoryArithmetic,
	LimitDepthOverflow:            CategoryArithmetic,
	PriceOverflow:                 CategoryArithmetic,
	MovingAverageOverflow:         CategoryArithmetic,
	VarianceOverflow:              CategoryArithmetic,
	NegativeMovingAverage:         CategoryArithmetic,
	NegativeVariance:              CategoryArithmetic,
	DecimalOutOfRange:             CategoryArithmetic,

	PriceBelowIncrement:          CategoryPrecondition,
	PreviousMovingAverageMissing: CategoryPrecondition,
	NewMovingAverageMissing:      CategoryPrecondition,
	PreviousVarianceMissing:      CategoryPrecondition,
	WindowStartMissing:           CategoryPrecondition,

	GeneralRepositoryError:  CategoryDatabase,
	GeneralPublisherError:   CategoryExternal,
	RedisConfigError:        CategoryExternal,
	RedisConnectionError:    CategoryExternal,
	RedisDisconnectionError: CategoryExternal,
	RedisPingError:          CategoryExternal,
	RedisSetError:           CategoryExternal,
	RedisPublishError:       CategoryExternal,
}

// CategoryOf returns the category of the given code.
func CategoryOf(code ErrorCode) Category {
	if c, ok := categories[code]; ok {
		return c
	}
	return CategoryUnknown
}

// BaseError is an `error` type containing an array of ErrorDetails.
// It is used where several independent checks can fail at once, e.g. configuration validation.
type BaseError struct {
	details []*ErrorDetails
}

// NewBaseError create BaseError with ErrorDetails
func NewBaseError(details ...*ErrorDetails) *BaseError {
	return &BaseError{details: details}
}

// AddErrorDetails add more ErrorDetails to BaseError
func (b *BaseError) AddErrorDetails(errors ...*ErrorDetails) {
	b.details = append(b.details, errors...)
}

// GetDetails get array ErrorDetails on BaseError
func (b *BaseError) GetDetails() []*ErrorDetails {
	return b.details
}

// OrNil returns nil when no details were collected.
func (b *BaseError) OrNil() error {
	if b == nil || len(b.details) == 0 {
		return nil
	}
	return b
}

// Error implement error interface
func (b *BaseError) Error() string {
	buff := bytes.NewBufferString("")

	buff.WriteString("Error on\n")
	for _, err := range b.details {
		buff.WriteString("code: ")
		buff.WriteString(err.Code)
		buff.WriteString("; error: ")
		buff.WriteString(err.Error())
		buff.WriteString("; field: ")
		buff.WriteString(err.Field)
		if len(err.Operands) > 0 {
			buff.WriteString("; operands: ")
			buff.WriteString(fmt.Sprint(err.Operands...))
		}
		buff.WriteString("\n")
	}

	return strings.TrimSpace(buff.String())
}

// Is reports whether any collected detail carries the code of target.
func (b *BaseError) Is(target error) bool {
	t, ok := target.(*ErrorDetails)
	if !ok {
		return false
	}
	return b.IsAnyCodeEqual(t.Code)
}

// PrependFields prepend all field on ErrorDetails with given prefix. Will skip ErrorDetail without field
func (b *BaseError) PrependFields(prefix string) {
	for _, d := range b.GetDetails() {
		if d.Field == "" {
			continue
		}
		d.Field = fmt.Sprintf("%s%s", prefix, d.Field)
	}
}

// IsAllCodeEqual check if all ErrorDetails code is equal with given code
func (b *BaseError) IsAllCodeEqual(code string) bool {
	if len(b.details) == 0 {
		return false
	}

	for _, d := range b.GetDetails() {
		if d.Code != code {
			return false
		}
	}
	return true
}

// IsAnyCodeEqual check if any ErrorDetails code is equal with given code
func (b *BaseError) IsAnyCodeEqual(code string) bool {
	for _, d := range b.GetDetails() {
		if d.Code == code {
			return true
		}
	}
	return false
}
