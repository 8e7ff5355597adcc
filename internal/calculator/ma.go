package calculator

import (
	"errors"

	"CryptoSignals/internal/model"

	talib "github.com/markcheno/go-talib"
)

var (
	errPeriod       = errors.New("period must be positive")
	errInsufficient = errors.New("not enough data")
)

// CalculateEMA returns the latest exponential moving average of closes over period bars.
func CalculateEMA(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if len(bars) < period {
		return 0, errInsufficient
	}
	return last(talib.Ema(extractCloses(bars), period)), nil
}

// CalculateAvgVolume returns the simple average volume of the last period bars,
// the latest bar included.
func CalculateAvgVolume(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if len(bars) < period {
		return 0, errInsufficient
	}
	return last(talib.Sma(extractVolumes(bars), period)), nil
}
