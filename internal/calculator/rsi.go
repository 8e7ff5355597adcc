package calculator

import (
	"CryptoSignals/internal/model"

	talib "github.com/markcheno/go-talib"
)

// CalculateRSI computes the Wilder-smoothed RSI over the given period.
// Requires at least period+1 bars.
func CalculateRSI(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if len(bars) < period+1 {
		return 0, errInsufficient
	}
	return last(talib.Rsi(extractCloses(bars), period)), nil
}
