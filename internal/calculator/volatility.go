package calculator

import (
	"CryptoSignals/internal/model"

	talib "github.com/markcheno/go-talib"
)

// CalculateATR returns the latest Average True Range. Requires period+1 bars.
func CalculateATR(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if len(bars) < period+1 {
		return 0, errInsufficient
	}
	return last(talib.Atr(extractHighs(bars), extractLows(bars), extractCloses(bars), period)), nil
}

// CalculateADX returns the latest Average Directional Index. ADX needs two smoothing
// passes, so at least 2*period bars are required.
func CalculateADX(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if len(bars) < 2*period {
		return 0, errInsufficient
	}
	return last(talib.Adx(extractHighs(bars), extractLows(bars), extractCloses(bars), period)), nil
}
