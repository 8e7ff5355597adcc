package calculator

import "CryptoSignals/internal/model"

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func extractHighs(bars []model.OHLCV) []float64 {
	highs := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
	}
	return highs
}

func extractLows(bars []model.OHLCV) []float64 {
	lows := make([]float64, len(bars))
	for i, b := range bars {
		lows[i] = b.Low
	}
	return lows
}

func extractVolumes(bars []model.OHLCV) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	return vols
}

func last(series []float64) float64 {
	return series[len(series)-1]
}
