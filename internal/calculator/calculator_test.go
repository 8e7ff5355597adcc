package calculator

import (
	"math"
	"testing"
	"time"

	"CryptoSignals/internal/model"
)

func flatBars(n int, price float64) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: float64(100 + i),
		}
	}
	return bars
}

func risingBars(n int) []model.OHLCV {
	bars := flatBars(n, 100)
	for i := range bars {
		p := 100 + float64(i)
		bars[i].Open, bars[i].Close = p, p
		bars[i].High, bars[i].Low = p+1, p-1
	}
	return bars
}

func TestCalculateEMA_Constant(t *testing.T) {
	ema, err := CalculateEMA(flatBars(250, 50), 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(ema-50) > 1e-9 {
		t.Errorf("expected 50, got %f", ema)
	}
}

func TestCalculateEMA_Insufficient(t *testing.T) {
	if _, err := CalculateEMA(flatBars(199, 50), 200); err == nil {
		t.Error("expected error for 199 bars")
	}
	if _, err := CalculateEMA(flatBars(10, 50), 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestCalculateRSI_RisingSeries(t *testing.T) {
	rsi, err := CalculateRSI(risingBars(60), 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(rsi-100) > 1e-9 {
		t.Errorf("expected RSI 100 for a strictly rising series, got %f", rsi)
	}
	if _, err := CalculateRSI(risingBars(14), 14); err == nil {
		t.Error("expected error with period bars only")
	}
}

func TestCalculateATR_ConstantRange(t *testing.T) {
	atr, err := CalculateATR(flatBars(60, 100), 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(atr-2) > 1e-9 {
		t.Errorf("expected ATR 2, got %f", atr)
	}
}

func TestCalculateADX_Insufficient(t *testing.T) {
	if _, err := CalculateADX(risingBars(27), 14); err == nil {
		t.Error("expected error below 2*period bars")
	}
	adx, err := CalculateADX(risingBars(100), 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adx < 50 {
		t.Errorf("expected strong ADX for a steady trend, got %f", adx)
	}
}

func TestCalculateAvgVolume(t *testing.T) {
	bars := flatBars(30, 10)
	avg, err := CalculateAvgVolume(bars, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// volumes 110..129
	want := (110.0 + 129.0) / 2
	if math.Abs(avg-want) > 1e-9 {
		t.Errorf("expected %f, got %f", want, avg)
	}
}
