package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"CryptoSignals/internal/model"
)

// DefaultBinanceURL is the public spot REST endpoint.
const DefaultBinanceURL = "https://api.binance.com"

// BinanceFetcher implements Fetcher using the Binance spot klines API.
type BinanceFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewBinanceFetcher creates a new fetcher with optional proxy support.
func NewBinanceFetcher(baseURL, proxyURL string, timeout time.Duration) *BinanceFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBinanceURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BinanceFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *BinanceFetcher) Name() string { return "binance" }

// MarketID converts a watchlist symbol like "BTC/USDT" to the exchange form "BTCUSDT".
func MarketID(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}

func (f *BinanceFetcher) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("symbol", MarketID(symbol))
	q.Set("interval", timeframe)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/api/v3/klines?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch klines: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch klines: status %d, body: %s", resp.StatusCode, string(body))
	}

	// Binance returns [[openTime, open, high, low, close, volume, closeTime, ...], ...]
	// with prices as strings and times as numbers.
	var rows [][]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}
	return parseKlines(rows)
}

func parseKlines(rows [][]interface{}) ([]model.OHLCV, error) {
	bars := make([]model.OHLCV, 0, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("kline %d: expected at least 6 fields, got %d", i, len(row))
		}
		openTime, err := toFloat(row[0])
		if err != nil {
			return nil, fmt.Errorf("kline %d open time: %w", i, err)
		}
		var vals [5]float64
		for j := 0; j < 5; j++ {
			v, err := toFloat(row[j+1])
			if err != nil {
				return nil, fmt.Errorf("kline %d field %d: %w", i, j+1, err)
			}
			vals[j] = v
		}
		bars = append(bars, model.OHLCV{
			Time:   time.UnixMilli(int64(openTime)).UTC(),
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
