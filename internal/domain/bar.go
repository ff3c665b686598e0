package domain

import "time"

// Bar represents a single OHLC price bar. Index 0 of a bar sequence is the oldest bar.
type Bar struct {
	OpenTime  time.Time // Start time of the interval
	CloseTime time.Time // End time of the interval
	Symbol    string    // Pair identifier (e.g., "EUR/USD")
	Interval  string    // Bar interval (e.g., "1h")
	Open      float64   // Opening price
	High      float64   // Highest price
	Low       float64   // Lowest price
	Close     float64   // Closing price
	Volume    float64   // Traded volume, zero when the source has none
}

// IsBullish reports whether the bar closed above its open.
func (b Bar) IsBullish() bool {
	return b.Close > b.Open
}

// IsBearish reports whether the bar closed below its open.
func (b Bar) IsBearish() bool {
	return b.Close < b.Open
}

// Range returns high minus low.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// Body returns close minus open (signed).
func (b Bar) Body() float64 {
	return b.Close - b.Open
}
