package domain

// Direction represents the side recommended by a signal.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
	Hold Direction = "HOLD" // Only used while evidence is being folded; never stored on a Signal
)

// Strength grades a signal by how many independent evidence flags fired.
type Strength string

const (
	StrengthWeak     Strength = "WEAK"
	StrengthModerate Strength = "MODERATE"
	StrengthStrong   Strength = "STRONG"
)

// StrengthFromConfluence maps a confluence count to a strength grade.
func StrengthFromConfluence(count int) Strength {
	switch {
	case count >= 4:
		return StrengthStrong
	case count >= 2:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// Polarity is the bias carried by a detected price pattern.
type Polarity string

const (
	Bullish Polarity = "BULLISH"
	Bearish Polarity = "BEARISH"
)

// Direction returns the trading side a pattern of this polarity points to.
func (p Polarity) Direction() Direction {
	switch p {
	case Bullish:
		return Buy
	case Bearish:
		return Sell
	default:
		return Hold
	}
}
