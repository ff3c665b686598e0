package api

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

var (
	pairRegex    = regexp.MustCompile(`^[A-Z0-9]{2,10}/[A-Z0-9]{2,10}$`)
	compactRegex = regexp.MustCompile(`^[A-Z]{6}$`)
	symbolRegex  = regexp.MustCompile(`^[A-Z0-9]{5,20}$`)
)

// normalizePair accepts EUR/USD, EUR-USD, EUR_USD or EURUSD and returns EUR/USD.
// Other compact symbols such as BTCUSDT are passed through for exchange sources.
func normalizePair(raw string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(raw))
	p = strings.NewReplacer("-", "/", "_", "/").Replace(p)
	switch {
	case p == "":
		return "", errors.New("pair is required")
	case pairRegex.MatchString(p):
		return p, nil
	case compactRegex.MatchString(p):
		return p[:3] + "/" + p[3:], nil
	case symbolRegex.MatchString(p):
		return p, nil
	}
	return "", fmt.Errorf("invalid pair %q", raw)
}

// parseLimit validates an optional limit query value.
func parseLimit(s string) (int, error) {
	if s == "" {
		return DefaultLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("limit must be an integer")
	}
	if n < 1 || n > MaxLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", MaxLimit)
	}
	return n, nil
}

// parseFormat validates the export format, defaulting to JSON.
func parseFormat(s string) (string, error) {
	switch strings.ToLower(s) {
	case "", formatJSON:
		return formatJSON, nil
	case formatCSV:
		return formatCSV, nil
	}
	return "", fmt.Errorf("format must be json or csv")
}
