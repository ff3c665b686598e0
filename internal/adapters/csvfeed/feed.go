// Package csvfeed serves bars from CSV files named <SYMBOL>_<interval>.csv.
package csvfeed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"signalBot/internal/domain"
	"signalBot/internal/ports"
	"signalBot/internal/utils"
)

// Feed is a ports.BarSource over a directory of bar files.
type Feed struct {
	dir    string
	logger ports.Logger
}

var _ ports.BarSource = (*Feed)(nil)

// New creates a feed reading from dir.
func New(dir string, logger ports.Logger) (*Feed, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for CSV feed")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("CSV feed failed: %w: %w", ports.ErrConfigurationError, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("CSV feed failed: %w: %s is not a directory", ports.ErrConfigurationError, dir)
	}
	return &Feed{dir: dir, logger: logger}, nil
}

// Name implements ports.BarSource.
func (f *Feed) Name() string {
	return "csv"
}

// FileName returns the file name used for a pair and interval, e.g. EURUSD_1h.csv.
func FileName(pair, interval string) string {
	symbol := strings.NewReplacer("/", "", "-", "", "_", "").Replace(strings.ToUpper(pair))
	return fmt.Sprintf("%s_%s.csv", symbol, interval)
}

// GetBars returns the last limit bars of the pair's file.
func (f *Feed) GetBars(ctx context.Context, pair, interval string, limit int) ([]domain.Bar, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("csv GetBars failed: %w: limit must be positive, got %d", ports.ErrInvalidRequest, limit)
	}
	path := filepath.Join(f.dir, FileName(pair, interval))
	bars, err := utils.ReadBarsFromCSV(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("csv GetBars failed: %w: %w", ports.ErrUnsupportedPair, err)
		}
		f.logger.Error(ctx, err, "Failed to read bar file", map[string]interface{}{"path": path})
		return nil, fmt.Errorf("csv GetBars failed: %w: %w", ports.ErrDataUnavailable, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("csv GetBars failed: %w: %s has no rows", ports.ErrDataUnavailable, path)
	}
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	for i := range bars {
		if bars[i].Symbol == "" {
			bars[i].Symbol = pair
		}
		if bars[i].Interval == "" {
			bars[i].Interval = interval
		}
	}
	f.logger.Debug(ctx, "Loaded bars from CSV", map[string]interface{}{"path": path, "count": len(bars)})
	return bars, nil
}
