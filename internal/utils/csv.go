package utils

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"signalBot/internal/domain"
	"signalBot/internal/ports"
)

var barHeader = []string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"}

// WriteBarsToCSV writes bars to filename, creating parent directories as needed.
func WriteBarsToCSV(bars []domain.Bar, filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteBars(file, bars)
}

// WriteBars writes bars as CSV with a header row.
func WriteBars(w io.Writer, bars []domain.Bar) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(barHeader); err != nil {
		return err
	}
	for _, b := range bars {
		if err := writer.Write([]string{
			b.OpenTime.Format(time.RFC3339),
			b.CloseTime.Format(time.RFC3339),
			b.Symbol,
			b.Interval,
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadBarsFromCSV reads a file written by WriteBarsToCSV.
func ReadBarsFromCSV(filename string) ([]domain.Bar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadBars(file)
}

// ReadBars parses bar CSV. Columns are located by header name, so extra
// columns are ignored and volume and the time columns are optional.
func ReadBars(r io.Reader) ([]domain.Bar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty CSV", ports.ErrDataUnavailable)
		}
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"open", "high", "low", "close"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ports.ErrInvalidRequest, required)
		}
	}

	var bars []domain.Bar
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bar, err := parseBar(record, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %w", line, ports.ErrInvalidRequest, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseBar(record []string, cols map[string]int) (domain.Bar, error) {
	var b domain.Bar
	field := func(name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}
	num := func(name string, dst *float64, optional bool) error {
		s, ok := field(name)
		if !ok || s == "" {
			if optional {
				return nil
			}
			return fmt.Errorf("missing %s", name)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q", name, s)
		}
		*dst = v
		return nil
	}
	stamp := func(name string, dst *time.Time) error {
		s, ok := field(name)
		if !ok || s == "" {
			return nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid %s %q", name, s)
		}
		*dst = t
		return nil
	}

	if err := num("open", &b.Open, false); err != nil {
		return b, err
	}
	if err := num("high", &b.High, false); err != nil {
		return b, err
	}
	if err := num("low", &b.Low, false); err != nil {
		return b, err
	}
	if err := num("close", &b.Close, false); err != nil {
		return b, err
	}
	if err := num("volume", &b.Volume, true); err != nil {
		return b, err
	}
	if err := stamp("open_time", &b.OpenTime); err != nil {
		return b, err
	}
	if err := stamp("close_time", &b.CloseTime); err != nil {
		return b, err
	}
	b.Symbol, _ = field("symbol")
	b.Interval, _ = field("interval")
	return b, nil
}

// HistoryEntry is the export shape of one delivered signal.
type HistoryEntry struct {
	Pair      string  `json:"pair"`
	Type      string  `json:"type"`
	Entry     float64 `json:"entry"`
	TP1       float64 `json:"tp1"`
	TP2       float64 `json:"tp2"`
	SL        float64 `json:"sl"`
	Strength  string  `json:"strength"`
	Analysis  string  `json:"analysis"`
	Timestamp string  `json:"timestamp"`
}

// HistoryEntries converts stored records to export entries, skipping records without a signal.
func HistoryEntries(records []*ports.SignalRecord) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		if rec == nil || rec.Signal == nil {
			continue
		}
		s := rec.Signal
		entries = append(entries, HistoryEntry{
			Pair:      s.Pair,
			Type:      string(s.Direction),
			Entry:     s.EntryPrice,
			TP1:       s.TakeProfit1,
			TP2:       s.TakeProfit2,
			SL:        s.StopLoss,
			Strength:  string(s.Strength),
			Analysis:  s.Analysis,
			Timestamp: s.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return entries
}

// WriteHistoryJSON writes the signal history as an indented JSON array.
func WriteHistoryJSON(w io.Writer, records []*ports.SignalRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(HistoryEntries(records))
}

// WriteHistoryCSV writes the signal history as CSV with a header row.
func WriteHistoryCSV(w io.Writer, records []*ports.SignalRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"pair", "type", "entry", "tp1", "tp2", "sl", "strength", "analysis", "timestamp"}); err != nil {
		return err
	}
	for _, e := range HistoryEntries(records) {
		if err := writer.Write([]string{
			e.Pair,
			e.Type,
			strconv.FormatFloat(e.Entry, 'f', -1, 64),
			strconv.FormatFloat(e.TP1, 'f', -1, 64),
			strconv.FormatFloat(e.TP2, 'f', -1, 64),
			strconv.FormatFloat(e.SL, 'f', -1, 64),
			e.Strength,
			e.Analysis,
			e.Timestamp,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
