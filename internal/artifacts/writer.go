// Package artifacts writes analysis run outputs to disk atomically:
// write to a temp file, then rename over the final path, so a reader
// never observes a partially-written report.
package artifacts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"metacore/domain"
)

// AtomicWriter writes AnalysisResult reports under BaseDir.
type AtomicWriter struct {
	BaseDir string
}

// NewAtomicWriter builds a writer rooted at baseDir, defaulting to
// artifacts/analysis when baseDir is empty.
func NewAtomicWriter(baseDir string) *AtomicWriter {
	if baseDir == "" {
		baseDir = "artifacts/analysis"
	}
	return &AtomicWriter{BaseDir: baseDir}
}

// WriteAnalysisReport writes the full result as indented JSON and the
// binned/smoothed/trend series as a CSV, both under a shared timestamp
// prefix naming testID.
func (w *AtomicWriter) WriteAnalysisReport(testID string, result domain.AnalysisResult) error {
	if err := w.ensureDir(); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}

	timestamp := time.Now().UTC().Format("20060102-150405")

	jsonFile := fmt.Sprintf("%s-%s-analysis.json", timestamp, testID)
	if err := w.writeJSONAtomic(jsonFile, result); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}

	csvFile := fmt.Sprintf("%s-%s-series.csv", timestamp, testID)
	if err := w.writeSeriesCSV(csvFile, result); err != nil {
		return fmt.Errorf("write CSV: %w", err)
	}

	return nil
}

func (w *AtomicWriter) writeJSONAtomic(filename string, v interface{}) error {
	finalPath := filepath.Join(w.BaseDir, filename)
	tempPath := finalPath + ".tmp"

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename temp to final: %w", err)
	}

	return nil
}

// writeSeriesCSV emits one row per binned workload, with the smoothed
// and trend values for fat_ox/cho_ox/rer alongside it for easy
// plotting; columns for a series are blank where the corresponding
// bin has no entry at that workload.
func (w *AtomicWriter) writeSeriesCSV(filename string, result domain.AnalysisResult) error {
	finalPath := filepath.Join(w.BaseDir, filename)
	tempPath := finalPath + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"power_w",
		"binned_fat_ox", "binned_cho_ox", "binned_count",
		"smoothed_fat_ox", "smoothed_cho_ox", "smoothed_rer",
		"trend_fat_ox", "trend_cho_ox", "trend_rer",
	}
	if err := writer.Write(header); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("write CSV header: %w", err)
	}

	smoothedByPower := indexByPower(result.Smoothed)
	trendByPower := indexByPower(result.Trend)

	for _, b := range result.Binned {
		s := smoothedByPower[b.Power]
		t := trendByPower[b.Power]
		row := []string{
			formatFloat(b.Power),
			formatPtr(b.FatOx),
			formatPtr(b.ChoOx),
			formatIntPtr(b.Count),
			formatPtr(s.FatOx),
			formatPtr(s.ChoOx),
			formatPtr(s.RER),
			formatPtr(t.FatOx),
			formatPtr(t.ChoOx),
			formatPtr(t.RER),
		}
		if err := writer.Write(row); err != nil {
			os.Remove(tempPath)
			return fmt.Errorf("write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("flush CSV: %w", err)
	}
	file.Close()

	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename temp to final: %w", err)
	}
	return nil
}

func indexByPower(series domain.Series) map[float64]domain.Point {
	out := make(map[float64]domain.Point, len(series))
	for _, p := range series {
		out[p.Power] = p
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func (w *AtomicWriter) ensureDir() error {
	return os.MkdirAll(w.BaseDir, 0755)
}
