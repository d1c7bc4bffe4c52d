// Package sink writes batch output to local files.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"carrierscope/internal/carrier"
)

// RowSink receives the ordered batch output once per run.
type RowSink interface {
	WriteRecords(records []carrier.Record) error
	WriteURLs(urls []string) error
}

// FileSink writes records as UTF-8 comma-delimited CSV with a fixed header
// row, and accepted URLs as a newline-delimited text file.
type FileSink struct {
	recordsPath string
	urlsPath    string
	logger      *zap.Logger
}

// NewFileSink builds a FileSink.
func NewFileSink(recordsPath, urlsPath string, logger *zap.Logger) *FileSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSink{
		recordsPath: recordsPath,
		urlsPath:    urlsPath,
		logger:      logger,
	}
}

// WriteRecords writes the CSV file. A batch with zero accepted records still
// produces a file with only the header row.
func (s *FileSink) WriteRecords(records []carrier.Record) error {
	f, err := os.Create(s.recordsPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", s.recordsPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(carrier.CSVHeader()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, record := range records {
		if err := w.Write(record.CSVRow()); err != nil {
			return fmt.Errorf("write record %s: %w", record.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", s.recordsPath, err)
	}

	s.logger.Info("records written",
		zap.String("path", s.recordsPath),
		zap.Int("rows", len(records)),
	)
	return nil
}

// WriteURLs writes the accepted source URLs, one per line.
func (s *FileSink) WriteURLs(urls []string) error {
	var b strings.Builder
	for _, u := range urls {
		b.WriteString(u)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(s.urlsPath, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", s.urlsPath, err)
	}

	s.logger.Info("urls written",
		zap.String("path", s.urlsPath),
		zap.Int("rows", len(urls)),
	)
	return nil
}
