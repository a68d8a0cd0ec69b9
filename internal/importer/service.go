package importer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/rgillard/planlog/internal/domain"
	"github.com/rgillard/planlog/internal/repository"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

	expectedColumns = []string{"profiles", "timezone", "start", "end"}
)

// EventCreator is the slice of the scheduler the importer needs.
type EventCreator interface {
	CreateEvent(ctx context.Context, input domain.CreateEventInput) (domain.Event, error)
}

// Service imports events in bulk from tabular uploads. Each row goes through
// the regular creation path so all validation rules apply; row failures are
// recorded and skipped rather than aborting the batch.
type Service struct {
	creator EventCreator
	logRepo repository.ImportLogRepository
}

// NewService creates a new import service.
func NewService(creator EventCreator, logRepo repository.ImportLogRepository) *Service {
	return &Service{
		creator: creator,
		logRepo: logRepo,
	}
}

// Request describes one uploaded file.
type Request struct {
	FileName string
	Data     io.Reader
}

// RowError reports one failed row. Row numbers are 1-based and include the
// header.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Summary reports the outcome of one import.
type Summary struct {
	FileName  string     `json:"fileName"`
	TotalRows int        `json:"totalRows"`
	Imported  int        `json:"imported"`
	Failed    int        `json:"failed"`
	Errors    []RowError `json:"errors,omitempty"`
}

// Import parses the upload and creates one event per data row. The expected
// header is profiles,timezone,start,end with profile names ';'-separated
// inside their cell.
func (s *Service) Import(ctx context.Context, req Request) (Summary, error) {
	rows, err := readRows(req.FileName, req.Data)
	if err != nil {
		return Summary{}, err
	}
	if len(rows) == 0 {
		return Summary{}, fmt.Errorf("file %s is empty", req.FileName)
	}

	columns, err := mapColumns(rows[0])
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{FileName: req.FileName}
	for i, row := range rows[1:] {
		rowNumber := i + 2
		summary.TotalRows++

		input := rowToInput(row, columns)
		if _, err := s.creator.CreateEvent(ctx, input); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, RowError{Row: rowNumber, Message: err.Error()})
			s.recordRowError(ctx, req.FileName, rowNumber, err)
			continue
		}
		summary.Imported++
	}

	return summary, nil
}

func (s *Service) recordRowError(ctx context.Context, fileName string, rowNumber int, rowErr error) {
	if s.logRepo == nil {
		return
	}
	entry := domain.ImportLogEntry{
		FileName:     fileName,
		RowNumber:    &rowNumber,
		ErrorMessage: rowErr.Error(),
	}
	if err := s.logRepo.Record(ctx, entry); err != nil {
		// The summary still carries the row error; a logging fault must not fail the import.
		log.Printf("failed to record import log for %s row %d: %v", fileName, rowNumber, err)
	}
}

func rowToInput(row []string, columns map[string]int) domain.CreateEventInput {
	input := domain.CreateEventInput{}
	if idx, ok := columns["profiles"]; ok && idx < len(row) {
		for _, name := range strings.Split(row[idx], ";") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				input.Profiles = append(input.Profiles, trimmed)
			}
		}
	}
	if idx, ok := columns["timezone"]; ok && idx < len(row) {
		input.Timezone = strings.TrimSpace(row[idx])
	}
	if idx, ok := columns["start"]; ok && idx < len(row) {
		input.Start = strings.TrimSpace(row[idx])
	}
	if idx, ok := columns["end"]; ok && idx < len(row) {
		input.End = strings.TrimSpace(row[idx])
	}
	return input
}

func mapColumns(header []string) (map[string]int, error) {
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range expectedColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return columns, nil
}

func readRows(fileName string, data io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return readCSV(data)
	case ".xlsx":
		return readXLSX(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func readCSV(data io.Reader) ([][]string, error) {
	buffered := bufio.NewReader(data)
	if prefix, err := buffered.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		if _, err := buffered.Discard(len(byteOrderMark)); err != nil {
			return nil, fmt.Errorf("failed to skip byte order mark: %w", err)
		}
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return rows, nil
}

func readXLSX(data io.Reader) ([][]string, error) {
	file, err := excelize.OpenReader(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}
