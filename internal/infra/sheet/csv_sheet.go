// internal/infra/sheet/csv_sheet.go
package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var ErrSheetNotFound = errors.New("sheet not found")
var ErrColumnNotFound = errors.New("column not found")
var ErrRowOutOfRange = errors.New("row out of range")

type cellWrite struct {
	row    int
	header string
	value  string
}

// CSVSheet is a payments sheet exported as CSV. Row 1 is the header row.
// Writes are kept as pending edits and replayed onto the current file on Save,
// so rows added by others in the meantime survive.
type CSVSheet struct {
	path string

	mu         sync.Mutex
	cells      [][]string
	newColumns []string
	pending    []cellWrite
}

// OpenCSVSheet reads the whole file. A missing file is fatal for callers.
func OpenCSVSheet(path string) (*CSVSheet, error) {
	cells, err := readCells(path)
	if err != nil {
		return nil, err
	}
	return &CSVSheet{path: path, cells: cells}, nil
}

func readCells(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrSheetNotFound)
		}
		return nil, fmt.Errorf("failed to open sheet %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	cells, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse sheet %s: %w", path, err)
	}
	if len(cells) == 0 {
		cells = [][]string{{}}
	}
	return cells, nil
}

func (s *CSVSheet) Name() string {
	return filepath.Base(s.path)
}

// Reload re-reads the file and replays edits not yet saved.
func (s *CSVSheet) Reload(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cells, err := readCells(s.path)
	if err != nil {
		return err
	}
	if err := s.replay(cells); err != nil {
		return err
	}
	s.cells = cells
	return nil
}

func (s *CSVSheet) Headers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.cells[0]))
	copy(out, s.cells[0])
	return out, nil
}

func (s *CSVSheet) Records(_ context.Context) ([]map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	headers := s.cells[0]
	records := make([]map[string]string, 0, len(s.cells)-1)
	for _, row := range s.cells[1:] {
		rec := make(map[string]string, len(headers))
		for c, h := range headers {
			if c < len(row) {
				rec[h] = row[c]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *CSVSheet) AppendColumn(_ context.Context, header string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if columnIndex(s.cells[0], header) >= 0 {
		return nil
	}
	s.cells[0] = append(s.cells[0], header)
	s.newColumns = append(s.newColumns, header)
	return nil
}

func (s *CSVSheet) SetCell(_ context.Context, row int, header, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := cellWrite{row: row, header: header, value: value}
	if err := s.apply(s.cells, w); err != nil {
		return err
	}
	s.pending = append(s.pending, w)
	return nil
}

func (s *CSVSheet) apply(cells [][]string, w cellWrite) error {
	col := columnIndex(cells[0], w.header)
	if col < 0 {
		return fmt.Errorf("%q in %s: %w", w.header, s.Name(), ErrColumnNotFound)
	}
	if w.row < 2 || w.row > len(cells) {
		return fmt.Errorf("row %d of %s: %w", w.row, s.Name(), ErrRowOutOfRange)
	}
	line := cells[w.row-1]
	for len(line) <= col {
		line = append(line, "")
	}
	line[col] = w.value
	cells[w.row-1] = line
	return nil
}

// replay applies the unsaved column additions and cell writes to cells.
func (s *CSVSheet) replay(cells [][]string) error {
	for _, h := range s.newColumns {
		if columnIndex(cells[0], h) < 0 {
			cells[0] = append(cells[0], h)
		}
	}
	for _, w := range s.pending {
		if err := s.apply(cells, w); err != nil {
			return err
		}
	}
	return nil
}

// Save re-reads the file, replays pending edits on top of it and rewrites it
// through a temp file and rename.
func (s *CSVSheet) Save(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.newColumns) == 0 && len(s.pending) == 0 {
		return nil
	}

	cells, err := readCells(s.path)
	if err != nil {
		return err
	}
	if err := s.replay(cells); err != nil {
		return err
	}
	if err := s.write(cells); err != nil {
		return err
	}
	s.cells = cells
	s.newColumns = nil
	s.pending = nil
	return nil
}

func (s *CSVSheet) write(cells [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sheet-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", s.Name(), err)
	}
	defer os.Remove(tmp.Name())

	width := len(cells[0])
	w := csv.NewWriter(tmp)
	for _, row := range cells {
		for len(row) < width {
			row = append(row, "")
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write %s: %w", s.Name(), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush %s: %w", s.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", s.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.Name(), err)
	}
	return nil
}

func columnIndex(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}
