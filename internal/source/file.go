package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/langtool/internal/core"
)

// DefaultFile is read in local mode when no path is configured.
const DefaultFile = "data/sample/locales.csv"

var requiredColumns = []string{"locale", "key", "value"}

// File reads rows from a local .xlsx or .csv file with locale, key and
// value columns.
type File struct {
	path string
}

// NewFile returns a source reading path.
func NewFile(path string) *File {
	if path == "" {
		path = DefaultFile
	}
	return &File{path: path}
}

// Describe implements core.RowSource.
func (f *File) Describe() string {
	return "local file " + f.path
}

// Rows reads and converts the whole file.
func (f *File) Rows(ctx context.Context) ([]core.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(f.path)
	case ".csv":
		records, err = readCSV(f.path)
	default:
		return nil, fmt.Errorf("unsupported source file %q: want .xlsx or .csv", f.path)
	}
	if err != nil {
		return nil, err
	}
	return recordsToRows(records)
}

func readWorkbook(path string) ([][]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	defer file.Close()

	return parseCSV(file)
}

func parseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(newBOMSkippingReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return records, nil
}

// recordsToRows maps a header-first table onto rows. Rows missing a locale,
// key or value are dropped.
func recordsToRows(records [][]string) ([]core.Row, error) {
	if len(records) == 0 {
		return nil, errors.New("missing required column: locale")
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing required column: %s", name)
		}
	}

	rows := make([]core.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := core.Row{
			Locale: sanitize(cell(rec, index["locale"])),
			Key:    sanitize(cell(rec, index["key"])),
			Value:  sanitize(cell(rec, index["value"])),
		}
		if row.Locale == "" || row.Key == "" || row.Value == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
