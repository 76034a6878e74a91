// Package source reads translation rows from a Google Sheet or a local file.
package source

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/JonMunkholm/langtool/internal/core"
)

// DefaultRange is read when no range is configured.
const DefaultRange = "Sheet1!A1:Z1000"

// headerAliases maps sheet column titles to locale codes. Titles not listed
// are lowercased.
var headerAliases = map[string]string{
	"English": "en",
	"TV":      "vi",
}

const (
	keyColumn         = 1
	firstLocaleColumn = 2
)

// Sheets reads the grid of a single range through the Sheets v4 API.
type Sheets struct {
	srv           *sheets.Service
	spreadsheetID string
	readRange     string
}

// NewSheets creates a read-only Sheets client authenticated with an API key.
// Extra client options are appended after the key.
func NewSheets(ctx context.Context, apiKey, spreadsheetID, readRange string, opts ...option.ClientOption) (*Sheets, error) {
	if readRange == "" {
		readRange = DefaultRange
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	srv, err := sheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("building sheets service: %w", err)
	}
	return &Sheets{srv: srv, spreadsheetID: spreadsheetID, readRange: readRange}, nil
}

// Describe implements core.RowSource.
func (s *Sheets) Describe() string {
	return fmt.Sprintf("Google Sheet %s (%s)", s.spreadsheetID, s.readRange)
}

// Rows fetches the configured range and normalizes it.
func (s *Sheets) Rows(ctx context.Context) ([]core.Row, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetching sheet %s: %w", s.spreadsheetID, err)
	}
	return NormalizeGrid(stringGrid(resp.Values)), nil
}

// SheetInfo describes a spreadsheet for connectivity checks.
type SheetInfo struct {
	Title  string
	Sheets []string
}

// Check verifies the spreadsheet is reachable with the configured key.
func (s *Sheets) Check(ctx context.Context) (SheetInfo, error) {
	resp, err := s.srv.Spreadsheets.Get(s.spreadsheetID).
		Fields("properties(title),sheets(properties(title))").
		Context(ctx).
		Do()
	if err != nil {
		return SheetInfo{}, fmt.Errorf("fetching spreadsheet %s: %w", s.spreadsheetID, err)
	}

	info := SheetInfo{}
	if resp.Properties != nil {
		info.Title = resp.Properties.Title
	}
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			info.Sheets = append(info.Sheets, sh.Properties.Title)
		}
	}
	return info, nil
}

// NormalizeGrid converts a header-first grid into rows.
//
// Column 0 is ignored, column 1 holds the key and every later column is a
// locale named by its header; columns with a blank header are ignored. Rows keyed "" or "key" are skipped, as are
// empty cells and cells that repeat their column header.
func NormalizeGrid(grid [][]string) []core.Row {
	if len(grid) == 0 {
		return []core.Row{}
	}

	header := grid[0]
	locales := make([]string, len(header))
	for i := firstLocaleColumn; i < len(header); i++ {
		locales[i] = localeFromHeader(header[i])
	}

	rows := []core.Row{}
	for _, line := range grid[1:] {
		key := cell(line, keyColumn)
		if key == "" || key == "key" {
			continue
		}
		for i := firstLocaleColumn; i < len(header); i++ {
			if locales[i] == "" {
				continue
			}
			value := cell(line, i)
			if value == "" || value == header[i] {
				continue
			}
			rows = append(rows, core.Row{Locale: locales[i], Key: key, Value: value})
		}
	}
	return rows
}

func localeFromHeader(title string) string {
	if code, ok := headerAliases[title]; ok {
		return code
	}
	return strings.ToLower(strings.TrimSpace(title))
}

func cell(line []string, i int) string {
	if i < len(line) {
		return line[i]
	}
	return ""
}

func stringGrid(values [][]interface{}) [][]string {
	grid := make([][]string, len(values))
	for i, line := range values {
		grid[i] = make([]string, len(line))
		for j, v := range line {
			switch v := v.(type) {
			case nil:
			case string:
				grid[i][j] = v
			default:
				grid[i][j] = fmt.Sprint(v)
			}
		}
	}
	return grid
}
