// Package sheet parses uploaded spreadsheet files (.csv or .xlsx) into
// a cleaned in-memory table keyed by column name.
package sheet

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	appErrors "github.com/rosterd/roster-sync-api/pkg/errors"
)

// cellCleaner strips the annotation star and embedded newlines that the
// institutional exports sprinkle over both headers and cells.
var cellCleaner = strings.NewReplacer("*", "", "\n", "", "\r", "")

// Table holds a parsed spreadsheet: one header row and its records.
type Table struct {
	Headers []string
	Records [][]string
}

// Parse reads the upload into a Table. The original filename decides the
// format; anything other than .csv or .xlsx fails with ErrInvalidFileType,
// and content that cannot be parsed fails with ErrInvalidUploadFile.
func Parse(filename string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(r)
	case ".xlsx":
		return parseXLSX(r)
	default:
		return nil, appErrors.Clone(appErrors.ErrInvalidFileType, "expected a .csv or .xlsx file")
	}
}

func parseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidUploadFile.Code, appErrors.ErrInvalidUploadFile.Status, "malformed csv content")
	}
	return fromRecords(records)
}

func parseXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidUploadFile.Code, appErrors.ErrInvalidUploadFile.Status, "malformed xlsx content")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidUploadFile, "workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidUploadFile.Code, appErrors.ErrInvalidUploadFile.Status, "unreadable worksheet")
	}
	return fromRecords(records)
}

func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidUploadFile, "file contains no rows")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = clean(h)
	}

	body := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]string, len(headers))
		for i := range headers {
			if i < len(record) {
				row[i] = clean(record[i])
			}
		}
		body = append(body, row)
	}

	return &Table{Headers: headers, Records: body}, nil
}

func clean(cell string) string {
	return strings.TrimSpace(cellCleaner.Replace(cell))
}

// DropColumns removes the named columns from the table, ignoring names
// that are not present.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}

	keep := make([]int, 0, len(t.Headers))
	headers := make([]string, 0, len(t.Headers))
	for i, h := range t.Headers {
		if _, ok := drop[h]; ok {
			continue
		}
		keep = append(keep, i)
		headers = append(headers, h)
	}
	if len(keep) == len(t.Headers) {
		return
	}

	for ri, record := range t.Records {
		row := make([]string, len(keep))
		for j, i := range keep {
			row[j] = record[i]
		}
		t.Records[ri] = row
	}
	t.Headers = headers
}

// Rows materializes each record as a column-keyed map.
func (t *Table) Rows() []map[string]string {
	rows := make([]map[string]string, 0, len(t.Records))
	for _, record := range t.Records {
		row := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			row[h] = record[i]
		}
		rows = append(rows, row)
	}
	return rows
}
