package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/sitpulse/internal/contract"
)

// ErrMissingColumn is returned when a required column is absent from a table header.
var ErrMissingColumn = errors.New("missing column")

// csvTable is a parsed CSV file with its header indexed by column name.
type csvTable struct {
	path    string
	columns map[string]int
	rows    [][]string
}

// readCSV reads a whole CSV file with a header row.
func readCSV(path string) (*csvTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return parseCSV(path, file)
}

func parseCSV(path string, r io.Reader) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file, expected a header row", path)
		}
		return nil, fmt.Errorf("%s: failed to read header: %w", path, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: malformed CSV: %w", path, err)
	}

	return &csvTable{path: path, columns: columns, rows: rows}, nil
}

// require returns the index of each named column or an ErrMissingColumn error.
func (t *csvTable) require(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		pos, ok := t.columns[name]
		if !ok {
			return nil, fmt.Errorf("%s: %w %q", t.path, ErrMissingColumn, name)
		}
		idx[i] = pos
	}
	return idx, nil
}

// cell is a positioned CSV value, used to produce errors with file and line context.
type cell struct {
	t    *csvTable
	line int
	col  string
	raw  string
}

func (t *csvTable) cell(row []string, line, pos int, col string) cell {
	raw := ""
	if pos < len(row) {
		raw = strings.TrimSpace(row[pos])
	}
	return cell{t: t, line: line, col: col, raw: raw}
}

func (c cell) errorf(format string, args ...any) error {
	return fmt.Errorf("%s:%d column %q: %s", c.t.path, c.line, c.col, fmt.Sprintf(format, args...))
}

// id parses an integer identifier. Float renderings such as "123.0" are accepted.
func (c cell) id() (int64, error) {
	v, ok, err := c.optionalID()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, c.errorf("empty identifier")
	}
	return v, nil
}

// optionalID parses a nullable integer identifier.
func (c cell) optionalID() (int64, bool, error) {
	if c.raw == "" || strings.EqualFold(c.raw, "nan") {
		return 0, false, nil
	}
	if v, err := strconv.ParseInt(c.raw, 10, 64); err == nil {
		return v, true, nil
	}
	f, err := strconv.ParseFloat(c.raw, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false, c.errorf("invalid integer %q", c.raw)
	}
	return int64(f), true, nil
}

// count parses a non-negative integer where empty means zero.
func (c cell) count() (int, error) {
	v, ok, err := c.optionalID()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	if v < 0 {
		return 0, c.errorf("negative count %d", v)
	}
	return int(v), nil
}

// flag parses a 0/1 confirmation flag where empty means zero.
func (c cell) flag() (int, error) {
	switch strings.ToLower(c.raw) {
	case "", "nan", "0", "0.0", "false":
		return 0, nil
	case "1", "1.0", "true":
		return 1, nil
	}
	return 0, c.errorf("invalid flag %q", c.raw)
}

func (c cell) time() (time.Time, error) {
	t, err := contract.ParseRecordTime(c.raw)
	if err != nil {
		return time.Time{}, c.errorf("%v", err)
	}
	return t, nil
}

func (c cell) str() string {
	return c.raw
}
