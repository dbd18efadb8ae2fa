package alignment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Canonical alignment table columns, in output order.
var columns = []string{"BEGIN", "DURATION", "MAU", "TOKEN", "ORT"}

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("alignment: missing column")

// Decode reads alignment rows from r using the given field delimiter.
// The header must contain at least BEGIN, DURATION, MAU, TOKEN and ORT;
// extra columns are ignored. Blank or NaN ORT cells become empty strings.
func Decode(r io.Reader, delimiter rune) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("alignment: read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range columns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("alignment: line %d: %w", line, err)
		}

		begin, err := parseInt(record[idx["BEGIN"]])
		if err != nil {
			return nil, fmt.Errorf("alignment: line %d: BEGIN: %w", line, err)
		}
		duration, err := parseInt(record[idx["DURATION"]])
		if err != nil {
			return nil, fmt.Errorf("alignment: line %d: DURATION: %w", line, err)
		}
		token, err := parseInt(record[idx["TOKEN"]])
		if err != nil {
			return nil, fmt.Errorf("alignment: line %d: TOKEN: %w", line, err)
		}

		rows = append(rows, Row{
			Begin:    begin,
			Duration: duration,
			Label:    strings.TrimSpace(record[idx["MAU"]]),
			Token:    token,
			Ort:      cleanOrt(record[idx["ORT"]]),
		})
	}

	return rows, nil
}

// Load reads an alignment CSV file.
func Load(path string, delimiter rune) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("alignment: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f, delimiter)
}

// Encode writes rows to w in the canonical column order.
func Encode(w io.Writer, rows []Row, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("alignment: write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Begin),
			strconv.Itoa(r.Duration),
			r.Label,
			strconv.Itoa(r.Token),
			r.Ort,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("alignment: write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// parseInt parses integer cells, tolerating the float rendering some
// aligner exports use for integral columns (e.g. "3.0").
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// cleanOrt normalizes blank and NaN orthography cells to empty strings.
func cleanOrt(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}
