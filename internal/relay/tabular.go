package relay

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadRows reads comma-separated records, one record per line. A blank
// or whitespace-only line becomes a zero-cell record instead of being
// dropped, because the catalog format uses a blank record as the
// separator between its unanswered and answered sections (encoding/csv
// alone silently swallows blank lines). A UTF-8 BOM on the first line
// is stripped. Lines that fail to parse are skipped; only read errors
// abort.
func ReadRows(r io.Reader) ([][]string, error) {
	var rows [][]string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}
		line = strings.TrimSuffix(line, "\r")

		if strings.TrimSpace(line) == "" {
			rows = append(rows, nil)
			continue
		}

		cr := csv.NewReader(strings.NewReader(line))
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true
		rec, err := cr.Read()
		if err != nil {
			continue
		}
		rows = append(rows, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return rows, nil
}

// WriteRows writes records as CSV. A zero-cell record comes out as a
// blank line, mirroring ReadRows.
func WriteRows(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
