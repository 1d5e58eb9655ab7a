package chanselect

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadTextTable reads rows of numbers separated by white space and/or
// commas. Blank lines and lines whose first non-blank character is '#' are
// skipped. Every row must have exactly nColumns values, the first nIntColumns
// of which must be integers.
func ReadTextTable(r io.Reader, source string, nColumns int, nIntColumns int) ([][]float64, error) {
	rows := make([][]float64, 0)
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.FieldsFunc(line, func(c rune) bool {
			return c == ',' || c == ' ' || c == '\t' || c == '\r'
		})
		if len(fields) != nColumns {
			return nil, &ErrParseTable{
				Source: source,
				Line:   lineNumber,
				Err:    fmt.Errorf("expected %d columns, found %d", nColumns, len(fields)),
			}
		}

		row := make([]float64, nColumns)
		for i, field := range fields {
			if i < nIntColumns {
				value, err := strconv.Atoi(field)
				if err != nil {
					return nil, &ErrParseTable{Source: source, Line: lineNumber, Err: err}
				}
				row[i] = float64(value)
				continue
			}
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, &ErrParseTable{Source: source, Line: lineNumber, Err: err}
			}
			row[i] = value
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", source, err)
	}
	return rows, nil
}
