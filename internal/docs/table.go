package docs

import "strings"

// Markdown table scanning shared by the milestone and vision parsers.
// A deliberately small line scanner, not a general markdown parser: a
// table is a pipe-delimited header row whose cells match enough of the
// recognized column names, an optional separator row, then consecutive
// pipe-delimited rows until the first non-pipe line.

// column identifies a recognized table column.
type column int

const (
	colNone column = iota
	colPhase
	colName
	colStatus
	colStage
	colItem
	colRationale
	colRevisit
)

// isTableRow reports whether a line is part of a pipe-delimited table.
func isTableRow(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}

// isSeparatorRow matches the |---|---| divider under a header row.
func isSeparatorRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "|") {
		return false
	}
	for _, r := range trimmed {
		switch r {
		case '|', '-', ':', ' ', '\t':
		default:
			return false
		}
	}
	return strings.Contains(trimmed, "-")
}

// splitRow breaks a table row into trimmed cells, dropping the empty
// edge cells produced by leading/trailing pipes.
func splitRow(line string) []string {
	parts := strings.Split(strings.TrimSpace(line), "|")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// classifyHeader maps header cells to columns using the given synonym
// table. Returns the per-cell mapping and how many distinct columns
// were recognized.
func classifyHeader(cells []string, synonyms map[string]column) ([]column, int) {
	mapping := make([]column, len(cells))
	seen := map[column]bool{}
	for i, cell := range cells {
		key := strings.ToLower(strings.TrimSpace(cell))
		col, ok := synonyms[key]
		if !ok {
			continue
		}
		mapping[i] = col
		if !seen[col] {
			seen[col] = true
		}
	}
	return mapping, len(seen)
}

// scanTable finds the first table whose header recognizes at least
// minCols distinct columns, and returns the column mapping plus the raw
// data rows (separator excluded). Returns ok=false when no such table
// exists.
func scanTable(lines []string, synonyms map[string]column, minCols int) (mapping []column, rows [][]string, ok bool) {
	for i := 0; i < len(lines); i++ {
		if !isTableRow(lines[i]) || isSeparatorRow(lines[i]) {
			continue
		}
		m, n := classifyHeader(splitRow(lines[i]), synonyms)
		if n < minCols {
			continue
		}
		for j := i + 1; j < len(lines) && isTableRow(lines[j]); j++ {
			if isSeparatorRow(lines[j]) {
				continue
			}
			rows = append(rows, splitRow(lines[j]))
		}
		return m, rows, true
	}
	return nil, nil, false
}

// cellAt returns the cell mapped to col, or "" if the row is short or
// the column was not recognized.
func cellAt(row []string, mapping []column, col column) string {
	for i, c := range mapping {
		if c == col && i < len(row) {
			return row[i]
		}
	}
	return ""
}
