package docs

import (
	"strconv"
	"strings"

	"github.com/joescharf/shipgate/internal/models"
)

var outOfScopeSynonyms = map[string]column{
	"item":      colItem,
	"rationale": colRationale,
	"revisit":   colRevisit,
}

// ParseVision extracts the north-star record from a vision document:
// the first non-empty, non-heading line as the vision statement, plus
// the optional Out of Scope table.
func ParseVision(md string) models.NorthStar {
	ns := models.NorthStar{OutOfScope: ParseOutOfScope(md)}
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		ns.Vision = trimmed
		break
	}
	return ns
}

// ParseOutOfScope parses the Item|Rationale|Revisit table, assigning
// 1-based sequential string ids. No table means an empty sequence.
func ParseOutOfScope(md string) []models.OutOfScopeEntry {
	mapping, rows, ok := scanTable(strings.Split(md, "\n"), outOfScopeSynonyms, 3)
	if !ok {
		return nil
	}

	var entries []models.OutOfScopeEntry
	for _, row := range rows {
		item := cellAt(row, mapping, colItem)
		if item == "" {
			continue
		}
		entries = append(entries, models.OutOfScopeEntry{
			ID:        strconv.Itoa(len(entries) + 1),
			Item:      item,
			Rationale: cellAt(row, mapping, colRationale),
			Revisit:   cellAt(row, mapping, colRevisit),
		})
	}
	return entries
}
