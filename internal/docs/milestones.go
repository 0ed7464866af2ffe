package docs

import (
	"regexp"
	"strings"

	"github.com/joescharf/shipgate/internal/models"
)

// milestoneSynonyms are the header names the milestone overview table
// may use, in any order. At least three must be recognized for the
// block to count as a milestone table.
var milestoneSynonyms = map[string]column{
	"phase":       colPhase,
	"milestone":   colPhase,
	"name":        colName,
	"description": colName,
	"status":      colStatus,
	"stage":       colStage,
}

// headingMilestoneRe matches the fallback heading format:
// "### <phase>: <name>" with optional trailing markers.
var headingMilestoneRe = regexp.MustCompile(`^###\s+([^:]+):\s*(.+)$`)

// currentMarkerRe matches a trailing "(Current)" marker on a heading.
var currentMarkerRe = regexp.MustCompile(`(?i)\(current\)`)

// ParseMilestones extracts milestone entries from a planning document.
// The table format is tried first; if no milestone table exists, the
// heading format is used. Empty or structureless input yields nil.
func ParseMilestones(md string) []models.MilestoneEntry {
	lines := strings.Split(md, "\n")

	if mapping, rows, ok := scanTable(lines, milestoneSynonyms, 3); ok {
		var entries []models.MilestoneEntry
		for _, row := range rows {
			entry := models.MilestoneEntry{
				Phase:  cellAt(row, mapping, colPhase),
				Name:   cellAt(row, mapping, colName),
				Status: NormalizeStatus(cellAt(row, mapping, colStatus)),
			}
			if stage, ok := models.ParseStage(cellAt(row, mapping, colStage)); ok {
				entry.Stage = stage
			}
			if entry.Phase == "" && entry.Name == "" {
				continue
			}
			entries = append(entries, entry)
		}
		return entries
	}

	return parseHeadingMilestones(lines)
}

func parseHeadingMilestones(lines []string) []models.MilestoneEntry {
	var entries []models.MilestoneEntry
	for _, line := range lines {
		m := headingMilestoneRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		phase := strings.TrimSpace(m[1])
		name := m[2]

		status := models.StatusPlanned
		if hasCheckmark(name) {
			status = models.StatusComplete
		} else if currentMarkerRe.MatchString(name) {
			status = models.StatusInProgress
		}
		name = currentMarkerRe.ReplaceAllString(name, "")
		name = strings.TrimSpace(stripDecorations(name))

		entries = append(entries, models.MilestoneEntry{
			Phase:  phase,
			Name:   name,
			Status: status,
		})
	}
	return entries
}

// NormalizeStatus maps free-text status tokens onto the canonical
// values. Decorative marks are stripped first; known synonyms are
// matched case-insensitively; anything else passes through unchanged.
func NormalizeStatus(s string) string {
	cleaned := strings.TrimSpace(stripDecorations(s))
	switch strings.ToLower(cleaned) {
	case "done", "complete", "completed":
		return models.StatusComplete
	case "in progress", "in-progress":
		return models.StatusInProgress
	case "planned":
		return models.StatusPlanned
	}
	return cleaned
}

func hasCheckmark(s string) bool {
	return strings.ContainsAny(s, "✅✓✔☑")
}

// stripDecorations removes checkmarks, crosses, emoji and variation
// selectors so that "✅ Done" and "Done" normalize identically.
func stripDecorations(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '✅' || r == '✓' || r == '✔' || r == '☑':
			return -1 // checkmarks
		case r == '❌' || r == '✖':
			return -1 // crosses
		case r == 0xFE0F:
			return -1 // variation selector
		case r >= 0x2600 && r <= 0x27BF:
			return -1 // misc symbols and dingbats
		case r >= 0x1F000 && r <= 0x1FAFF:
			return -1 // emoji planes
		}
		return r
	}, s)
}
